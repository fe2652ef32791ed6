package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"tickbet/internal/logger"
)

// ChangeListener is called with the freshly loaded configuration after the
// file on disk changes and passes validation.
type ChangeListener func(*Config)

// Watch reloads the configuration whenever the file changes. A change that
// fails to load or validate is logged and dropped; the previous
// configuration stays in effect.
func Watch(path string, fn ChangeListener) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config watch requires path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config for watch failed: %w", err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		cfg, err := Load(path)
		if err != nil {
			logger.Errorf("config reload failed (%s): %v", evt.Name, err)
			return
		}
		logger.Infof("config reloaded from %s", evt.Name)
		fn(cfg)
	})
	v.WatchConfig()
	return nil
}
