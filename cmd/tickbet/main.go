package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tickbet/internal/app"
	"tickbet/internal/config"
	"tickbet/internal/logger"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file (defaults to $TICKBET_CONFIG, then configs/tickbet.yaml)")
	dumpConfig := flag.Bool("dump-config", false, "print the effective configuration as YAML and exit")
	flag.Parse()

	path := *cfgPath
	if path == "" {
		path = os.Getenv("TICKBET_CONFIG")
	}
	if path == "" {
		path = "configs/tickbet.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("loading config failed: %v", err)
	}
	if *dumpConfig {
		out, err := cfg.DumpYAML()
		if err != nil {
			log.Fatalf("dumping config failed: %v", err)
		}
		fmt.Print(string(out))
		return
	}

	logger.SetLevel(cfg.App.LogLevel)
	if cfg.App.LogPath != "" {
		logger.SetFile(cfg.App.LogPath, cfg.App.LogMaxSizeMB, cfg.App.LogMaxBackups)
	}
	if err := config.Watch(path, func(next *config.Config) {
		logger.SetLevel(next.App.LogLevel)
	}); err != nil {
		logger.Warnf("config watch disabled: %v", err)
	}
	logger.Infof("config loaded from %s (env=%s, symbols=%v)", path, cfg.App.Env, cfg.Trade.Symbols)

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("initializing app failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}
