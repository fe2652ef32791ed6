package livehttp

import (
	"sort"
	"sync"
	"time"

	"tickbet/internal/engine"
	"tickbet/internal/market"
)

// Entry is the last decision recorded for one symbol.
type Entry struct {
	Symbol  string    `json:"symbol"`
	Time    time.Time `json:"time"`
	Bid     float64   `json:"bid"`
	Ask     float64   `json:"ask"`
	Act     string    `json:"act"`
	State   string    `json:"state"`
	Volume  float64   `json:"volume"`
	Summary string    `json:"summary"`
}

// State keeps the latest decision per symbol for the live API. The trader
// loop writes, HTTP handlers read.
type State struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewState() *State {
	return &State{entries: make(map[string]Entry)}
}

func (s *State) Record(symbol string, sym market.SymbolSnapshot, dec engine.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[symbol] = Entry{
		Symbol:  symbol,
		Time:    time.Now().UTC(),
		Bid:     sym.Bid,
		Ask:     sym.Ask,
		Act:     string(dec.Act),
		State:   dec.State,
		Volume:  dec.Volume,
		Summary: dec.Verdict.Summary,
	}
}

// Snapshot returns the recorded entries ordered by symbol.
func (s *State) Snapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Get returns the entry for one symbol.
func (s *State) Get(symbol string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[symbol]
	return e, ok
}
