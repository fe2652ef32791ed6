package livehttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickbet/internal/engine"
	"tickbet/internal/market"
	"tickbet/internal/signal"
)

func recordedState() *State {
	st := NewState()
	st.Record("EURUSD",
		market.SymbolSnapshot{Symbol: "EURUSD", Bid: 1.22, Ask: 1.2204},
		engine.Decision{
			Act:     signal.ActLong,
			State:   "OPEN LONG",
			Volume:  0.2,
			Verdict: signal.Verdict{Summary: "up"},
		})
	return st
}

func TestStateEndpointListsSymbols(t *testing.T) {
	srv, err := NewServer(":0", recordedState())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/live/state", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Symbols []Entry `json:"symbols"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Symbols, 1)
	assert.Equal(t, "EURUSD", body.Symbols[0].Symbol)
	assert.Equal(t, "OPEN LONG", body.Symbols[0].State)
	assert.Equal(t, 0.2, body.Symbols[0].Volume)
}

func TestStateEndpointSingleSymbol(t *testing.T) {
	srv, err := NewServer(":0", recordedState())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/live/state/EURUSD", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/live/state/USDJPY", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	srv, err := NewServer(":0", NewState())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewServerRequiresState(t *testing.T) {
	_, err := NewServer(":0", nil)
	assert.Error(t, err)
}
