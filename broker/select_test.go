package broker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectDefaultsToSim(t *testing.T) {
	t.Parallel()

	b := Select(SelectOptions{Mode: "SIM", InitialCash: 50000}, nil)
	sim, ok := b.(*Sim)
	assert.True(t, ok)
	assert.InDelta(t, 50000.0, sim.Cash(), 1e-9)
}

func TestSelectLiveWithoutCredentialsFallsBack(t *testing.T) {
	t.Parallel()

	b := Select(SelectOptions{Mode: "LIVE", InitialCash: 1000}, nil)
	_, ok := b.(*Sim)
	assert.True(t, ok)
}

func TestSelectLiveConstructionFailureFallsBack(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"code": 40110000, "message": "unauthorized"})
	}))
	t.Cleanup(srv.Close)

	b := Select(SelectOptions{
		Mode:        "LIVE",
		APIKey:      "key",
		APISecret:   "secret",
		BaseURL:     srv.URL,
		InitialCash: 1000,
	}, nil)
	_, ok := b.(*Sim)
	assert.True(t, ok)
}

func TestSelectLive(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "acct-1", "equity": "100000"})
	}))
	t.Cleanup(srv.Close)

	b := Select(SelectOptions{
		Mode:      "live",
		APIKey:    "key",
		APISecret: "secret",
		BaseURL:   srv.URL,
	}, nil)
	_, ok := b.(*Alpaca)
	assert.True(t, ok)
}
