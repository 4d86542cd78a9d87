package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend finishes every game after a fixed number of status polls.
type fakeBackend struct {
	mu       sync.Mutex
	polls    int
	started  []map[string]any
	settings []map[string]any
	stops    int
	outcomes []string
}

func (f *fakeBackend) handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Post("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.settings = append(f.settings, payload)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings map[string]any `json:"settings"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.started = append(f.started, payload.Settings)
		f.polls = 0
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.stops++
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.polls++
		status := backendStatus{Status: "running", History: make([]json.RawMessage, f.polls)}
		if f.polls >= 2 && len(f.outcomes) > 0 {
			status.Status = f.outcomes[(len(f.started)-1)%len(f.outcomes)]
		}
		writeJSON(w, http.StatusOK, status)
	})
	return r
}

func newTestTrainer(url string, games int) *trainer {
	return &trainer{
		client:       &http.Client{Timeout: time.Second},
		baseURL:      url,
		pollInterval: time.Millisecond,
		games:        games,
		seed:         100,
		gameTimeout:  5 * time.Second,
		status:       newTrainerStatus(),
	}
}

func TestRunMatchesTalliesOutcomes(t *testing.T) {
	backend := &fakeBackend{outcomes: []string{"red_won", "blue_won", "draw"}}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	tr := newTestTrainer(server.URL, 4)
	tr.aiDepth = 2
	require.NoError(t, tr.runMatches(context.Background()))

	status := tr.getStatus()
	assert.Equal(t, 4, status.GamesPlayed)
	assert.Equal(t, 2, status.RedWins)
	assert.Equal(t, 1, status.BlueWins)
	assert.Equal(t, 1, status.Draws)
	require.Len(t, status.Recent, 4)
	assert.Equal(t, int64(104), status.Recent[2].RedSeed)
	assert.Equal(t, int64(105), status.Recent[2].BlueSeed)
	assert.Equal(t, 2, status.Recent[0].Moves)

	require.Len(t, backend.started, 4)
	assert.Equal(t, "ai_vs_ai", backend.started[0]["mode"])
	assert.Equal(t, float64(100), backend.started[0]["red_seed"])
	assert.Equal(t, float64(101), backend.started[0]["blue_seed"])
	require.Len(t, backend.settings, 1)
	assert.Equal(t, map[string]any{"ai_depth": float64(2)}, backend.settings[0]["config"])
}

func TestPlayGameTimesOut(t *testing.T) {
	backend := &fakeBackend{}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	tr := newTestTrainer(server.URL, 1)
	tr.gameTimeout = 10 * time.Millisecond
	result, err := tr.playGame(context.Background(), 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "timeout", result.Outcome)
	assert.Equal(t, 1, backend.stops)

	tr.recordResult(result)
	assert.Equal(t, 1, tr.getStatus().Failures)
}

func TestPlayGameStopsOnCancel(t *testing.T) {
	backend := &fakeBackend{}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestTrainer(server.URL, 1).playGame(ctx, 1, 1, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, backend.stops)
}

func TestStatusAPI(t *testing.T) {
	backend := &fakeBackend{outcomes: []string{"draw"}}
	backendServer := httptest.NewServer(backend.handler())
	defer backendServer.Close()

	tr := newTestTrainer(backendServer.URL, 1)
	api := httptest.NewServer(tr.routes())
	defer api.Close()

	resp, err := http.Post(api.URL+"/api/trainer/start", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return tr.getStatus().Phase == "done"
	}, 5*time.Second, 5*time.Millisecond)

	resp, err = http.Get(api.URL + "/api/trainer/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	var status trainerStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.False(t, status.Running)
	assert.Equal(t, 1, status.Draws)

	resp2, err := http.Post(api.URL+"/api/trainer/stop", "application/json", nil)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
}
