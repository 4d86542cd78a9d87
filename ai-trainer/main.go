package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const recentResultsLimit = 20

var errTrainerBusy = errors.New("matches already running")

type trainer struct {
	client       *http.Client
	baseURL      string
	pollInterval time.Duration
	games        int
	seed         int64
	gameTimeout  time.Duration
	aiDepth      int
	apiAddr      string

	statusMu  sync.RWMutex
	status    trainerStatus
	jobMu     sync.Mutex
	jobCancel context.CancelFunc
	jobDone   chan struct{}
}

// backendStatus is the subset of the backend status the runner reads.
type backendStatus struct {
	Status      string            `json:"status"`
	Winner      int               `json:"winner"`
	RedPieces   int               `json:"red_pieces"`
	BluePieces  int               `json:"blue_pieces"`
	History     []json.RawMessage `json:"history"`
	LastMessage string            `json:"last_message"`
}

type matchResult struct {
	Game       int    `json:"game"`
	RedSeed    int64  `json:"red_seed"`
	BlueSeed   int64  `json:"blue_seed"`
	Outcome    string `json:"outcome"`
	Moves      int    `json:"moves"`
	RedPieces  int    `json:"red_pieces"`
	BluePieces int    `json:"blue_pieces"`
	DurationMs int64  `json:"duration_ms"`
}

type trainerStatus struct {
	Running     bool          `json:"running"`
	Phase       string        `json:"phase"`
	Message     string        `json:"message"`
	Depth       int           `json:"depth"`
	GamesTotal  int           `json:"games_total"`
	GamesPlayed int           `json:"games_played"`
	RedWins     int           `json:"red_wins"`
	BlueWins    int           `json:"blue_wins"`
	Draws       int           `json:"draws"`
	Failures    int           `json:"failures"`
	Recent      []matchResult `json:"recent"`
	StartedAt   string        `json:"started_at"`
	UpdatedAt   string        `json:"updated_at"`
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}).
		With().Timestamp().Str("service", "ai-trainer").Logger()

	t := &trainer{
		client:       &http.Client{Timeout: 10 * time.Second},
		baseURL:      getenv("BACKEND_URL", "http://backend:8080"),
		pollInterval: time.Duration(getenvInt("POLL_INTERVAL_MS", 500)) * time.Millisecond,
		games:        getenvInt("TRAINER_GAMES", 10),
		seed:         int64(getenvInt("TRAINER_SEED", 1)),
		gameTimeout:  time.Duration(getenvInt("TRAINER_GAME_TIMEOUT_SEC", 300)) * time.Second,
		aiDepth:      getenvInt("TRAINER_AI_DEPTH", 0),
		apiAddr:      getenv("TRAINER_API_ADDR", ":8090"),
		status:       newTrainerStatus(),
	}

	log.Info().
		Str("backend", t.baseURL).
		Int("games", t.games).
		Int64("seed", t.seed).
		Dur("poll_interval", t.pollInterval).
		Msg("AI trainer service started")

	server := &http.Server{Addr: t.apiAddr, Handler: t.routes()}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("trainer api server error")
		}
	}()

	if autostart, _ := strconv.ParseBool(getenv("TRAINER_AUTOSTART", "true")); autostart {
		if err := t.startMatches(); err != nil {
			log.Warn().Err(err).Msg("autostart failed")
		}
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	<-sigCtx.Done()
	_ = t.stopMatches("shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	log.Info().Msg("trainer service stopping")
}

func newTrainerStatus() trainerStatus {
	now := time.Now().UTC().Format(time.RFC3339)
	return trainerStatus{Phase: "idle", Message: "service ready", StartedAt: now, UpdatedAt: now}
}

func (t *trainer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/trainer/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "running": t.getStatus().Running})
	})
	r.Get("/api/trainer/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	r.Post("/api/trainer/start", func(w http.ResponseWriter, r *http.Request) {
		if err := t.startMatches(); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	r.Post("/api/trainer/stop", func(w http.ResponseWriter, r *http.Request) {
		if err := t.stopMatches("requested via api"); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	return r
}

func (t *trainer) getStatus() trainerStatus {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	status := t.status
	status.Recent = append([]matchResult(nil), t.status.Recent...)
	return status
}

func (t *trainer) updateStatus(mutator func(*trainerStatus)) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	mutator(&t.status)
	t.status.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// startMatches launches the self-play series in the background.
func (t *trainer) startMatches() error {
	t.jobMu.Lock()
	defer t.jobMu.Unlock()
	if t.jobCancel != nil {
		return errTrainerBusy
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.jobCancel = cancel
	t.jobDone = done
	t.updateStatus(func(s *trainerStatus) {
		*s = newTrainerStatus()
		s.Running = true
		s.Phase = "starting"
		s.Message = "waiting for backend"
		s.GamesTotal = t.games
		s.Depth = t.aiDepth
	})
	go func() {
		defer close(done)
		err := t.waitBackendReady(ctx)
		if err == nil {
			err = t.runMatches(ctx)
		}
		t.jobMu.Lock()
		t.jobCancel = nil
		t.jobDone = nil
		t.jobMu.Unlock()
		t.updateStatus(func(s *trainerStatus) {
			s.Running = false
			switch {
			case err != nil && !errors.Is(err, context.Canceled):
				s.Phase = "error"
				s.Message = err.Error()
			case err != nil:
				s.Phase = "idle"
				s.Message = "stopped"
			default:
				s.Phase = "done"
				s.Message = "series finished"
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("self-play series failed")
		}
	}()
	return nil
}

func (t *trainer) stopMatches(reason string) error {
	t.jobMu.Lock()
	cancel := t.jobCancel
	done := t.jobDone
	t.jobMu.Unlock()
	if cancel == nil {
		return errors.New("no running series")
	}
	log.Info().Str("reason", reason).Msg("stopping self-play series")
	cancel()
	if done != nil {
		<-done
	}
	return nil
}

// runMatches plays the configured number of AI-vs-AI games. Game i uses
// seeds seed+2i for red and seed+2i+1 for blue.
func (t *trainer) runMatches(ctx context.Context) error {
	if t.aiDepth > 0 {
		payload := map[string]any{"config": map[string]any{"ai_depth": t.aiDepth}}
		if err := t.postJSON("/api/settings", payload, nil); err != nil {
			return errors.WithMessage(err, "set ai depth")
		}
	}
	t.updateStatus(func(s *trainerStatus) {
		s.Phase = "running"
		s.Message = "self-play running"
	})
	for game := 0; game < t.games; game++ {
		redSeed := t.seed + int64(2*game)
		result, err := t.playGame(ctx, game+1, redSeed, redSeed+1)
		if err != nil {
			return err
		}
		t.recordResult(result)
		log.Info().
			Int("game", result.Game).
			Int64("red_seed", result.RedSeed).
			Int64("blue_seed", result.BlueSeed).
			Str("outcome", result.Outcome).
			Int("moves", result.Moves).
			Int64("duration_ms", result.DurationMs).
			Msg("game finished")
	}
	return nil
}

func (t *trainer) playGame(ctx context.Context, game int, redSeed, blueSeed int64) (matchResult, error) {
	result := matchResult{Game: game, RedSeed: redSeed, BlueSeed: blueSeed}
	payload := map[string]any{
		"settings": map[string]any{
			"mode":      "ai_vs_ai",
			"red_seed":  redSeed,
			"blue_seed": blueSeed,
		},
	}
	if err := t.postJSON("/api/start", payload, nil); err != nil {
		return result, errors.WithMessagef(err, "start game %d", game)
	}
	started := time.Now()
	deadline := started.Add(t.gameTimeout)
	for {
		if !sleepWithContext(ctx, t.pollInterval) {
			_ = t.postJSON("/api/stop", map[string]any{}, nil)
			return result, ctx.Err()
		}
		var status backendStatus
		if err := t.getJSON("/api/status", &status); err != nil {
			return result, errors.WithMessagef(err, "poll game %d", game)
		}
		result.Moves = len(status.History)
		result.RedPieces = status.RedPieces
		result.BluePieces = status.BluePieces
		result.DurationMs = time.Since(started).Milliseconds()
		if status.Status != "running" {
			result.Outcome = status.Status
			if status.Status == "error" {
				log.Warn().Int("game", game).Str("message", status.LastMessage).Msg("backend stopped the game")
			}
			return result, nil
		}
		if time.Now().After(deadline) {
			result.Outcome = "timeout"
			if err := t.postJSON("/api/stop", map[string]any{}, nil); err != nil {
				return result, errors.WithMessagef(err, "stop game %d", game)
			}
			return result, nil
		}
	}
}

func (t *trainer) recordResult(result matchResult) {
	t.updateStatus(func(s *trainerStatus) {
		s.GamesPlayed++
		switch result.Outcome {
		case "red_won":
			s.RedWins++
		case "blue_won":
			s.BlueWins++
		case "draw":
			s.Draws++
		default:
			s.Failures++
		}
		s.Recent = append(s.Recent, result)
		if len(s.Recent) > recentResultsLimit {
			s.Recent = s.Recent[len(s.Recent)-recentResultsLimit:]
		}
	})
}

func (t *trainer) waitBackendReady(ctx context.Context) error {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if err := t.getJSON("/api/ping", &map[string]bool{}); err == nil {
			return nil
		}
		if !sleepWithContext(ctx, time.Second) {
			return ctx.Err()
		}
	}
	return errors.New("backend not ready after 60s")
}

func (t *trainer) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, t.baseURL+path, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	return t.do(req, out)
}

func (t *trainer) postJSON(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.WithStack(err)
	}
	req, err := http.NewRequest(http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req, out)
}

func (t *trainer) do(req *http.Request, out any) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Errorf("%s %s -> %d: %s", req.Method, req.URL.Path, resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	return errors.Wrapf(json.NewDecoder(resp.Body).Decode(out), "decode %s", req.URL.Path)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid integer")
		return fallback
	}
	return parsed
}
