package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := LoadConfigFromEnv(DefaultConfig())
	setupLogging(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := configStore.Update(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	switch cfg.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("backend stopped")
		return
	}
	log.Info().Msg("backend stopped")
}

// run serves the API and drives the game loop until ctx is cancelled.
func run(ctx context.Context, cfg Config) error {
	controller := NewGameController(DefaultGameSettings())
	hub := NewHub()
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(controller, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx.Done())
		return nil
	})
	g.Go(func() error {
		runTickLoop(gctx, controller, hub, time.Duration(cfg.TickMs)*time.Millisecond)
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Int("ai_depth", cfg.AiDepth).Msg("backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Wrap(server.Shutdown(shutdownCtx), "http shutdown")
	})
	return g.Wait()
}

// runTickLoop advances the game and broadcasts every applied move or status change.
func runTickLoop(ctx context.Context, controller *GameController, hub *Hub, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastStatus := controller.Status()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			moved := controller.Tick()
			status := controller.Status()
			if moved {
				if entry, ok := controller.LatestHistoryEntry(); ok {
					hub.PublishHistory(historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}})
				}
			}
			if moved || status != lastStatus {
				hub.PublishStatus(controllerStatus(controller))
			}
			lastStatus = status
		}
	}
}
