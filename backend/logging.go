package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogging(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
		With().Timestamp().Logger()
	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Err(err).Msg("unknown log level, using info")
	}
}

func logSearchStats(tag string, color PieceColor, move Move, stats *SearchStats) {
	if stats == nil {
		return
	}
	nps := 0.0
	if stats.Elapsed > 0 {
		nps = float64(stats.Nodes+stats.Leaves) / stats.Elapsed.Seconds()
	}
	log.Info().
		Str("tag", tag).
		Stringer("color", color).
		Stringer("move", move).
		Int("depth", stats.Depth).
		Int("value", stats.Value).
		Int64("nodes", stats.Nodes).
		Int64("leaves", stats.Leaves).
		Int64("cutoffs", stats.Cutoffs).
		Float64("nps", nps).
		Dur("elapsed", stats.Elapsed).
		Msg("ai-search")
}
