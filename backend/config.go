package main

import (
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const maxSearchDepth = 12

type Config struct {
	Addr             string `json:"addr"`
	LogLevel         string `json:"log_level"`
	Profile          string `json:"profile"`
	TickMs           int    `json:"tick_ms"`
	AiDepth          int    `json:"ai_depth"`
	AiWinningValue   int    `json:"ai_winning_value"`
	AiLogSearchStats bool   `json:"ai_log_search_stats"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		Profile:  "",
		TickMs:   50,

		AiDepth: 4,
		// Leaves room for the depth bonus below the int32 ceiling.
		AiWinningValue:   math.MaxInt32 - 20,
		AiLogSearchStats: true,
	}
}

// Validate rejects settings the engine cannot search with.
func (c Config) Validate() error {
	if c.AiDepth < 1 || c.AiDepth > maxSearchDepth {
		return errors.Wrapf(ErrInvalidConfig, "ai_depth %d outside [1,%d]", c.AiDepth, maxSearchDepth)
	}
	if c.AiWinningValue <= Side*Side || c.AiWinningValue > math.MaxInt32 {
		return errors.Wrapf(ErrInvalidConfig, "ai_winning_value %d must exceed any piece difference and fit in int32", c.AiWinningValue)
	}
	if c.TickMs <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "tick_ms %d must be positive", c.TickMs)
	}
	switch c.Profile {
	case "", "cpu", "mem":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown profile mode %q", c.Profile)
	}
	return nil
}

// LoadConfigFromEnv overlays ATAXX_* environment variables on base.
func LoadConfigFromEnv(base Config) (Config, error) {
	cfg := base
	cfg.Addr = getenv("ATAXX_ADDR", cfg.Addr)
	cfg.LogLevel = getenv("ATAXX_LOG_LEVEL", cfg.LogLevel)
	cfg.Profile = strings.ToLower(getenv("ATAXX_PROFILE", cfg.Profile))
	var err error
	if cfg.TickMs, err = getenvInt("ATAXX_TICK_MS", cfg.TickMs); err != nil {
		return base, err
	}
	if cfg.AiDepth, err = getenvInt("ATAXX_AI_DEPTH", cfg.AiDepth); err != nil {
		return base, err
	}
	if cfg.AiWinningValue, err = getenvInt("ATAXX_AI_WINNING_VALUE", cfg.AiWinningValue); err != nil {
		return base, err
	}
	if cfg.AiLogSearchStats, err = getenvBool("ATAXX_AI_LOG_SEARCH_STATS", cfg.AiLogSearchStats); err != nil {
		return base, err
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) error {
	if err := newConfig.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
	return nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback, errors.Wrapf(err, "failed to parse %s=%q as int", key, value)
	}
	return parsed, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, errors.Wrapf(err, "failed to parse %s=%q as bool", key, value)
	}
	return parsed, nil
}
