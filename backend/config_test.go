package main

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.AiDepth)
	assert.Equal(t, math.MaxInt32-20, cfg.AiWinningValue)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ATAXX_ADDR", ":9000")
	t.Setenv("ATAXX_AI_DEPTH", "3")
	t.Setenv("ATAXX_AI_WINNING_VALUE", "5000")
	t.Setenv("ATAXX_AI_LOG_SEARCH_STATS", "false")
	t.Setenv("ATAXX_PROFILE", "CPU")
	t.Setenv("ATAXX_TICK_MS", "20")

	cfg, err := LoadConfigFromEnv(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 3, cfg.AiDepth)
	assert.Equal(t, 5000, cfg.AiWinningValue)
	assert.False(t, cfg.AiLogSearchStats)
	assert.Equal(t, "cpu", cfg.Profile)
	assert.Equal(t, 20, cfg.TickMs)
}

func TestLoadConfigFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"ATAXX_AI_DEPTH":            "deep",
		"ATAXX_AI_LOG_SEARCH_STATS": "maybe",
		"ATAXX_TICK_MS":             "0",
		"ATAXX_PROFILE":             "trace",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			cfg, err := LoadConfigFromEnv(DefaultConfig())
			assert.Error(t, err)
			assert.Equal(t, DefaultConfig(), cfg)
		})
	}
}

func TestValidateBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AiDepth = 0
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig))

	cfg = DefaultConfig()
	cfg.AiDepth = maxSearchDepth + 1
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig))

	cfg = DefaultConfig()
	cfg.AiWinningValue = Side * Side
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig), "winning value must beat any material lead")
}

func TestConfigStoreUpdateRejectsInvalid(t *testing.T) {
	store := &ConfigStore{config: DefaultConfig()}
	bad := DefaultConfig()
	bad.AiDepth = -1
	assert.Error(t, store.Update(bad))
	assert.Equal(t, DefaultConfig(), store.Get())

	good := DefaultConfig()
	good.AiDepth = 2
	require.NoError(t, store.Update(good))
	assert.Equal(t, 2, store.Get().AiDepth)
}
