package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("PROFILE_STORE", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "memory", cfg.ProfileStore)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.GuardWait)
	assert.Zero(t, cfg.GeminiTemperature)
	assert.Zero(t, cfg.GeminiMaxTokens)
}

func TestLoadGeminiSampling(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("GEMINI_TEMPERATURE", "0.4")
	t.Setenv("GEMINI_MAX_TOKENS", "512")

	cfg := Load()

	assert.InDelta(t, 0.4, cfg.GeminiTemperature, 1e-6)
	assert.Equal(t, int32(512), cfg.GeminiMaxTokens)
}

func TestNumber(t *testing.T) {
	t.Setenv("GEMINI_MAX_TOKENS", "lots")
	assert.Equal(t, float64(0), number("GEMINI_MAX_TOKENS", 0, 0))
	t.Setenv("GEMINI_MAX_TOKENS", "-5")
	assert.Equal(t, float64(0), number("GEMINI_MAX_TOKENS", 0, 0))
	t.Setenv("GEMINI_TEMPERATURE", "1.5")
	assert.Equal(t, 1.5, number("GEMINI_TEMPERATURE", 0, 32))
}

func TestDuration(t *testing.T) {
	t.Run("go duration", func(t *testing.T) {
		t.Setenv("GUARD_WAIT", "750ms")
		assert.Equal(t, 750*time.Millisecond, duration("GUARD_WAIT", time.Second))
	})
	t.Run("bare milliseconds", func(t *testing.T) {
		t.Setenv("GUARD_WAIT", "250")
		assert.Equal(t, 250*time.Millisecond, duration("GUARD_WAIT", time.Second))
	})
	t.Run("garbage falls back", func(t *testing.T) {
		t.Setenv("GUARD_WAIT", "soon")
		assert.Equal(t, time.Second, duration("GUARD_WAIT", time.Second))
	})
}
