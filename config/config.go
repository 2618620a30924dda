package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string // Postgres connection string; empty keeps everything in memory
	RedisURL          string
	JWTSecret         string
	SessionTTL        time.Duration
	GuardWait         time.Duration // how long a guard waits for a pending session to resolve
	ProfileStore      string        // memory | redis | postgres
	ChatStore         string        // memory | postgres
	MockLatency       time.Duration
	GeminiAPIKey      string
	GeminiModel       string
	GeminiTemperature float32 // 0 keeps the model default
	GeminiMaxTokens   int32   // 0 keeps the model default
	LogLevel          string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:              get("PORT", "8080"),
		DatabaseURL:       get("DATABASE_URL", ""),
		RedisURL:          get("REDIS_URL", ""),
		JWTSecret:         must("JWT_SECRET"),
		SessionTTL:        duration("SESSION_TTL", 24*time.Hour),
		GuardWait:         duration("GUARD_WAIT", 2*time.Second),
		ProfileStore:      get("PROFILE_STORE", "memory"),
		ChatStore:         get("CHAT_STORE", "memory"),
		MockLatency:       duration("MOCK_LATENCY", 500*time.Millisecond),
		GeminiAPIKey:      get("GEMINI_API_KEY", ""),
		GeminiModel:       get("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTemperature: float32(number("GEMINI_TEMPERATURE", 0, 32)),
		GeminiMaxTokens:   int32(number("GEMINI_MAX_TOKENS", 0, 0)),
		LogLevel:          get("LOG_LEVEL", "info"),
	}
	return cfg
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env: %s", k)
	}
	return v
}

// duration accepts Go duration strings ("750ms") or bare milliseconds ("750").
func duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	log.Printf("invalid duration for %s: %q, using %s", k, v, def)
	return def
}

// number parses a float (bits 32 or 64) or, with bits 0, a non-negative int.
// Unparsable or negative values fall back to def.
func number(k string, def float64, bits int) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var n float64
	var err error
	if bits == 0 {
		var i int64
		i, err = strconv.ParseInt(v, 10, 32)
		n = float64(i)
	} else {
		n, err = strconv.ParseFloat(v, bits)
	}
	if err != nil || n < 0 {
		log.Printf("invalid number for %s: %q, using %v", k, v, def)
		return def
	}
	return n
}
