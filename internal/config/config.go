package config

import (
	"os"
	"strconv"
	"time"

	// loads .env into the environment before Load runs
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Addr         string
	AllowOrigins string
	Engine       EngineConfig
}

type EngineConfig struct {
	// Path to the UCI engine binary; "stockfish" is expected on PATH.
	Path string
	// DefaultTier is used when game creation names no tier.
	DefaultTier string
	// MoveTimeout bounds how long a single best-move request may block.
	MoveTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Addr:         getEnv("ADDR", ":3000"),
		AllowOrigins: getEnv("ALLOW_ORIGINS", "http://localhost:5173"),
		Engine: EngineConfig{
			Path:        getEnv("ENGINE_PATH", "stockfish"),
			DefaultTier: getEnv("ENGINE_DEFAULT_TIER", "beginner"),
			MoveTimeout: time.Duration(getEnvInt("ENGINE_MOVE_TIMEOUT_SECONDS", 30)) * time.Second,
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
