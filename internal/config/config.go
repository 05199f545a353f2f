// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// DatabaseURL selects the backing store: a postgres DSN, or empty to
	// run against the in-memory store.
	DatabaseURL    string
	Port           string
	JWTSecret      string
	AllowedOrigins string
}

func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           getenv("SERVER_PORT", "8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
	}
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET is not set, using an insecure development default")
		cfg.JWTSecret = "dev-secret-change-me"
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
