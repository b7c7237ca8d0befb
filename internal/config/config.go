// Package config loads application settings from the environment.
package config

import (
	"errors"
	"log"
	"os"
	"strconv"
)

// Config holds every runtime setting. DatabaseURL and RedisAddr are
// optional: without a database the server runs on the in-memory store,
// without redis the unread badge cache is disabled.
type Config struct {
	Port          string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	AllowedOrigin string
}

// Load reads the environment. JWT_SECRET is the only hard requirement;
// everything else has a workable default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          os.Getenv("PORT"),
		DatabaseURL:   os.Getenv("DB_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			log.Printf("invalid REDIS_DB %q, using 0: %v", raw, err)
		} else {
			cfg.RedisDB = db
		}
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET environment variable is not set")
	}

	return cfg, nil
}
