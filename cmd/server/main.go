// Package main is the entry point for the noteful API server.
//
// Its job is deliberately small: read configuration from the environment,
// build the logger, and hand both to the server package. All actual logic
// lives under internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/noteful/internal/server"
)

func main() {
	// A .env file is a convenience for local development; in production the
	// variables come from the real environment and the file simply isn't
	// there, which is not an error.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/noteful.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// The signing secret is the one piece of configuration the server cannot
	// invent: without it no token can be issued or verified.
	// Generate one with: openssl rand -hex 32
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	// Token lifetime, e.g. "168h" for a week. Empty falls back to the
	// default inside the token service.
	var tokenExpiry time.Duration
	if expiryStr := os.Getenv("JWT_EXPIRY"); expiryStr != "" {
		var err error
		tokenExpiry, err = time.ParseDuration(expiryStr)
		if err != nil {
			logger.Error("invalid JWT_EXPIRY value", slog.String("value", expiryStr))
			os.Exit(1)
		}
	}

	// Bcrypt work factor override. Empty keeps the default.
	bcryptCost := 0
	if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
		var err error
		bcryptCost, err = strconv.Atoi(costStr)
		if err != nil {
			logger.Error("invalid BCRYPT_COST value", slog.String("value", costStr))
			os.Exit(1)
		}
	}

	cfg := server.Config{
		Port:        port,
		DBPath:      dbPath,
		JWTSecret:   jwtSecret,
		TokenExpiry: tokenExpiry,
		BcryptCost:  bcryptCost,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
