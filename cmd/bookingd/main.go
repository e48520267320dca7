// ABOUTME: Entry point for the bookingd API server
// ABOUTME: Loads config, opens the store, bootstraps the admin account, and serves HTTP

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/lotus-studio/bookingd/internal/account"
	"github.com/lotus-studio/bookingd/internal/auth"
	"github.com/lotus-studio/bookingd/internal/booking"
	"github.com/lotus-studio/bookingd/internal/config"
	"github.com/lotus-studio/bookingd/internal/server"
	"github.com/lotus-studio/bookingd/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

// getConfigPath returns the path to the bookingd config file.
// Priority: BOOKINGD_CONFIG env var > XDG_CONFIG_HOME/bookingd/bookingd.yaml > ~/.config/bookingd/bookingd.yaml
func getConfigPath() string {
	if envPath := os.Getenv("BOOKINGD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "bookingd.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "bookingd", "bookingd.yaml")
}

func main() {
	// .env is optional; used in development so secrets stay out of the YAML
	_ = godotenv.Load()

	cfgPath := getConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config from %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting bookingd",
		"version", version,
		"http_addr", cfg.Server.HTTPAddr,
		"database", cfg.Database.Path,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("bookingd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = st.Close() }()

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("creating verifier: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrapAdmin(ctx, st, cfg.Bootstrap, logger); err != nil {
		return fmt.Errorf("bootstrapping admin: %w", err)
	}

	accounts := account.NewService(st, verifier, cfg.Auth.TokenTTL, logger)
	bookings := booking.NewService(st, logger)
	srv := server.New(accounts, bookings, st, verifier, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}

// bootstrapAdmin creates the configured admin account when the user table is
// empty. Later starts are no-ops, so a deleted bootstrap admin is not
// resurrected while other accounts exist.
func bootstrapAdmin(ctx context.Context, st store.Store, cfg config.BootstrapConfig, logger *slog.Logger) error {
	if cfg.AdminEmail == "" {
		return nil
	}

	count, err := st.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &store.User{
		Email:        cfg.AdminEmail,
		FirstName:    cfg.AdminFirstName,
		LastName:     cfg.AdminLastName,
		PasswordHash: string(hash),
		Admin:        true,
	}
	if err := st.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	logger.Info("bootstrapped admin account", "email", cfg.AdminEmail)
	return nil
}

// setupLogger builds the process logger from the logging config.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
