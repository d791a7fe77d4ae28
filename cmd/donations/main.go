// Command donations runs the donation management backend.
package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/erazemk/donations/internal/api"
	"github.com/erazemk/donations/internal/auth"
	"github.com/erazemk/donations/internal/config"
	"github.com/erazemk/donations/internal/db"
	"github.com/erazemk/donations/internal/donation"
	"github.com/erazemk/donations/internal/metrics"
	"github.com/erazemk/donations/internal/model"
	"github.com/erazemk/donations/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// persistentKeys maps config keys to the root command's flags.
var persistentKeys = map[string]string{
	config.KeyConfigFile: config.KeyConfigFile,
	config.KeyDB:         config.KeyDB,
	config.KeyLogLevel:   "log-level",
	config.KeyLogFormat:  "log-format",
	config.KeyLogFile:    "log-file",
}

// bindFlags binds flags to config keys. It runs when a command executes, so
// that commands sharing a key each bind their own flag.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

func newRootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:          "donations",
		Short:        "Donation management backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindFlags(v, cmd.Flags(), persistentKeys); err != nil {
				return err
			}
			return config.LoadDotenv()
		},
	}

	pf := root.PersistentFlags()
	pf.StringP(config.KeyConfigFile, "c", "", "config file (default: ./donations.yaml if present)")
	pf.StringP(config.KeyDB, "d", "donations.sqlite3", "SQLite database path")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")
	pf.StringP("log-file", "l", "", "also write logs to this file")

	root.AddCommand(newInitCmd(v), newMigrateCmd(v), newServeCmd(v))
	return root
}

func newInitCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new database and its admin account",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), map[string]string{config.KeyAdminEmail: "admin-email"})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.DB); err == nil {
				return fmt.Errorf("database file %s already exists", cfg.DB)
			}

			database, password, err := initDatabase(cmd.Context(), cfg.DB, cfg.AdminEmail)
			if err != nil {
				return err
			}
			database.Close()

			printInitResult(cmd, cfg.DB, cfg.AdminEmail, password)
			return nil
		},
	}
	cmd.Flags().String("admin-email", "admin@localhost", "email of the admin account")
	return cmd
}

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to an existing database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			database, err := db.Open(cfg.DB)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.Migrate(database); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date.\n", cfg.DB)
			return nil
		},
	}
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), serveKeys)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return serve(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "listen address")
	f.String("jwt-secret", "", "JWT signing key (persisted in the database if empty)")
	f.Float64("rate-limit", 1, "public submissions per second per client IP (0 disables)")
	f.Int("rate-burst", 10, "burst size for public submissions")
	f.String("admin-email", "admin@localhost", "email of the admin account created on first run")
	f.Bool("trust-proxy", false, "take client IPs from X-Forwarded-For and X-Real-IP")
	return cmd
}

var serveKeys = map[string]string{
	config.KeyAddr:           "addr",
	config.KeyJWTSecret:      "jwt-secret",
	config.KeyRateLimitRPS:   "rate-limit",
	config.KeyRateLimitBurst: "rate-burst",
	config.KeyAdminEmail:     "admin-email",
	config.KeyTrustProxy:     "trust-proxy",
}

func serve(cmd *cobra.Command, cfg config.Config) error {
	logger, closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	// Auto-init on first run.
	if _, err := os.Stat(cfg.DB); errors.Is(err, fs.ErrNotExist) {
		database, password, err := initDatabase(cmd.Context(), cfg.DB, cfg.AdminEmail)
		if err != nil {
			logger.Error().Err(err).Msg("failed to initialize database")
			return err
		}
		database.Close()
		printInitResult(cmd, cfg.DB, cfg.AdminEmail, password)
	}

	database, err := db.Open(cfg.DB)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open database")
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Error().Err(err).Msg("failed to migrate database")
		return err
	}
	logger.Info().Str("path", cfg.DB).Msg("database ready")

	secret := cfg.JWTSecret
	if secret == "" {
		if secret, err = store.GetJWTSecret(cmd.Context(), database); err != nil {
			logger.Error().Err(err).Msg("failed to get JWT secret")
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var limiter *api.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = api.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	handler := api.NewRouter(api.Config{
		DB:         database,
		Tokens:     auth.NewTokens(secret),
		Service:    donation.NewService(database, donation.WithLogger(logger), donation.WithMetrics(m)),
		Logger:     logger,
		Metrics:    m,
		Gatherer:   reg,
		Limiter:    limiter,
		TrustProxy: cfg.TrustProxy,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go purgeRevokedTokens(ctx, database, logger, time.Hour)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// purgeRevokedTokens periodically drops revocations of expired tokens until
// ctx is done.
func purgeRevokedTokens(ctx context.Context, database *sql.DB, logger zerolog.Logger, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeRevokedTokens(ctx, database, now)
			if err != nil {
				logger.Warn().Err(err).Msg("purging revoked tokens")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("purged", n).Msg("purged revoked tokens")
			}
		}
	}
}

// initDatabase creates a new database, runs migrations and creates the admin user.
func initDatabase(ctx context.Context, path, adminEmail string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.Migrate(database); err != nil {
		return fail(fmt.Errorf("running migrations: %w", err))
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(err)
	}

	if _, err := store.CreateUser(ctx, database, adminEmail, "", "", hash, model.RoleAdmin, nil); err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}

	return database, password, nil
}

func printInitResult(cmd *cobra.Command, path, email, password string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Database created: %s\n\n", path)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Email:    %s\n", email)
	fmt.Fprintf(w, "  Password: %s\n\n", password)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
