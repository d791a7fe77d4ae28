// Package config loads service configuration from flags, environment,
// .env files and an optional donations.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. DONATIONS_DB.
const EnvPrefix = "DONATIONS"

// Keys.
const (
	KeyConfigFile      = "config"
	KeyDB              = "db"
	KeyAddr            = "addr"
	KeyJWTSecret       = "jwt_secret"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyLogFile         = "log.file"
	KeyRateLimitRPS    = "ratelimit.rps"
	KeyRateLimitBurst  = "ratelimit.burst"
	KeyAdminEmail      = "admin.email"
	KeyShutdownTimeout = "shutdown_timeout"
	KeyTrustProxy      = "trust_proxy"
)

// Config is the resolved service configuration.
type Config struct {
	DB              string
	Addr            string
	JWTSecret       string
	AdminEmail      string
	ShutdownTimeout time.Duration
	TrustProxy      bool
	Log             LogConfig
	RateLimit       RateLimitConfig
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level  zerolog.Level
	Format string
	File   string
}

// RateLimitConfig configures the per-IP limit on public submissions.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDB, "donations.sqlite3")
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyJWTSecret, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyRateLimitRPS, 1.0)
	v.SetDefault(KeyRateLimitBurst, 10)
	v.SetDefault(KeyAdminEmail, "admin@localhost")
	v.SetDefault(KeyShutdownTimeout, 5*time.Second)
	v.SetDefault(KeyTrustProxy, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotenv loads .env.local and .env from the working directory if they
// exist. Variables already set in the environment win.
func LoadDotenv() error {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("loading %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file, if any, and resolves v into a Config. An
// explicitly named config file must exist; donations.yaml in the working
// directory is optional.
func Load(v *viper.Viper) (Config, error) {
	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("donations")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	level, err := zerolog.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}

	cfg := Config{
		DB:              v.GetString(KeyDB),
		Addr:            v.GetString(KeyAddr),
		JWTSecret:       v.GetString(KeyJWTSecret),
		AdminEmail:      v.GetString(KeyAdminEmail),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
		TrustProxy:      v.GetBool(KeyTrustProxy),
		Log: LogConfig{
			Level:  level,
			Format: v.GetString(KeyLogFormat),
			File:   v.GetString(KeyLogFile),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64(KeyRateLimitRPS),
			Burst: v.GetInt(KeyRateLimitBurst),
		},
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.DB == "":
		return fmt.Errorf("%s must be set", KeyDB)
	case c.Log.Format != "console" && c.Log.Format != "json":
		return fmt.Errorf("%s must be console or json, got %q", KeyLogFormat, c.Log.Format)
	case c.RateLimit.RPS < 0:
		return fmt.Errorf("%s must not be negative", KeyRateLimitRPS)
	case c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1:
		return fmt.Errorf("%s must be at least 1", KeyRateLimitBurst)
	case c.JWTSecret != "" && len(c.JWTSecret) < 32:
		return fmt.Errorf("%s must be at least 32 characters", KeyJWTSecret)
	}
	return nil
}
