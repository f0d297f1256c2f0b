package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds every setting the service reads at start
type Config struct {
	Port             string
	LogLevel         string
	SweepInterval    time.Duration
	PlatformFeeRate  decimal.Decimal
	PayoutFeeRate    decimal.Decimal
	MinimumPayout    decimal.Decimal
	EscrowHoldPeriod time.Duration
	DatabaseURL      string // empty: in-memory stores
	AllowedOrigins   []string
	NotifyBuffer     int
}

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{
		Port:             "8080",
		LogLevel:         "info",
		SweepInterval:    2 * time.Second,
		PlatformFeeRate:  decimal.RequireFromString("0.05"),
		PayoutFeeRate:    decimal.Zero,
		MinimumPayout:    decimal.NewFromInt(100),
		EscrowHoldPeriod: 72 * time.Hour,
		AllowedOrigins:   []string{"*"},
		NotifyBuffer:     256,
	}
}

// Load reads the .env file at path, if it exists, then the environment.
// Variables already set in the environment win over the file.
func Load(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error loading %s: %w", path, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: want a positive duration like 2s, got %q", key, v))
			return
		}
		*dst = d
	}
	dec := func(key string, dst *decimal.Decimal) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: want a decimal, got %q", key, v))
			return
		}
		*dst = d
	}

	str("PORT", &cfg.Port)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("DATABASE_URL", &cfg.DatabaseURL)
	dur("SWEEP_INTERVAL", &cfg.SweepInterval)
	dur("ESCROW_HOLD_PERIOD", &cfg.EscrowHoldPeriod)
	dec("PLATFORM_FEE_RATE", &cfg.PlatformFeeRate)
	dec("PAYOUT_FEE_RATE", &cfg.PayoutFeeRate)
	dec("MINIMUM_PAYOUT", &cfg.MinimumPayout)

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}
	if v, ok := lookup("NOTIFY_BUFFER"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("NOTIFY_BUFFER: want a positive integer, got %q", v))
		} else {
			cfg.NotifyBuffer = n
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	one := decimal.NewFromInt(1)
	switch {
	case c.PlatformFeeRate.IsNegative() || c.PlatformFeeRate.GreaterThanOrEqual(one):
		return fmt.Errorf("invalid configuration: PLATFORM_FEE_RATE must be in [0, 1), got %s", c.PlatformFeeRate)
	case c.PayoutFeeRate.IsNegative() || c.PayoutFeeRate.GreaterThanOrEqual(one):
		return fmt.Errorf("invalid configuration: PAYOUT_FEE_RATE must be in [0, 1), got %s", c.PayoutFeeRate)
	case c.MinimumPayout.IsNegative():
		return fmt.Errorf("invalid configuration: MINIMUM_PAYOUT must not be negative, got %s", c.MinimumPayout)
	case len(c.AllowedOrigins) == 0:
		return errors.New("invalid configuration: CORS_ALLOWED_ORIGINS is empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid configuration: PORT must be numeric, got %q", c.Port)
	}
	return nil
}

// Addr is the HTTP listen address
func (c Config) Addr() string {
	return ":" + c.Port
}
