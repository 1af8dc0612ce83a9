// Package config loads the settings of the atm command from a YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	LedgerMemory = "memory"
	LedgerNats   = "nats"
)

var ErrInvalid = errors.New("invalid config")

type (
	Config struct {
		// LogLevel is one of debug, info, warn, error.
		LogLevel string `yaml:"log_level"`
		// MetricsAddr enables the /metrics endpoint when not empty.
		MetricsAddr    string    `yaml:"metrics_addr"`
		PinLength      int       `yaml:"pin_length"`
		WithdrawAmount uint64    `yaml:"withdraw_amount"`
		CardAccount    string    `yaml:"card_account"`
		Ledger         Ledger    `yaml:"ledger"`
		Accounts       []Account `yaml:"accounts"`
	}

	Ledger struct {
		Backend string `yaml:"backend"`
		NatsURL string `yaml:"nats_url"`
		Bucket  string `yaml:"bucket"`
	}

	Account struct {
		ID      string `yaml:"id"`
		Pin     string `yaml:"pin"`
		Balance uint64 `yaml:"balance"`
	}
)

// Default returns the demo setup: one account holding 99 behind a six digit
// pin while the ATM reads four digits, so every pin is rejected.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		PinLength:      4,
		WithdrawAmount: 50,
		CardAccount:    "acc1234",
		Ledger:         Ledger{Backend: LedgerMemory},
		Accounts: []Account{
			{ID: "acc1234", Pin: "123456", Balance: 99},
		},
	}
}

// Load reads path on top of Default, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnv("ATM_LOG_LEVEL", c.LogLevel)
	c.MetricsAddr = getEnv("ATM_METRICS_ADDR", c.MetricsAddr)
	c.PinLength = getEnvInt("ATM_PIN_LENGTH", c.PinLength)
	c.Ledger.Backend = getEnv("ATM_LEDGER", c.Ledger.Backend)
	c.Ledger.NatsURL = getEnv("NATS_URL", c.Ledger.NatsURL)
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.PinLength <= 0 {
		errs = append(errs, fmt.Errorf("pin_length must be positive, got %d", c.PinLength))
	}
	if c.WithdrawAmount == 0 {
		errs = append(errs, errors.New("withdraw_amount must be positive"))
	}
	switch c.Ledger.Backend {
	case LedgerMemory, LedgerNats:
	default:
		errs = append(errs, fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend))
	}

	seen := make(map[string]bool, len(c.Accounts))
	for _, acc := range c.Accounts {
		switch {
		case acc.ID == "":
			errs = append(errs, errors.New("account without id"))
		case seen[acc.ID]:
			errs = append(errs, fmt.Errorf("duplicate account %s", acc.ID))
		case !isDigits(acc.Pin):
			errs = append(errs, fmt.Errorf("account %s: pin must be digits", acc.ID))
		}
		seen[acc.ID] = true
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.Trim(s, "0123456789") == ""
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}
