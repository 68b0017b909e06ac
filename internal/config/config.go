// Package config loads server and client settings from the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hangman/pkg/logger"
)

const (
	DefaultPort           = 8080
	DefaultConnectTimeout = 30 * time.Second
	DefaultIdleTimeout    = 30 * time.Minute
	DefaultLinger         = 5 * time.Second
	DefaultWriteTimeout   = 10 * time.Second
	DefaultOutboxLimit    = 1024
	DefaultRate           = 10.0
	DefaultBurst          = 20
)

// ErrInvalidPort is returned for port values outside 1-65535 or not numeric
var ErrInvalidPort = errors.New("invalid port number")

// Config holds every tunable of the server and client
type Config struct {
	Host           string
	Port           int
	WSAddr         string
	WordsFile      string
	LogLevel       string
	LogFile        string
	ConnectTimeout time.Duration
	IdleTimeout    time.Duration
	Linger         time.Duration
	WriteTimeout   time.Duration
	OutboxLimit    int
	Rate           float64
	Burst          int
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Port:           DefaultPort,
		LogLevel:       "INFO",
		ConnectTimeout: DefaultConnectTimeout,
		IdleTimeout:    DefaultIdleTimeout,
		Linger:         DefaultLinger,
		WriteTimeout:   DefaultWriteTimeout,
		OutboxLimit:    DefaultOutboxLimit,
		Rate:           DefaultRate,
		Burst:          DefaultBurst,
	}
}

// Address returns the TCP listen address
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads an optional .env file and HANGMAN_* variables on top of Default.
// Bad values are reported through log and leave the default in place.
func Load(log *logger.Logger) Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("Error loading .env file: %v", err)
	}
	return FromEnv(os.Getenv, log)
}

// FromEnv builds a Config from the lookup function getenv
func FromEnv(getenv func(string) string, log *logger.Logger) Config {
	cfg := Default()

	cfg.Host = getenv("HANGMAN_HOST")
	cfg.WSAddr = getenv("HANGMAN_WS_ADDR")
	cfg.WordsFile = getenv("HANGMAN_WORDS")
	cfg.LogFile = getenv("HANGMAN_LOG_FILE")
	if v := getenv("HANGMAN_LOG_LEVEL"); v != "" {
		if _, ok := logger.ParseLevel(v); ok {
			cfg.LogLevel = strings.ToUpper(v)
		} else {
			log.Warn("Invalid log level %q, using %s", v, cfg.LogLevel)
		}
	}

	if v := getenv("HANGMAN_PORT"); v != "" {
		port, err := ParsePort(v)
		if err != nil {
			log.Warn("%v, using default %d", err, cfg.Port)
		} else {
			cfg.Port = port
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"HANGMAN_CONNECT_TIMEOUT", &cfg.ConnectTimeout},
		{"HANGMAN_IDLE_TIMEOUT", &cfg.IdleTimeout},
	}
	for _, d := range durations {
		v := getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			log.Warn("Invalid %s %q, using %s", d.key, v, *d.dst)
			continue
		}
		*d.dst = parsed
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"HANGMAN_OUTBOX_LIMIT", &cfg.OutboxLimit},
		{"HANGMAN_BURST", &cfg.Burst},
	}
	for _, i := range ints {
		v := getenv(i.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			log.Warn("Invalid %s %q, using %d", i.key, v, *i.dst)
			continue
		}
		*i.dst = parsed
	}

	if v := getenv("HANGMAN_RATE"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			log.Warn("Invalid HANGMAN_RATE %q, using %g", v, cfg.Rate)
		} else {
			cfg.Rate = parsed
		}
	}

	return cfg
}

// ParsePort validates a decimal TCP port
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
	}
	return port, nil
}

// ResolvePort picks the listen port from the positional CLI arguments.
// The first argument is used when present; a missing or invalid value keeps
// fallback and an invalid one is reported as a warning.
func ResolvePort(args []string, fallback int, log *logger.Logger) int {
	if len(args) == 0 {
		return fallback
	}
	port, err := ParsePort(args[0])
	if err != nil {
		log.Warn("%v, using default %d", err, fallback)
		return fallback
	}
	return port
}
