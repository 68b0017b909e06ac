package config

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hangman/pkg/logger"
)

func envFrom(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"8080", 8080, false},
		{" 9000 ", 9000, false},
		{"1", 1, false},
		{"65535", 65535, false},
		{"0", 0, true},
		{"65536", 0, true},
		{"-1", 0, true},
		{"http", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePort(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidPort))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePort(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("TEST", &buf)

	assert.Equal(t, 8080, ResolvePort(nil, 8080, log))
	assert.Equal(t, 9000, ResolvePort([]string{"9000"}, 8080, log))
	assert.Equal(t, 9000, ResolvePort([]string{"9000", "extra"}, 8080, log))
	assert.Empty(t, buf.String())

	assert.Equal(t, 8080, ResolvePort([]string{"abc"}, 8080, log))
	assert.Contains(t, buf.String(), "invalid port number")
}

func TestFromEnvDefaults(t *testing.T) {
	log := logger.NewWithWriter("TEST", &bytes.Buffer{})
	cfg := FromEnv(envFrom(nil), log)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Address())
}

func TestFromEnvOverrides(t *testing.T) {
	log := logger.NewWithWriter("TEST", &bytes.Buffer{})
	cfg := FromEnv(envFrom(map[string]string{
		"HANGMAN_HOST":            "127.0.0.1",
		"HANGMAN_PORT":            "9090",
		"HANGMAN_WS_ADDR":         ":9091",
		"HANGMAN_WORDS":           "words.txt",
		"HANGMAN_LOG_LEVEL":       "debug",
		"HANGMAN_IDLE_TIMEOUT":    "1m",
		"HANGMAN_CONNECT_TIMEOUT": "2s",
		"HANGMAN_OUTBOX_LIMIT":    "16",
		"HANGMAN_RATE":            "2.5",
		"HANGMAN_BURST":           "4",
	}), log)

	assert.Equal(t, "127.0.0.1:9090", cfg.Address())
	assert.Equal(t, ":9091", cfg.WSAddr)
	assert.Equal(t, "words.txt", cfg.WordsFile)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 16, cfg.OutboxLimit)
	assert.Equal(t, 2.5, cfg.Rate)
	assert.Equal(t, 4, cfg.Burst)
}

func TestFromEnvInvalidValuesFallBack(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("TEST", &buf)
	cfg := FromEnv(envFrom(map[string]string{
		"HANGMAN_PORT":         "eighty",
		"HANGMAN_LOG_LEVEL":    "loud",
		"HANGMAN_IDLE_TIMEOUT": "forever",
		"HANGMAN_OUTBOX_LIMIT": "-3",
		"HANGMAN_RATE":         "fast",
	}), log)

	def := Default()
	assert.Equal(t, def.Port, cfg.Port)
	assert.Equal(t, def.LogLevel, cfg.LogLevel)
	assert.Equal(t, def.IdleTimeout, cfg.IdleTimeout)
	assert.Equal(t, def.OutboxLimit, cfg.OutboxLimit)
	assert.Equal(t, def.Rate, cfg.Rate)
	assert.Contains(t, buf.String(), "HANGMAN_IDLE_TIMEOUT")
	assert.Contains(t, buf.String(), "Invalid log level")
}
