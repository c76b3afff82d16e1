package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"trivia-quiz/internal/opentdb"
)

func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)
	cfg.RegisterServiceFlags(fs)
	return fs
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateService(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.EncodingValue() != opentdb.EncodingURL3986 {
		t.Fatalf("unexpected default encoding %q", cfg.EncodingValue())
	}
	if got := cfg.Addr(); got != "0.0.0.0:8080" {
		t.Fatalf("Addr() = %q", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "store", mutate: func(c *Config) { c.Store = "redis" }, want: "invalid store"},
		{name: "db path", mutate: func(c *Config) { c.DBPath = " " }, want: "--db"},
		{name: "retries", mutate: func(c *Config) { c.MaxRetries = 0 }, want: "max retries"},
		{name: "duration", mutate: func(c *Config) { c.RetryBaseDelay = -time.Second }, want: "negative"},
		{name: "encoding", mutate: func(c *Config) { c.Encoding = "rot13" }, want: "encoding"},
		{name: "port", mutate: func(c *Config) { c.Port = 70000 }, want: "invalid port"},
		{name: "session timeout", mutate: func(c *Config) { c.SessionTimeout = -time.Minute }, want: "session-timeout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.ValidateService()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("ValidateService() error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestMemoryStoreIgnoresDBPath(t *testing.T) {
	cfg := Default()
	cfg.Store = StoreMemory
	cfg.DBPath = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestBindEnvAppliesEnvironment(t *testing.T) {
	t.Setenv("TRIVIA_DB", "/tmp/env.db")
	t.Setenv("TRIVIA_MAX_RETRIES", "5")
	t.Setenv("TRIVIA_RETRY_BASE_DELAY", "250ms")
	t.Setenv("TRIVIA_USE_TOKEN", "true")
	t.Setenv("TRIVIA_PORT", "9090")

	cfg := Default()
	fs := newFlagSet(cfg)
	if err := BindEnv(fs); err != nil {
		t.Fatalf("BindEnv returned error: %v", err)
	}
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if cfg.DBPath != "/tmp/env.db" || cfg.MaxRetries != 5 || cfg.RetryBaseDelay != 250*time.Millisecond {
		t.Fatalf("environment not applied: %+v", cfg)
	}
	if !cfg.UseToken || cfg.Port != 9090 {
		t.Fatalf("environment not applied: %+v", cfg)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("TRIVIA_PORT", "9090")

	cfg := Default()
	fs := newFlagSet(cfg)
	if err := BindEnv(fs); err != nil {
		t.Fatalf("BindEnv returned error: %v", err)
	}
	if err := fs.Parse([]string{"--port=7070", "--retry_max_delay=2s"}); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if cfg.Port != 7070 {
		t.Fatalf("Port = %d, want flag value 7070", cfg.Port)
	}
	if cfg.RetryMaxDelay != 2*time.Second {
		t.Fatalf("RetryMaxDelay = %v, want underscore flag to normalize", cfg.RetryMaxDelay)
	}
}

func TestBindEnvReportsBadValues(t *testing.T) {
	t.Setenv("TRIVIA_PORT", "not-a-number")

	cfg := Default()
	if err := BindEnv(newFlagSet(cfg)); err == nil || !strings.Contains(err.Error(), "TRIVIA_PORT") {
		t.Fatalf("expected TRIVIA_PORT error, got %v", err)
	}
}

func TestRetryConfig(t *testing.T) {
	cfg := Default()
	cfg.MaxRetries = 4
	cfg.UseToken = true

	got := cfg.RetryConfig()
	if got.MaxAttempts != 4 || !got.UseToken || got.BaseDelay != opentdb.DefaultBaseDelay {
		t.Fatalf("unexpected retry config: %+v", got)
	}
}
