package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"trivia-quiz/internal/opentdb"
)

const (
	EnvPrefix = "TRIVIA"

	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	DBPath         string
	Store          string
	APIURL         string
	HTTPTimeout    time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	UseToken       bool
	CategoryTTL    time.Duration
	Encoding       string
	Verbose        bool

	// Service only.
	Bind           string
	Port           int
	PublicURL      string
	SessionTimeout time.Duration
}

func Default() *Config {
	return &Config{
		DBPath:         "trivia.db",
		Store:          StoreSQLite,
		APIURL:         opentdb.DefaultBaseURL,
		HTTPTimeout:    10 * time.Second,
		MaxRetries:     opentdb.DefaultMaxAttempts,
		RetryBaseDelay: opentdb.DefaultBaseDelay,
		RetryMaxDelay:  opentdb.DefaultMaxDelay,
		CategoryTTL:    opentdb.DefaultCategoryTTL,
		Encoding:       string(opentdb.DefaultEncoding),
		Bind:           "0.0.0.0",
		Port:           8080,
		SessionTimeout: 30 * time.Minute,
	}
}

// Validate checks the settings shared by every command.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("--db must not be empty with --store=sqlite")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("invalid store %q (must be %s or %s)", c.Store, StoreSQLite, StoreMemory)
	}
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("--api-url must not be empty")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("invalid max retries (must be at least 1): %d", c.MaxRetries)
	}
	if c.HTTPTimeout < 0 || c.RetryBaseDelay < 0 || c.RetryMaxDelay < 0 || c.CategoryTTL < 0 {
		return errors.New("durations must not be negative")
	}
	if _, err := opentdb.ParseEncoding(c.Encoding); err != nil {
		return err
	}
	return nil
}

// ValidateService additionally checks the listener settings.
func (c *Config) ValidateService() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.SessionTimeout < 0 {
		return errors.New("--session-timeout must not be negative")
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

func (c *Config) RetryConfig() opentdb.RetryConfig {
	return opentdb.RetryConfig{
		MaxAttempts: c.MaxRetries,
		BaseDelay:   c.RetryBaseDelay,
		MaxDelay:    c.RetryMaxDelay,
		UseToken:    c.UseToken,
	}
}

// EncodingValue returns the parsed API encoding. Validate must pass first.
func (c *Config) EncodingValue() opentdb.Encoding {
	encoding, _ := opentdb.ParseEncoding(c.Encoding)
	return encoding
}

// RegisterFlags adds the shared flags to fs.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.DBPath, "db", c.DBPath, "path to the sqlite database (env: TRIVIA_DB)")
	fs.StringVar(&c.Store, "store", c.Store, "storage backend: sqlite or memory (env: TRIVIA_STORE)")
	fs.StringVar(&c.APIURL, "api-url", c.APIURL, "base URL of the trivia API (env: TRIVIA_API_URL)")
	fs.DurationVar(&c.HTTPTimeout, "http-timeout", c.HTTPTimeout, "timeout for each API request (env: TRIVIA_HTTP_TIMEOUT)")
	fs.IntVar(&c.MaxRetries, "max-retries", c.MaxRetries, "attempts before falling back to bundled questions (env: TRIVIA_MAX_RETRIES)")
	fs.DurationVar(&c.RetryBaseDelay, "retry-base-delay", c.RetryBaseDelay, "initial retry backoff (env: TRIVIA_RETRY_BASE_DELAY)")
	fs.DurationVar(&c.RetryMaxDelay, "retry-max-delay", c.RetryMaxDelay, "maximum retry backoff (env: TRIVIA_RETRY_MAX_DELAY)")
	fs.BoolVar(&c.UseToken, "use-token", c.UseToken, "request a session token so questions do not repeat (env: TRIVIA_USE_TOKEN)")
	fs.DurationVar(&c.CategoryTTL, "category-ttl", c.CategoryTTL, "how long the category list is cached (env: TRIVIA_CATEGORY_TTL)")
	fs.StringVar(&c.Encoding, "encoding", c.Encoding, "API text encoding: html, url3986 or base64 (env: TRIVIA_ENCODING)")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "display additional output (env: TRIVIA_VERBOSE)")
}

// RegisterServiceFlags adds the listener flags to fs.
func (c *Config) RegisterServiceFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Bind, "bind", "b", c.Bind, "address to bind to (env: TRIVIA_BIND)")
	fs.IntVarP(&c.Port, "port", "p", c.Port, "port to listen on (env: TRIVIA_PORT)")
	fs.StringVar(&c.PublicURL, "public-url", c.PublicURL, "externally reachable base URL used in share codes (env: TRIVIA_PUBLIC_URL)")
	fs.DurationVar(&c.SessionTimeout, "session-timeout", c.SessionTimeout, "time before idle quiz sessions are dropped (env: TRIVIA_SESSION_TIMEOUT)")
}

// BindEnv normalizes flag names and lets TRIVIA_* variables supply values
// for flags not set on the command line. Call it after all flags on fs are
// registered.
func BindEnv(fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			errs = append(errs, err)
			return
		}
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				errs = append(errs, fmt.Errorf("env %s_%s: %w", EnvPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), err))
			}
		}
	})
	return errors.Join(errs...)
}
