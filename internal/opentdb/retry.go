package opentdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trivia-quiz/internal/logging"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
	DefaultMaxDelay    = 16 * time.Second

	// RateLimitWindow is how long the API asks clients to wait between requests.
	RateLimitWindow = 5 * time.Second
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	UseToken    bool
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

type questionAPI interface {
	FetchQuestions(ctx context.Context, params Params) ([]RawQuestion, error)
	RequestToken(ctx context.Context) (string, error)
	ResetToken(ctx context.Context, token string) (string, error)
}

// Retrier wraps a Client with exponential backoff and session token upkeep.
// It is safe for concurrent use; calls share one session token.
type Retrier struct {
	api    questionAPI
	cfg    RetryConfig
	logger *logging.Logger
	sleep  func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	token string
}

func NewRetrier(api questionAPI, cfg RetryConfig, logger *logging.Logger) *Retrier {
	return &Retrier{
		api:    api,
		cfg:    cfg.withDefaults(),
		logger: logger,
		sleep:  sleepContext,
	}
}

func (r *Retrier) FetchQuestions(ctx context.Context, params Params) ([]RawQuestion, error) {
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if r.cfg.UseToken {
			params.Token = r.ensureToken(ctx)
		}

		questions, err := r.api.FetchQuestions(ctx, params)
		if err == nil {
			if attempt > 1 {
				r.logger.Debugf("FETCH: succeeded on attempt %d", attempt)
			}
			return questions, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		delay := r.backoff(attempt)
		switch {
		case errors.Is(err, ErrNoResults), errors.Is(err, ErrInvalidParameter):
			return nil, err
		case errors.Is(err, ErrRateLimited):
			if delay < RateLimitWindow {
				delay = RateLimitWindow
			}
		case errors.Is(err, ErrTokenNotFound):
			r.setToken("")
			delay = 0
		case errors.Is(err, ErrTokenEmpty):
			r.resetToken(ctx, params.Token)
			delay = 0
		}

		r.logger.Debugf("FETCH: attempt %d/%d failed: %v", attempt, r.cfg.MaxAttempts, err)

		if attempt == r.cfg.MaxAttempts {
			break
		}
		if delay > 0 {
			if err := r.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, r.cfg.MaxAttempts, lastErr)
}

// Token returns the session token currently in use, if any.
func (r *Retrier) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

func (r *Retrier) backoff(attempt int) time.Duration {
	delay := r.cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= r.cfg.MaxDelay {
			return r.cfg.MaxDelay
		}
	}
	return delay
}

func (r *Retrier) ensureToken(ctx context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" {
		return r.token
	}

	token, err := r.api.RequestToken(ctx)
	if err != nil {
		// Questions may repeat without a token but are still usable.
		r.logger.Debugf("TOKEN: request failed: %v", err)
		return ""
	}
	r.token = token
	return token
}

func (r *Retrier) resetToken(ctx context.Context, token string) {
	fresh, err := r.api.ResetToken(ctx, token)
	if err != nil {
		r.logger.Debugf("TOKEN: reset failed: %v", err)
		fresh = ""
	}
	r.setToken(fresh)
}

func (r *Retrier) setToken(token string) {
	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
