// Package app assembles the storage, API client and quiz services from a
// Config. Both binaries build on it.
package app

import (
	"fmt"
	"io"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/logging"
	"trivia-quiz/internal/opentdb"
	"trivia-quiz/internal/profile"
	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/storage"
	"trivia-quiz/internal/storage/sqlite"
	"trivia-quiz/internal/transport"
)

type App struct {
	Config     *config.Config
	Logger     *logging.Logger
	Store      storage.Store
	Client     *opentdb.Client
	Retrier    *opentdb.Retrier
	Categories *opentdb.CategoryCache
	Source     *quiz.Source
	Profiles   *profile.Profiles
}

// New validates cfg and wires every dependency. The caller must Close the
// returned App.
func New(cfg *config.Config, logOut io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(logOut, cfg.Verbose)

	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	httpClient, err := transport.NewHTTPClient(cfg.HTTPTimeout, "")
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	client := opentdb.NewClient(httpClient, opentdb.WithBaseURL(cfg.APIURL))
	retrier := opentdb.NewRetrier(client, cfg.RetryConfig(), logger)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Client:     client,
		Retrier:    retrier,
		Categories: opentdb.NewCategoryCache(client, cfg.CategoryTTL),
		Source:     quiz.NewSource(retrier, logger),
		Profiles:   profile.NewProfiles(store, logger),
	}, nil
}

// OpenStore opens the backend named by cfg.Store.
func OpenStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return storage.NewMemory(), nil
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %q: %w", cfg.DBPath, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Params builds API params from the request values and the configured
// encoding.
func (a *App) Params(amount, category int, difficulty, questionType string) opentdb.Params {
	return opentdb.Params{
		Amount:     amount,
		Category:   category,
		Difficulty: difficulty,
		Type:       questionType,
		Encoding:   a.Config.EncodingValue(),
	}
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
