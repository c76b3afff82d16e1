// Package httpapi serves quiz sessions, player profiles and countdown
// websockets over HTTP.
package httpapi

import (
	"context"
	"sync"
	"time"

	"trivia-quiz/internal/logging"
	"trivia-quiz/internal/opentdb"
	"trivia-quiz/internal/profile"
	"trivia-quiz/internal/quiz"
)

const defaultTickInterval = time.Second

type categoryResolver interface {
	Categories(ctx context.Context) ([]opentdb.Category, error)
	Resolve(ctx context.Context, value string) (opentdb.Category, error)
}

type Config struct {
	Manager    *quiz.Manager
	Profiles   *profile.Profiles
	Categories categoryResolver
	Encoding   opentdb.Encoding
	Logger     *logging.Logger
	// PublicURL prefixes share links; the request host is used when empty.
	PublicURL string
	Version   string
}

type API struct {
	manager      *quiz.Manager
	profiles     *profile.Profiles
	categories   categoryResolver
	encoding     opentdb.Encoding
	logger       *logging.Logger
	publicURL    string
	version      string
	tickInterval time.Duration
	done         chan struct{}
	closeOnce    sync.Once

	// recordMu serializes stats recording so a session is folded in once.
	recordMu sync.Mutex
	recorded map[string]recordedResult
}

type recordedResult struct {
	stats    profile.Stats
	unlocked []string
}

func NewAPI(cfg Config) *API {
	return &API{
		manager:      cfg.Manager,
		profiles:     cfg.Profiles,
		categories:   cfg.Categories,
		encoding:     cfg.Encoding,
		logger:       cfg.Logger,
		publicURL:    cfg.PublicURL,
		version:      cfg.Version,
		tickInterval: defaultTickInterval,
		done:         make(chan struct{}),
		recorded:     make(map[string]recordedResult),
	}
}

// Shutdown ends open countdown streams. Hijacked websocket connections are
// not closed by http.Server.Shutdown.
func (a *API) Shutdown() {
	a.closeOnce.Do(func() { close(a.done) })
}

// recordResult folds a finished session into the player's stats exactly
// once and returns the stats together with the achievements it unlocked.
func (a *API) recordResult(ctx context.Context, session *quiz.Session) (profile.Stats, []string, error) {
	result, err := session.Result()
	if err != nil {
		return profile.Stats{}, nil, err
	}

	player, err := a.profiles.For(result.Player)
	if err != nil {
		return profile.Stats{}, nil, err
	}

	a.recordMu.Lock()
	defer a.recordMu.Unlock()

	if prior, ok := a.recorded[session.ID()]; ok {
		return prior.stats, prior.unlocked, nil
	}
	if session.Recorded() {
		stats, err := player.Stats.Load(ctx)
		return stats, []string{}, err
	}
	a.pruneRecordedLocked()

	if _, err := player.SetName(ctx, result.Player); err != nil {
		return profile.Stats{}, nil, err
	}
	stats, unlocked, err := player.RecordQuiz(ctx, profile.Outcome{
		Score:          result.Score,
		Total:          result.Total,
		Category:       result.Category,
		Difficulty:     result.Difficulty,
		CompletionTime: result.CompletionTime,
		PlayedAt:       result.FinishedAt,
	})
	if err != nil {
		return profile.Stats{}, nil, err
	}
	if unlocked == nil {
		unlocked = []string{}
	}
	// A failed write above leaves the session unmarked so the next read retries.
	session.MarkRecorded()

	a.recorded[session.ID()] = recordedResult{stats: stats, unlocked: unlocked}
	a.logger.Debugf("STATS: recorded %d/%d for %q", result.Score, result.Total, result.Player)
	return stats, unlocked, nil
}

func (a *API) pruneRecordedLocked() {
	for id := range a.recorded {
		if _, err := a.manager.Get(id); err != nil {
			delete(a.recorded, id)
		}
	}
}

// forget drops cached outcomes for sessions the manager no longer holds.
func (a *API) forget(sessionID string) {
	a.recordMu.Lock()
	delete(a.recorded, sessionID)
	a.recordMu.Unlock()
}
