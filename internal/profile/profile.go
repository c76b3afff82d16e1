// Package profile persists per-player data: the player name, aggregate quiz
// statistics and preferences.
package profile

import (
	"context"
	"errors"
	"strings"

	"trivia-quiz/internal/logging"
	"trivia-quiz/internal/storage"
)

// LocalNamespace is used by the terminal player, which has a single profile.
const LocalNamespace = "local"

var (
	ErrInvalidNamespace   = errors.New("profile: invalid player name")
	ErrInvalidPreferences = errors.New("profile: invalid preferences")
)

type Profiles struct {
	store  storage.Store
	logger *logging.Logger
}

func NewProfiles(store storage.Store, logger *logging.Logger) *Profiles {
	return &Profiles{store: store, logger: logger}
}

type Profile struct {
	Namespace   string
	Name        *Value[string]
	Stats       *Value[Stats]
	Preferences *Value[Preferences]
}

// For returns the profile stored under namespace, normalized to lower case.
func (p *Profiles) For(namespace string) (*Profile, error) {
	normalized, err := NormalizeNamespace(namespace)
	if err != nil {
		return nil, err
	}

	prefix := "profile/" + normalized + "/"
	return &Profile{
		Namespace:   normalized,
		Name:        NewValue(p.store, prefix+"name", func() string { return "" }, p.logger),
		Stats:       NewValue(p.store, prefix+"stats", DefaultStats, p.logger),
		Preferences: NewValue(p.store, prefix+"preferences", DefaultPreferences, p.logger),
	}, nil
}

// Namespaces lists every profile that has stored data.
func (p *Profiles) Namespaces(ctx context.Context) ([]string, error) {
	keys, err := p.store.Keys(ctx, "profile/")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	namespaces := make([]string, 0)
	for _, key := range keys {
		rest := strings.TrimPrefix(key, "profile/")
		namespace, _, ok := strings.Cut(rest, "/")
		if !ok || seen[namespace] {
			continue
		}
		seen[namespace] = true
		namespaces = append(namespaces, namespace)
	}
	return namespaces, nil
}

func NormalizeNamespace(namespace string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(namespace))
	if normalized == "" || strings.ContainsAny(normalized, "/\x00") {
		return "", ErrInvalidNamespace
	}
	return normalized, nil
}

// RecordQuiz adds outcome to the stored stats.
func (p *Profile) RecordQuiz(ctx context.Context, outcome Outcome) (Stats, []string, error) {
	var unlocked []string
	stats, err := p.Stats.Update(ctx, func(current Stats) (Stats, error) {
		next, newly := current.Record(outcome)
		unlocked = newly
		return next, nil
	})
	if err != nil {
		return Stats{}, nil, err
	}
	return stats, unlocked, nil
}

func (p *Profile) ResetStats(ctx context.Context) error {
	_, err := p.Stats.Remove(ctx)
	return err
}

// SavePreferences validates prefs before storing them.
func (p *Profile) SavePreferences(ctx context.Context, prefs Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	return p.Preferences.Save(ctx, prefs)
}

// SetName stores the trimmed player name. Blank names are rejected.
func (p *Profile) SetName(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidNamespace
	}
	return name, p.Name.Save(ctx, name)
}
