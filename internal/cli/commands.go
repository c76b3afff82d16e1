package cli

import (
	"context"
	"errors"

	"trivia-quiz/internal/profile"
)

// ShowStats prints the local statistics, clearing them first when reset is
// set.
func (a *App) ShowStats(ctx context.Context, reset bool) error {
	local, err := a.profiles.For(profile.LocalNamespace)
	if err != nil {
		return err
	}

	if reset {
		if err := local.ResetStats(ctx); err != nil {
			return err
		}
		a.print.println("Statistics reset.")
	}

	stats, err := local.Stats.Load(ctx)
	if err != nil {
		return err
	}
	name, err := local.Name.Load(ctx)
	if err != nil {
		return err
	}
	if name != "" {
		a.print.printf("Statistics for %s\n\n", name)
	}
	a.print.stats(stats)
	return nil
}

// PreferenceChanges lists the fields to update; nil fields are kept.
type PreferenceChanges struct {
	Theme       *string
	ToggleTheme bool
	SystemDark  bool
	Sound       *bool
	Animations  *bool
	AutoNext    *bool
	Hints       *bool
	TimeLimit   *int
	Difficulty  *string
	Language    *string
	Categories  []string
}

func (c PreferenceChanges) empty() bool {
	return c.Theme == nil && !c.ToggleTheme && c.Sound == nil && c.Animations == nil &&
		c.AutoNext == nil && c.Hints == nil && c.TimeLimit == nil && c.Difficulty == nil &&
		c.Language == nil && c.Categories == nil
}

func (c PreferenceChanges) apply(prefs profile.Preferences) profile.Preferences {
	if c.Theme != nil {
		prefs.Theme = *c.Theme
	}
	if c.ToggleTheme {
		prefs = prefs.ToggleTheme(c.SystemDark)
	}
	if c.Sound != nil {
		prefs.SoundEnabled = *c.Sound
	}
	if c.Animations != nil {
		prefs.AnimationsEnabled = *c.Animations
	}
	if c.AutoNext != nil {
		prefs.AutoNextQuestion = *c.AutoNext
	}
	if c.Hints != nil {
		prefs.ShowHints = *c.Hints
	}
	if c.TimeLimit != nil {
		prefs.QuestionTimeLimit = *c.TimeLimit
	}
	if c.Difficulty != nil {
		prefs.Difficulty = *c.Difficulty
	}
	if c.Language != nil {
		prefs.Language = *c.Language
	}
	if c.Categories != nil {
		prefs.PreferredCategories = append([]string{}, c.Categories...)
	}
	return prefs
}

// Preferences applies changes to the local preferences, rejecting invalid
// results without saving, then prints them.
func (a *App) Preferences(ctx context.Context, changes PreferenceChanges, reset bool) error {
	local, err := a.profiles.For(profile.LocalNamespace)
	if err != nil {
		return err
	}

	var prefs profile.Preferences
	switch {
	case reset:
		if prefs, err = local.Preferences.Remove(ctx); err != nil {
			return err
		}
	case changes.empty():
		if prefs, err = local.Preferences.Load(ctx); err != nil {
			return err
		}
	default:
		prefs, err = local.Preferences.Update(ctx, func(current profile.Preferences) (profile.Preferences, error) {
			next := changes.apply(current)
			return next, next.Validate()
		})
		if err != nil {
			return err
		}
	}

	a.print.preferences(prefs)
	return nil
}

// Categories prints the API category list.
func (a *App) Categories(ctx context.Context) error {
	if a.categories == nil {
		return errors.New("categories are not available")
	}
	categories, err := a.categories.Categories(ctx)
	if err != nil {
		return err
	}
	for _, category := range categories {
		a.print.printf("%4d  %s\n", category.ID, category.Name)
	}
	return nil
}
