package profile

import (
	"fmt"
	"slices"
	"time"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"

	DefaultQuestionTimeLimit = 30
	MinQuestionTimeLimit     = 5
	MaxQuestionTimeLimit     = 300
)

var (
	themes       = []string{ThemeLight, ThemeDark, ThemeAuto}
	difficulties = []string{"easy", "medium", "hard"}
	languages    = []string{"fr", "en"}
)

type Preferences struct {
	Theme               string   `json:"theme"`
	SoundEnabled        bool     `json:"sound_enabled"`
	AnimationsEnabled   bool     `json:"animations_enabled"`
	AutoNextQuestion    bool     `json:"auto_next_question"`
	QuestionTimeLimit   int      `json:"question_time_limit"`
	ShowHints           bool     `json:"show_hints"`
	Difficulty          string   `json:"difficulty"`
	PreferredCategories []string `json:"preferred_categories"`
	Language            string   `json:"language"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:               ThemeLight,
		SoundEnabled:        true,
		AnimationsEnabled:   true,
		AutoNextQuestion:    false,
		QuestionTimeLimit:   DefaultQuestionTimeLimit,
		ShowHints:           true,
		Difficulty:          "medium",
		PreferredCategories: []string{},
		Language:            "fr",
	}
}

func (p Preferences) Validate() error {
	if !slices.Contains(themes, p.Theme) {
		return fmt.Errorf("%w: theme must be one of %v", ErrInvalidPreferences, themes)
	}
	if !slices.Contains(difficulties, p.Difficulty) {
		return fmt.Errorf("%w: difficulty must be one of %v", ErrInvalidPreferences, difficulties)
	}
	if !slices.Contains(languages, p.Language) {
		return fmt.Errorf("%w: language must be one of %v", ErrInvalidPreferences, languages)
	}
	if p.QuestionTimeLimit < MinQuestionTimeLimit || p.QuestionTimeLimit > MaxQuestionTimeLimit {
		return fmt.Errorf("%w: question time limit must be between %d and %d seconds",
			ErrInvalidPreferences, MinQuestionTimeLimit, MaxQuestionTimeLimit)
	}
	return nil
}

func (p Preferences) TimeLimit() time.Duration {
	return time.Duration(p.QuestionTimeLimit) * time.Second
}

// ResolveTheme turns "auto" into the system theme.
func (p Preferences) ResolveTheme(systemDark bool) string {
	if p.Theme != ThemeAuto {
		return p.Theme
	}
	if systemDark {
		return ThemeDark
	}
	return ThemeLight
}

// ToggleTheme flips between light and dark based on the resolved theme.
func (p Preferences) ToggleTheme(systemDark bool) Preferences {
	if p.ResolveTheme(systemDark) == ThemeLight {
		p.Theme = ThemeDark
	} else {
		p.Theme = ThemeLight
	}
	return p
}
