package profile

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultPreferencesAreValid(t *testing.T) {
	prefs := DefaultPreferences()
	if err := prefs.Validate(); err != nil {
		t.Fatalf("default preferences invalid: %v", err)
	}
	if prefs.TimeLimit() != 30*time.Second {
		t.Fatalf("TimeLimit = %s, want 30s", prefs.TimeLimit())
	}
}

func TestPreferencesValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Preferences)
	}{
		{name: "theme", mutate: func(p *Preferences) { p.Theme = "neon" }},
		{name: "difficulty", mutate: func(p *Preferences) { p.Difficulty = "extreme" }},
		{name: "language", mutate: func(p *Preferences) { p.Language = "de" }},
		{name: "time limit low", mutate: func(p *Preferences) { p.QuestionTimeLimit = 1 }},
		{name: "time limit high", mutate: func(p *Preferences) { p.QuestionTimeLimit = 301 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prefs := DefaultPreferences()
			tc.mutate(&prefs)
			if err := prefs.Validate(); !errors.Is(err, ErrInvalidPreferences) {
				t.Fatalf("Validate error = %v, want ErrInvalidPreferences", err)
			}
		})
	}
}

func TestResolveAndToggleTheme(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.Theme = ThemeAuto

	if got := prefs.ResolveTheme(true); got != ThemeDark {
		t.Fatalf("auto with dark system = %q", got)
	}
	if got := prefs.ResolveTheme(false); got != ThemeLight {
		t.Fatalf("auto with light system = %q", got)
	}

	if got := prefs.ToggleTheme(true).Theme; got != ThemeLight {
		t.Fatalf("toggle from resolved dark = %q, want light", got)
	}
	prefs.Theme = ThemeLight
	if got := prefs.ToggleTheme(false).Theme; got != ThemeDark {
		t.Fatalf("toggle from light = %q, want dark", got)
	}
}
