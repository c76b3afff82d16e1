// Package cli runs the interactive terminal quiz and the profile commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"trivia-quiz/internal/logging"
	"trivia-quiz/internal/opentdb"
	"trivia-quiz/internal/profile"
	"trivia-quiz/internal/quiz"
)

const (
	maxAttempts    = 3
	warnRemaining  = 5 * time.Second
	defaultAmount  = 10
	anyOptionValue = "any"
)

type questionSource interface {
	Questions(ctx context.Context, params opentdb.Params) (quiz.QuestionSet, error)
}

type categoryResolver interface {
	Categories(ctx context.Context) ([]opentdb.Category, error)
	Resolve(ctx context.Context, value string) (opentdb.Category, error)
}

type Config struct {
	In         io.Reader
	Out        io.Writer
	Color      bool
	Source     questionSource
	Categories categoryResolver
	Profiles   *profile.Profiles
	Logger     *logging.Logger
}

// PlayOptions override the stored profile for one quiz. Zero values fall
// back to the player's preferences.
type PlayOptions struct {
	Name       string
	Amount     int
	Category   string
	Difficulty string
	Type       string
	TimeLimit  time.Duration
	Encoding   opentdb.Encoding
}

type App struct {
	lines      *lineReader
	print      printer
	source     questionSource
	categories categoryResolver
	profiles   *profile.Profiles
	logger     *logging.Logger
}

func New(cfg Config) *App {
	return &App{
		lines:      newLineReader(cfg.In),
		print:      printer{out: cfg.Out, color: cfg.Color},
		source:     cfg.Source,
		categories: cfg.Categories,
		profiles:   cfg.Profiles,
		logger:     cfg.Logger,
	}
}

// Play runs one quiz from name prompt to results and records the outcome in
// the local profile.
func (a *App) Play(ctx context.Context, opts PlayOptions) (quiz.Result, error) {
	local, err := a.profiles.For(profile.LocalNamespace)
	if err != nil {
		return quiz.Result{}, err
	}

	name, err := a.playerName(ctx, local, opts.Name)
	if err != nil {
		return quiz.Result{}, err
	}

	prefs, err := local.Preferences.Load(ctx)
	if err != nil {
		return quiz.Result{}, err
	}

	category, err := a.resolveCategory(ctx, opts.Category)
	if err != nil {
		return quiz.Result{}, err
	}

	difficulty := opts.Difficulty
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "":
		difficulty = prefs.Difficulty
	case anyOptionValue:
		difficulty = ""
	}
	questionType := opts.Type
	if strings.EqualFold(strings.TrimSpace(questionType), anyOptionValue) {
		questionType = ""
	}
	limit := opts.TimeLimit
	if limit == 0 {
		limit = prefs.TimeLimit()
	}
	if limit < 0 {
		limit = 0
	}
	amount := opts.Amount
	if amount <= 0 {
		amount = defaultAmount
	}

	a.print.printf("Fetching %d questions...\n", amount)
	set, err := a.source.Questions(ctx, opentdb.Params{
		Amount:     amount,
		Category:   category.ID,
		Difficulty: difficulty,
		Type:       questionType,
		Encoding:   opts.Encoding,
	})
	if err != nil {
		return quiz.Result{}, err
	}
	if set.Fallback {
		a.print.println(a.print.colorize("The trivia API is unavailable, playing with bundled questions.", colorYellow))
	}

	session := quiz.NewSession(quiz.SessionConfig{
		ID:         "local",
		Player:     name,
		Category:   category.Name,
		Difficulty: difficulty,
		Questions:  set.Questions,
		TimeLimit:  limit,
		Fallback:   set.Fallback,
	})

	for {
		question, _, _, ok := session.Present()
		if !ok {
			break
		}
		a.print.question(question, session.Progress(), limit)

		answer, err := a.answer(ctx, session, question)
		if err != nil {
			return quiz.Result{}, err
		}
		a.print.feedback(answer)
	}

	result, err := session.Result()
	if err != nil {
		return quiz.Result{}, err
	}

	stats, unlocked, err := local.RecordQuiz(ctx, profile.Outcome{
		Score:          result.Score,
		Total:          result.Total,
		Category:       result.Category,
		Difficulty:     result.Difficulty,
		CompletionTime: result.CompletionTime,
		PlayedAt:       result.FinishedAt,
	})
	if err != nil {
		return result, fmt.Errorf("record quiz: %w", err)
	}
	session.MarkRecorded()

	a.print.results(result, stats, unlocked)
	return result, nil
}

func (a *App) playerName(ctx context.Context, local *profile.Profile, override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return a.saveName(ctx, local, override)
	}

	stored, err := local.Name.Load(ctx)
	if err != nil {
		return "", err
	}
	if stored != "" {
		a.print.printf("Welcome back, %s!\n", stored)
		return stored, nil
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		a.print.printf("What's your name? ")
		line, err := a.lines.next(ctx)
		if err != nil {
			return "", err
		}
		if name, err := quiz.NormalizePlayerName(line); err == nil {
			return a.saveName(ctx, local, name)
		}
		a.print.println("Please enter a name.")
	}
	return "", quiz.ErrInvalidPlayerName
}

func (a *App) saveName(ctx context.Context, local *profile.Profile, name string) (string, error) {
	name, err := quiz.NormalizePlayerName(name)
	if err != nil {
		return "", err
	}
	return local.SetName(ctx, name)
}

func (a *App) resolveCategory(ctx context.Context, value string) (opentdb.Category, error) {
	if a.categories == nil || strings.TrimSpace(value) == "" {
		return opentdb.Category{Name: "Any Category"}, nil
	}

	category, err := a.categories.Resolve(ctx, value)
	switch {
	case err == nil:
		return category, nil
	case errors.Is(err, opentdb.ErrInvalidParameter):
		return opentdb.Category{}, fmt.Errorf("unknown category %q: %w", value, err)
	case ctx.Err() != nil:
		return opentdb.Category{}, ctx.Err()
	default:
		a.logger.Printf("CATEGORIES: %v", err)
		a.print.println("Could not load categories, playing any category.")
		return opentdb.Category{Name: "Any Category"}, nil
	}
}

// answer reads letters until one is valid, the countdown expires or the
// player runs out of attempts.
func (a *App) answer(ctx context.Context, session *quiz.Session, question quiz.Question) (quiz.Answer, error) {
	last := question.Options[len(question.Options)-1].Letter
	limited := session.TimeLimit() > 0
	invalid := 0
	warned := false

	for {
		remaining := session.Remaining()
		if limited && remaining == 0 {
			if answer, ok := session.Expire(); ok {
				a.print.println()
				return answer, nil
			}
		}

		if limited {
			a.print.printf("Your answer (A-%s, %s left): ", last, formatSeconds(remaining))
		} else {
			a.print.printf("Your answer (A-%s): ", last)
		}

		line, expired, err := a.waitLine(ctx, remaining, last, &warned)
		if err != nil {
			a.print.println()
			return quiz.Answer{}, err
		}
		if expired {
			a.print.println()
			if answer, ok := session.Expire(); ok {
				return answer, nil
			}
			continue
		}

		answer, err := session.Answer(line)
		if err == nil {
			return answer, nil
		}
		if !errors.Is(err, quiz.ErrInvalidAnswer) {
			return quiz.Answer{}, err
		}

		invalid++
		if invalid >= maxAttempts {
			return session.Skip()
		}
		a.print.printf("Invalid input. Please enter a letter A-%s.\n", last)
	}
}

// waitLine blocks for the next input line. With a positive remaining time it
// reports expired once the countdown runs out, printing a single warning
// shortly before.
func (a *App) waitLine(ctx context.Context, remaining time.Duration, last string, warned *bool) (string, bool, error) {
	if remaining <= 0 {
		line, err := a.lines.next(ctx)
		return line, false, err
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	var warn <-chan time.Time
	if !*warned && remaining > warnRemaining {
		warning := time.NewTimer(remaining - warnRemaining)
		defer warning.Stop()
		warn = warning.C
	}

	for {
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-warn:
			*warned = true
			warn = nil
			a.print.printf("\n%s\nYour answer (A-%s): ", a.print.colorize(formatSeconds(warnRemaining)+" left!", colorRed), last)
		case <-timer.C:
			return "", true, nil
		case line, ok := <-a.lines.lines:
			if !ok {
				return "", false, a.lines.closedErr()
			}
			return line, false, nil
		}
	}
}
