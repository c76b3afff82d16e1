// Package userclient plays quizzes hosted by a remote quiz-service.
package userclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultMaxInvalidAnswers = 3

type Config struct {
	Player            string
	Amount            int
	Category          string
	Difficulty        string
	Type              string
	TimeLimit         *int
	MaxInvalidAnswers int
}

// Run plays one session against client. The server owns the countdown, so a
// late answer comes back marked as timed out.
func Run(ctx context.Context, in io.Reader, out io.Writer, client *HTTPClient, cfg Config) error {
	player := strings.TrimSpace(cfg.Player)
	if player == "" {
		return errors.New("player name is required")
	}
	maxInvalidAnswers := cfg.MaxInvalidAnswers
	if maxInvalidAnswers <= 0 {
		maxInvalidAnswers = defaultMaxInvalidAnswers
	}

	session, err := client.CreateSession(ctx, CreateSessionRequest{
		Player:           player,
		Amount:           cfg.Amount,
		Category:         cfg.Category,
		Difficulty:       cfg.Difficulty,
		Type:             cfg.Type,
		TimeLimitSeconds: cfg.TimeLimit,
	})
	if err != nil {
		return describeClientError(err, client.BaseURL())
	}

	fmt.Fprintf(out, "session=%s player=%s category=%s\n", session.SessionID, session.Player, session.Category)
	if session.Fallback {
		fmt.Fprintln(out, "The trivia API is unavailable, the server is using bundled questions.")
	}

	reader := bufio.NewReader(in)
	for {
		question, err := client.Question(ctx, session.SessionID)
		if IsStatus(err, http.StatusConflict) {
			break
		}
		if err != nil {
			return describeClientError(err, client.BaseURL())
		}

		printQuestion(out, question)
		result, err := answerQuestion(ctx, reader, out, client, session.SessionID, question, maxInvalidAnswers)
		if err != nil {
			return err
		}
		switch {
		case result.TimedOut:
			fmt.Fprintf(out, "Time's up! The correct answer was %s\n", result.CorrectAnswer)
		case result.Correct:
			fmt.Fprintln(out, "Correct!")
		default:
			fmt.Fprintf(out, "Wrong. The correct answer was %s\n", result.CorrectAnswer)
		}
		if result.Finished {
			break
		}
	}

	results, err := client.Results(ctx, session.SessionID)
	if err != nil {
		return describeClientError(err, client.BaseURL())
	}

	r := results.Result
	fmt.Fprintf(out, "\n%s, you scored %d out of %d (%d%%)\n", r.Player, r.Score, r.Total, r.Percentage)
	fmt.Fprintf(out, "Quizzes played: %d, best score: %d%%\n", results.Stats.TotalQuizzes, results.Stats.BestScore)
	for _, achievement := range results.NewAchievements {
		fmt.Fprintf(out, "Achievement unlocked: %s\n", achievement)
	}
	fmt.Fprintf(out, "Share: %s\n", client.ShareURL(session.SessionID))
	return nil
}

func printQuestion(out io.Writer, question Question) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Question %d of %d\n", question.Number, question.Total)
	fmt.Fprintf(out, "%s\n\n", question.Question.Question)
	for _, option := range question.Question.Options {
		fmt.Fprintf(out, "%s. %s\n", option.Letter, option.Text)
	}
	if question.RemainingMS > 0 {
		fmt.Fprintf(out, "\nYou have %s.\n", (time.Duration(question.RemainingMS) * time.Millisecond).Round(time.Second))
	}
	fmt.Fprintln(out)
}

func answerQuestion(ctx context.Context, reader *bufio.Reader, out io.Writer, client *HTTPClient, sessionID string, question Question, maxInvalidAnswers int) (AnswerResult, error) {
	options := question.Question.Options
	last := "A"
	if len(options) > 0 {
		last = options[len(options)-1].Letter
	}

	invalidCount := 0
	for {
		fmt.Fprintf(out, "Your answer (A-%s): ", last)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return AnswerResult{}, err
		}

		result, err := client.Answer(ctx, sessionID, strings.TrimSpace(line))
		if err == nil {
			return result, nil
		}
		if !IsStatus(err, http.StatusBadRequest) {
			return AnswerResult{}, describeClientError(err, client.BaseURL())
		}

		invalidCount++
		if invalidCount >= maxInvalidAnswers {
			fmt.Fprintln(out, "Too many invalid answers. Skipping.")
			result, err := client.Skip(ctx, sessionID)
			if err != nil {
				return AnswerResult{}, describeClientError(err, client.BaseURL())
			}
			return result, nil
		}
		fmt.Fprintf(out, "Invalid input. Attempts remaining: %d\n", maxInvalidAnswers-invalidCount)
	}
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("quiz service unavailable at %s", serverURL)
	}
	return err
}
