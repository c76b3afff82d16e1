package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"trivia-quiz/internal/profile"
	"trivia-quiz/internal/quiz"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"

	progressWidth = 20
)

type printer struct {
	out   io.Writer
	color bool
}

func (p printer) colorize(s, color string) string {
	if !p.color || color == "" {
		return s
	}
	return color + s + colorReset
}

func (p printer) println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

func (p printer) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p printer) question(question quiz.Question, progress quiz.Progress, limit time.Duration) {
	p.println()
	p.println(p.colorize(fmt.Sprintf("Question %d of %d - %d%% complete", progress.Current, progress.Total, progress.Percent), colorBold+colorCyan))
	p.println(progressBar(progress.Current-1, progress.Total))
	p.println()
	p.println(p.colorize(question.Question, colorBold))
	p.println()
	for _, option := range question.Options {
		p.printf("  %s. %s\n", option.Letter, option.Text)
	}
	p.println()

	details := []string{}
	if question.Category != "" {
		details = append(details, question.Category)
	}
	if question.Difficulty != "" {
		details = append(details, question.Difficulty)
	}
	if limit > 0 {
		details = append(details, fmt.Sprintf("%s to answer", formatSeconds(limit)))
	}
	if len(details) > 0 {
		p.println(p.colorize(strings.Join(details, " | "), colorYellow))
	}
}

func (p printer) feedback(answer quiz.Answer) {
	switch {
	case answer.TimedOut:
		p.println(p.colorize("Time's up!", colorRed+colorBold), "The correct answer was", answer.CorrectAnswer)
	case answer.Given == "":
		p.println(p.colorize("Skipping.", colorYellow), "The correct answer was", answer.CorrectAnswer)
	case answer.Correct:
		p.println(p.colorize("Correct!", colorGreen+colorBold))
	default:
		p.println(p.colorize("Wrong.", colorRed+colorBold), "The correct answer was", answer.CorrectAnswer)
	}
}

func (p printer) results(result quiz.Result, stats profile.Stats, unlocked []string) {
	p.println()
	p.println(p.colorize("Results", colorBold+colorCyan))
	p.println("-------")
	p.printf("%s, you scored %d out of %d (%d%%)\n", result.Player, result.Score, result.Total, result.Percentage)
	p.println(progressBar(result.Score, result.Total))
	p.println(resultMessage(result.Percentage))
	if result.CompletionTime > 0 {
		p.printf("Completed in %s\n", formatSeconds(result.CompletionTime))
	}
	p.println()

	for idx, answer := range result.Answers {
		status := p.colorize("incorrect", colorRed)
		switch {
		case answer.Correct:
			status = p.colorize("correct", colorGreen)
		case answer.TimedOut:
			status = p.colorize("timed out", colorYellow)
		}
		p.printf("%2d. %s [%s]\n", idx+1, answer.Question, status)
		if !answer.Correct {
			p.printf("    answer: %s\n", answer.CorrectAnswer)
		}
	}

	p.println()
	p.stats(stats)
	for _, achievement := range unlocked {
		p.println(p.colorize("Achievement unlocked: "+achievementTitle(achievement), colorBold+colorYellow))
	}
}

func (p printer) stats(stats profile.Stats) {
	if stats.TotalQuizzes == 0 {
		p.println("No quizzes played yet.")
		return
	}
	p.printf("Quizzes played:   %d\n", stats.TotalQuizzes)
	p.printf("Best score:       %d%%\n", stats.BestScore)
	p.printf("Average score:    %d%%\n", stats.AverageScore)
	p.printf("Correct answers:  %d/%d\n", stats.TotalCorrectAnswers, stats.TotalQuestions)
	p.printf("Streak:           %d day(s)\n", stats.StreakDays)
	if stats.FastestCompletion != nil {
		p.printf("Fastest quiz:     %.1fs\n", *stats.FastestCompletion)
	}
	if len(stats.RecentScores) > 0 {
		scores := make([]string, len(stats.RecentScores))
		for idx, score := range stats.RecentScores {
			scores[idx] = fmt.Sprintf("%d%%", score)
		}
		p.printf("Recent scores:    %s\n", strings.Join(scores, " "))
	}
	if len(stats.CategoriesPlayed) > 0 {
		p.printf("Categories:       %s\n", strings.Join(stats.CategoriesPlayed, ", "))
	}
	if len(stats.Achievements) > 0 {
		titles := make([]string, len(stats.Achievements))
		for idx, achievement := range stats.Achievements {
			titles[idx] = achievementTitle(achievement)
		}
		p.printf("Achievements:     %s\n", strings.Join(titles, ", "))
	}
}

func (p printer) preferences(prefs profile.Preferences) {
	p.printf("theme:        %s\n", prefs.Theme)
	p.printf("sound:        %t\n", prefs.SoundEnabled)
	p.printf("animations:   %t\n", prefs.AnimationsEnabled)
	p.printf("auto-next:    %t\n", prefs.AutoNextQuestion)
	p.printf("time-limit:   %ds\n", prefs.QuestionTimeLimit)
	p.printf("hints:        %t\n", prefs.ShowHints)
	p.printf("difficulty:   %s\n", prefs.Difficulty)
	p.printf("language:     %s\n", prefs.Language)
	if len(prefs.PreferredCategories) > 0 {
		p.printf("categories:   %s\n", strings.Join(prefs.PreferredCategories, ", "))
	}
}

func progressBar(completed, total int) string {
	if total <= 0 {
		return ""
	}
	completed = max(0, min(completed, total))
	filled := completed * progressWidth / total
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled) + "]"
}

func resultMessage(percentage int) string {
	switch {
	case percentage == 100:
		return "Perfect score!"
	case percentage >= 80:
		return "Excellent work!"
	case percentage >= 60:
		return "Good job!"
	case percentage >= 40:
		return "Not bad, keep practicing."
	default:
		return "Better luck next time."
	}
}

func achievementTitle(id string) string {
	switch id {
	case profile.AchievementPerfectScore:
		return "Perfect Score"
	case profile.AchievementVeteran:
		return "Veteran"
	case profile.AchievementExpert:
		return "Expert"
	default:
		return id
	}
}

func formatSeconds(d time.Duration) string {
	seconds := d.Round(100 * time.Millisecond).Seconds()
	if seconds == float64(int(seconds)) {
		return fmt.Sprintf("%ds", int(seconds))
	}
	return fmt.Sprintf("%.1fs", seconds)
}
