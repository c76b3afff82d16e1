package profile

import (
	"math"
	"slices"
	"time"
)

const (
	AchievementPerfectScore = "perfect-score"
	AchievementVeteran      = "veteran"
	AchievementExpert       = "expert"

	recentScoresKept = 10
	veteranQuizzes   = 10
	expertBestScore  = 90
)

type Stats struct {
	TotalQuizzes        int        `json:"total_quizzes"`
	BestScore           int        `json:"best_score"`
	AverageScore        int        `json:"average_score"`
	TotalCorrectAnswers int        `json:"total_correct_answers"`
	TotalQuestions      int        `json:"total_questions"`
	CategoriesPlayed    []string   `json:"categories_played"`
	RecentScores        []int      `json:"recent_scores"`
	Achievements        []string   `json:"achievements"`
	LastPlayedAt        *time.Time `json:"last_played_at"`
	StreakDays          int        `json:"streak_days"`
	PreferredDifficulty string     `json:"preferred_difficulty"`
	// FastestCompletion is in seconds.
	FastestCompletion *float64 `json:"fastest_completion"`
}

func DefaultStats() Stats {
	return Stats{
		CategoriesPlayed:    []string{},
		RecentScores:        []int{},
		Achievements:        []string{},
		PreferredDifficulty: "medium",
	}
}

// Outcome is one finished quiz as seen by the stats tracker.
type Outcome struct {
	Score          int
	Total          int
	Category       string
	Difficulty     string
	CompletionTime time.Duration
	PlayedAt       time.Time
}

// Percentage rounds score/total to a whole percent. An empty quiz scores 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Record folds outcome into s and returns the updated stats together with
// the achievements unlocked by this quiz.
func (s Stats) Record(outcome Outcome) (Stats, []string) {
	percentage := Percentage(outcome.Score, outcome.Total)
	playedAt := outcome.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}

	next := s
	next.TotalQuizzes++
	next.BestScore = max(s.BestScore, percentage)
	next.TotalCorrectAnswers += outcome.Score
	next.TotalQuestions += outcome.Total
	next.AverageScore = Percentage(next.TotalCorrectAnswers, next.TotalQuestions)

	next.CategoriesPlayed = slices.Clone(s.CategoriesPlayed)
	if outcome.Category != "" && !slices.Contains(next.CategoriesPlayed, outcome.Category) {
		next.CategoriesPlayed = append(next.CategoriesPlayed, outcome.Category)
	}

	recent := slices.Clone(s.RecentScores)
	if len(recent) >= recentScoresKept {
		recent = recent[len(recent)-(recentScoresKept-1):]
	}
	next.RecentScores = append(recent, percentage)

	next.StreakDays = nextStreak(s.LastPlayedAt, s.StreakDays, playedAt)
	last := playedAt.UTC()
	next.LastPlayedAt = &last

	if outcome.Difficulty != "" {
		next.PreferredDifficulty = outcome.Difficulty
	}

	if seconds := outcome.CompletionTime.Seconds(); seconds > 0 {
		if s.FastestCompletion == nil || seconds < *s.FastestCompletion {
			next.FastestCompletion = &seconds
		}
	}

	next.Achievements = slices.Clone(s.Achievements)
	var unlocked []string
	unlock := func(name string, earned bool) {
		if earned && !slices.Contains(next.Achievements, name) {
			next.Achievements = append(next.Achievements, name)
			unlocked = append(unlocked, name)
		}
	}
	unlock(AchievementPerfectScore, outcome.Total > 0 && percentage == 100)
	unlock(AchievementVeteran, next.TotalQuizzes >= veteranQuizzes)
	unlock(AchievementExpert, next.BestScore >= expertBestScore)

	return next, unlocked
}

// nextStreak counts consecutive calendar days (in playedAt's location) with
// at least one finished quiz.
func nextStreak(last *time.Time, streak int, playedAt time.Time) int {
	if last == nil || streak <= 0 {
		return 1
	}

	loc := playedAt.Location()
	lastDay := truncateDay(last.In(loc))
	today := truncateDay(playedAt)

	switch {
	case today.Equal(lastDay):
		return streak
	case today.Equal(lastDay.AddDate(0, 0, 1)):
		return streak + 1
	default:
		return 1
	}
}

func truncateDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
