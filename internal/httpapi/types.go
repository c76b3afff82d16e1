package httpapi

import (
	"time"

	"trivia-quiz/internal/opentdb"
	"trivia-quiz/internal/profile"
	"trivia-quiz/internal/quiz"
)

type createSessionRequest struct {
	Player     string `json:"player"`
	Amount     int    `json:"amount"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Type       string `json:"type"`
	// TimeLimitSeconds overrides the player's preference; 0 disables the countdown.
	TimeLimitSeconds *int `json:"time_limit_seconds"`
}

type createSessionResponse struct {
	SessionID        string `json:"session_id"`
	Player           string `json:"player"`
	Category         string `json:"category"`
	QuestionCount    int    `json:"question_count"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	Fallback         bool   `json:"fallback"`
}

type sessionResponse struct {
	SessionID   string        `json:"session_id"`
	Player      string        `json:"player"`
	Progress    quiz.Progress `json:"progress"`
	RemainingMS int64         `json:"remaining_ms"`
	Fallback    bool          `json:"fallback"`
}

type questionResponse struct {
	SessionID   string              `json:"session_id"`
	Number      int                 `json:"number"`
	Total       int                 `json:"total"`
	Question    quiz.PublicQuestion `json:"question"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
	RemainingMS int64               `json:"remaining_ms"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	QuestionID    string `json:"question_id"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	TimedOut      bool   `json:"timed_out"`
	Finished      bool   `json:"finished"`
	Score         int    `json:"score"`
}

type resultsResponse struct {
	Result          quiz.Result   `json:"result"`
	Stats           profile.Stats `json:"stats"`
	NewAchievements []string      `json:"new_achievements"`
}

type categoriesResponse struct {
	Categories []opentdb.Category `json:"categories"`
}

type wsMessage struct {
	Type          string `json:"type"`
	Question      int    `json:"question,omitempty"`
	QuestionID    string `json:"question_id,omitempty"`
	RemainingMS   int64  `json:"remaining_ms"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
