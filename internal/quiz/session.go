package quiz

import (
	"math"
	"sync"
	"time"
)

// Answer records how one question was resolved.
type Answer struct {
	QuestionID    string        `json:"question_id"`
	Question      string        `json:"question"`
	Given         string        `json:"answer"`
	CorrectAnswer string        `json:"correct_answer"`
	Correct       bool          `json:"correct"`
	TimedOut      bool          `json:"timed_out"`
	Elapsed       time.Duration `json:"elapsed_ns"`
}

type Result struct {
	SessionID      string        `json:"session_id"`
	Player         string        `json:"player"`
	Category       string        `json:"category"`
	Difficulty     string        `json:"difficulty"`
	Score          int           `json:"score"`
	Total          int           `json:"total"`
	Percentage     int           `json:"percentage"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
	CompletionTime time.Duration `json:"completion_time_ns"`
	Answers        []Answer      `json:"answers"`
	Fallback       bool          `json:"fallback"`
}

type Progress struct {
	Current  int  `json:"current"`
	Total    int  `json:"total"`
	Percent  int  `json:"percent"`
	Answered int  `json:"answered"`
	Score    int  `json:"score"`
	Finished bool `json:"finished"`
}

type SessionConfig struct {
	ID         string
	Player     string
	Category   string
	Difficulty string
	Questions  []Question
	// TimeLimit applies to each question; zero disables the countdown.
	TimeLimit time.Duration
	Fallback  bool
	Now       func() time.Time
}

// Session is one player's pass through a fixed list of questions.
// All methods are safe for concurrent use.
type Session struct {
	id         string
	player     string
	category   string
	difficulty string
	questions  []Question
	timeLimit  time.Duration
	fallback   bool
	now        func() time.Time

	mu           sync.Mutex
	index        int
	answers      []Answer
	presentedAt  time.Time
	deadline     time.Time
	startedAt    time.Time
	finishedAt   time.Time
	lastActivity time.Time
	recorded     bool
}

func NewSession(cfg SessionConfig) *Session {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	questions := make([]Question, len(cfg.Questions))
	copy(questions, cfg.Questions)

	return &Session{
		id:           cfg.ID,
		player:       cfg.Player,
		category:     cfg.Category,
		difficulty:   cfg.Difficulty,
		questions:    questions,
		timeLimit:    cfg.TimeLimit,
		fallback:     cfg.Fallback,
		now:          now,
		answers:      make([]Answer, 0, len(questions)),
		lastActivity: now(),
	}
}

func (s *Session) ID() string               { return s.id }
func (s *Session) Player() string           { return s.player }
func (s *Session) TimeLimit() time.Duration { return s.timeLimit }
func (s *Session) Fallback() bool           { return s.fallback }
func (s *Session) Len() int                 { return len(s.questions) }

// Present returns the current question and starts its countdown if it has
// not started yet. ok is false once every question is resolved.
func (s *Session) Present() (question Question, number int, deadline time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finishedLocked() {
		return Question{}, 0, time.Time{}, false
	}

	now := s.now()
	s.lastActivity = now
	if s.presentedAt.IsZero() {
		s.presentedAt = now
		if s.startedAt.IsZero() {
			s.startedAt = now
		}
		if s.timeLimit > 0 {
			s.deadline = now.Add(s.timeLimit)
		}
	}
	return s.questions[s.index], s.index + 1, s.deadline, true
}

// Answer resolves the current question with letter. An answer arriving after
// the deadline is recorded as timed out. Invalid letters leave the session
// unchanged.
func (s *Session) Answer(letter string) (Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finishedLocked() {
		return Answer{}, ErrSessionFinished
	}

	now := s.now()
	s.lastActivity = now
	if s.expiredLocked(now) {
		return s.recordLocked(now, -1, true), nil
	}

	question := s.questions[s.index]
	idx := AnswerIndex(letter, len(question.Options))
	if idx < 0 {
		return Answer{}, ErrInvalidAnswer
	}
	return s.recordLocked(now, idx, false), nil
}

// Skip resolves the current question as unanswered.
func (s *Session) Skip() (Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finishedLocked() {
		return Answer{}, ErrSessionFinished
	}
	now := s.now()
	s.lastActivity = now
	return s.recordLocked(now, -1, s.expiredLocked(now)), nil
}

// Expire records a timeout for the current question if its deadline passed.
func (s *Session) Expire() (Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finishedLocked() {
		return Answer{}, false
	}
	now := s.now()
	if !s.expiredLocked(now) {
		return Answer{}, false
	}
	return s.recordLocked(now, -1, true), true
}

// Remaining is the time left on the current question. It is zero when no
// countdown is running.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finishedLocked() || s.deadline.IsZero() {
		return 0
	}
	left := s.deadline.Sub(s.now())
	if left < 0 {
		return 0
	}
	return left
}

func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.questions)
	current := min(s.index+1, total)
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(current) / float64(total) * 100))
		percent = max(0, min(100, percent))
	}
	return Progress{
		Current:  current,
		Total:    total,
		Percent:  percent,
		Answered: len(s.answers),
		Score:    s.scoreLocked(),
		Finished: s.finishedLocked(),
	}
}

func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishedLocked()
}

// Result summarizes the session. It returns ErrSessionInProgress until every
// question is resolved.
func (s *Session) Result() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finishedLocked() {
		return Result{}, ErrSessionInProgress
	}

	score := s.scoreLocked()
	total := len(s.questions)
	answers := make([]Answer, len(s.answers))
	copy(answers, s.answers)

	var completion time.Duration
	if !s.startedAt.IsZero() && !s.finishedAt.IsZero() {
		completion = s.finishedAt.Sub(s.startedAt)
	}

	return Result{
		SessionID:      s.id,
		Player:         s.player,
		Category:       s.category,
		Difficulty:     s.difficulty,
		Score:          score,
		Total:          total,
		Percentage:     percentage(score, total),
		StartedAt:      s.startedAt,
		FinishedAt:     s.finishedAt,
		CompletionTime: completion,
		Answers:        answers,
		Fallback:       s.fallback,
	}, nil
}

// Recorded reports whether MarkRecorded has succeeded.
func (s *Session) Recorded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorded
}

// MarkRecorded reports true the first time it is called on a finished
// session, so results are folded into player stats exactly once. Call it
// after the stats are stored.
func (s *Session) MarkRecorded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finishedLocked() || s.recorded {
		return false
	}
	s.recorded = true
	return true
}

// Touch marks the session as in use without changing its state.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = s.now()
}

// LastActivity is the time of the most recent read or write by the player.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) finishedLocked() bool {
	return s.index >= len(s.questions)
}

func (s *Session) expiredLocked(now time.Time) bool {
	return !s.deadline.IsZero() && !now.Before(s.deadline)
}

func (s *Session) recordLocked(now time.Time, chosen int, timedOut bool) Answer {
	question := s.questions[s.index]

	answer := Answer{
		QuestionID:    question.QuestionID,
		Question:      question.Question,
		CorrectAnswer: question.CorrectOption().Text,
		TimedOut:      timedOut,
	}
	if chosen >= 0 {
		answer.Given = question.Options[chosen].Text
		answer.Correct = chosen == question.CorrectIndex
	}
	if !s.presentedAt.IsZero() {
		answer.Elapsed = now.Sub(s.presentedAt)
	}
	if s.startedAt.IsZero() {
		s.startedAt = now
	}

	s.answers = append(s.answers, answer)
	s.index++
	s.presentedAt = time.Time{}
	s.deadline = time.Time{}
	if s.finishedLocked() {
		s.finishedAt = now
	}
	return answer
}

func (s *Session) scoreLocked() int {
	score := 0
	for _, answer := range s.answers {
		if answer.Correct {
			score++
		}
	}
	return score
}

func percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
