package quiz

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionFinished   = errors.New("session already finished")
	ErrSessionInProgress = errors.New("session still in progress")
	ErrInvalidAnswer     = errors.New("invalid answer")
	ErrInvalidPlayerName = errors.New("invalid player name")
	ErrNoQuestions       = errors.New("no questions available")
)
