package quiz

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"trivia-quiz/internal/opentdb"
)

const maxPlayerNameLength = 64

type questionSource interface {
	Questions(ctx context.Context, params opentdb.Params) (QuestionSet, error)
}

type StartRequest struct {
	Player string
	Params opentdb.Params
	// CategoryName labels the session; it is not sent to the API.
	CategoryName string
	TimeLimit    time.Duration
}

// Manager holds live sessions keyed by a random UUID.
type Manager struct {
	source      questionSource
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(source questionSource, idleTimeout time.Duration) *Manager {
	return &Manager{
		source:      source,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Start fetches questions and registers a new session for the player.
func (m *Manager) Start(ctx context.Context, req StartRequest) (*Session, error) {
	player, err := NormalizePlayerName(req.Player)
	if err != nil {
		return nil, err
	}

	set, err := m.source.Questions(ctx, req.Params)
	if err != nil {
		return nil, err
	}
	if len(set.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	category := req.CategoryName
	if category == "" {
		category = "Any Category"
	}

	session := NewSession(SessionConfig{
		ID:         uuid.NewString(),
		Player:     player,
		Category:   category,
		Difficulty: req.Params.Difficulty,
		Questions:  set.Questions,
		TimeLimit:  req.TimeLimit,
		Fallback:   set.Fallback,
		Now:        m.now,
	})

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	return session, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap drops sessions idle for longer than the idle timeout and returns how
// many were removed.
func (m *Manager) Reap(now time.Time) int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.idleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, session := range m.sessions {
		if session.LastActivity().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run reaps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	if m.idleTimeout <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(m.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Reap(m.now())
		}
	}
}

// NormalizePlayerName trims the name and rejects empty or overlong names.
func NormalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxPlayerNameLength {
		return "", ErrInvalidPlayerName
	}
	return name, nil
}
