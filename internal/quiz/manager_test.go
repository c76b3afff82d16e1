package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"trivia-quiz/internal/logging"
	"trivia-quiz/internal/opentdb"
)

func newTestManager(t *testing.T, idle time.Duration) (*Manager, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	manager := NewManager(NewSource(&fakeFetcher{questions: sampleRaw()}, logging.Discard()), idle)
	manager.now = clock.Now
	return manager, clock
}

func TestManagerStartAndGet(t *testing.T) {
	manager, _ := newTestManager(t, time.Minute)

	session, err := manager.Start(context.Background(), StartRequest{
		Player:       "  Ada  ",
		Params:       opentdb.Params{Amount: 1, Difficulty: "easy"},
		CategoryName: "Geography",
		TimeLimit:    30 * time.Second,
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := uuid.Parse(session.ID()); err != nil {
		t.Fatalf("session id is not a UUID: %q", session.ID())
	}
	if session.Player() != "Ada" || session.Len() != 1 || session.TimeLimit() != 30*time.Second {
		t.Fatalf("unexpected session: player=%q len=%d limit=%v", session.Player(), session.Len(), session.TimeLimit())
	}

	got, err := manager.Get(session.ID())
	if err != nil || got != session {
		t.Fatalf("Get returned %v, %v", got, err)
	}

	manager.Remove(session.ID())
	if _, err := manager.Get(session.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after Remove, got %v", err)
	}
}

func TestManagerRejectsInvalidPlayer(t *testing.T) {
	manager, _ := newTestManager(t, time.Minute)

	for _, name := range []string{"", "   ", string(make([]rune, maxPlayerNameLength+1))} {
		if _, err := manager.Start(context.Background(), StartRequest{Player: name}); !errors.Is(err, ErrInvalidPlayerName) {
			t.Fatalf("Start(%q) error = %v, want ErrInvalidPlayerName", name, err)
		}
	}
	if manager.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", manager.Len())
	}
}

func TestManagerGetUnknown(t *testing.T) {
	manager, _ := newTestManager(t, time.Minute)

	for _, id := range []string{"", "not-a-uuid", uuid.NewString()} {
		if _, err := manager.Get(id); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("Get(%q) error = %v, want ErrSessionNotFound", id, err)
		}
	}
}

func TestManagerReapsIdleSessions(t *testing.T) {
	manager, clock := newTestManager(t, 10*time.Minute)

	idle, err := manager.Start(context.Background(), StartRequest{Player: "idle"})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	clock.Advance(8 * time.Minute)
	active, err := manager.Start(context.Background(), StartRequest{Player: "active"})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	clock.Advance(5 * time.Minute)
	active.Present()

	if removed := manager.Reap(clock.Now()); removed != 1 {
		t.Fatalf("expected 1 reaped session, got %d", removed)
	}
	if _, err := manager.Get(idle.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected idle session to be gone, got %v", err)
	}
	if _, err := manager.Get(active.ID()); err != nil {
		t.Fatalf("expected active session to survive, got %v", err)
	}
}

func TestManagerKeepsTouchedSessions(t *testing.T) {
	manager, clock := newTestManager(t, 10*time.Minute)

	watched, err := manager.Start(context.Background(), StartRequest{Player: "watcher"})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	clock.Advance(8 * time.Minute)
	watched.Touch()
	clock.Advance(5 * time.Minute)

	if removed := manager.Reap(clock.Now()); removed != 0 {
		t.Fatalf("expected touched session to survive, reaped %d", removed)
	}
	if got := watched.LastActivity(); !got.Equal(clock.Now().Add(-5 * time.Minute)) {
		t.Fatalf("LastActivity = %v", got)
	}
}

func TestManagerRunStopsOnCancel(t *testing.T) {
	manager, _ := newTestManager(t, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		manager.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
