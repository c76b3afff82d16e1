package httpapi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"trivia-quiz/internal/opentdb"
	"trivia-quiz/internal/quiz"
)

func TestCountdownExpiresQuestions(t *testing.T) {
	srv := newTestServer(t)
	srv.api.tickInterval = 10 * time.Millisecond

	session, err := srv.manager.Start(context.Background(), quiz.StartRequest{
		Player:    "Ada",
		Params:    opentdb.Params{Amount: 2},
		TimeLimit: 40 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	session.Present()

	server := httptest.NewServer(srv.handler)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/sessions/" + session.ID() + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ticks, timeouts int
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read failed after %d ticks and %d timeouts: %v", ticks, timeouts, err)
		}
		switch msg.Type {
		case "tick":
			ticks++
			if msg.RemainingMS == 0 {
				// The next question starts its countdown when it is shown.
				session.Present()
			}
		case "timeout":
			timeouts++
			if msg.CorrectAnswer == "" {
				t.Fatalf("timeout message without correct answer: %+v", msg)
			}
		case "finished":
			if timeouts != 2 {
				t.Fatalf("expected 2 timeouts before finish, got %d", timeouts)
			}
			if ticks == 0 {
				t.Fatal("expected at least one tick")
			}
			result, err := session.Result()
			if err != nil || result.Score != 0 || !result.Answers[1].TimedOut {
				t.Fatalf("unexpected result %+v err=%v", result, err)
			}
			player, _ := srv.profiles.For("Ada")
			stats, _ := player.Stats.Load(context.Background())
			if stats.TotalQuizzes != 1 {
				t.Fatalf("expected finished session to be recorded, got %+v", stats)
			}
			return
		default:
			t.Fatalf("unexpected message type %q", msg.Type)
		}
	}
}

func TestCountdownUnknownSession(t *testing.T) {
	srv := newTestServer(t)
	server := httptest.NewServer(srv.handler)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/sessions/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}
