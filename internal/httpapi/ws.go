package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"trivia-quiz/internal/quiz"
)

const wsWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleCountdown streams the current question's countdown. Each tick
// reports the remaining time; when the deadline passes the question is
// expired server-side and a timeout message is sent. The stream ends with a
// finished message once every question is resolved.
func (a *API) HandleCountdown(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := a.session(w, ps)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Printf("WS: upgrade error: %v", err)
		return
	}
	defer conn.Close()
	// The server's read deadline still applies to the hijacked connection.
	_ = conn.SetReadDeadline(time.Time{})

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	ticker := time.NewTicker(a.tickInterval)
	defer ticker.Stop()

	for {
		finished, err := a.sendCountdown(r.Context(), conn, session)
		if err != nil || finished {
			if finished {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "finished"),
					time.Now().Add(wsWriteWait))
			}
			return
		}

		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-a.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(wsWriteWait))
			return
		case <-ticker.C:
		}
	}
}

// sendCountdown writes one round of messages and reports whether the
// session is finished.
func (a *API) sendCountdown(ctx context.Context, conn *websocket.Conn, session *quiz.Session) (bool, error) {
	// An open stream keeps the session away from the reaper.
	session.Touch()
	if answer, expired := session.Expire(); expired {
		if err := writeWS(conn, wsMessage{
			Type:          "timeout",
			QuestionID:    answer.QuestionID,
			CorrectAnswer: answer.CorrectAnswer,
		}); err != nil {
			return false, err
		}
		a.logger.Debugf("WS: question %s timed out in %s", answer.QuestionID, session.ID())
	}

	progress := session.Progress()
	if progress.Finished {
		if _, _, err := a.recordResult(ctx, session); err != nil {
			a.logger.Printf("STATS: recording %s: %v", session.ID(), err)
		}
		return true, writeWS(conn, wsMessage{Type: "finished"})
	}

	return false, writeWS(conn, wsMessage{
		Type:        "tick",
		Question:    progress.Current,
		RemainingMS: session.Remaining().Milliseconds(),
	})
}

func writeWS(conn *websocket.Conn, msg wsMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(msg)
}

// readUntilClosed drains client frames so close and ping frames are handled.
func readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
