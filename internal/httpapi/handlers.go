package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"trivia-quiz/internal/opentdb"
	"trivia-quiz/internal/profile"
	"trivia-quiz/internal/quiz"
)

func (a *API) HandleHealthz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) HandleVersion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"version": a.version})
}

func (a *API) HandleCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	categories, err := a.categories.Categories(r.Context())
	if err != nil {
		a.logger.Printf("CATEGORIES: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch categories")
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: categories})
}

func (a *API) HandleCreateSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request createSessionRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	player, err := a.profiles.For(request.Player)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	prefs, err := player.Preferences.Load(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	limit := prefs.TimeLimit()
	if request.TimeLimitSeconds != nil {
		seconds := *request.TimeLimitSeconds
		if seconds < 0 {
			writeError(w, http.StatusBadRequest, "time_limit_seconds must not be negative")
			return
		}
		if seconds != 0 && (seconds < profile.MinQuestionTimeLimit || seconds > profile.MaxQuestionTimeLimit) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("time_limit_seconds must be 0 or between %d and %d",
				profile.MinQuestionTimeLimit, profile.MaxQuestionTimeLimit))
			return
		}
		limit = time.Duration(seconds) * time.Second
	}

	category, err := a.categories.Resolve(r.Context(), request.Category)
	if err != nil {
		if errors.Is(err, opentdb.ErrInvalidParameter) {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		a.logger.Printf("CATEGORIES: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch categories")
		return
	}

	session, err := a.manager.Start(r.Context(), quiz.StartRequest{
		Player: request.Player,
		Params: opentdb.Params{
			Amount:     request.Amount,
			Category:   category.ID,
			Difficulty: request.Difficulty,
			Type:       request.Type,
			Encoding:   a.encoding,
		},
		CategoryName: category.Name,
		TimeLimit:    limit,
	})
	if err != nil {
		switch {
		case errors.Is(err, quiz.ErrInvalidPlayerName), errors.Is(err, opentdb.ErrInvalidParameter):
			writeServiceError(w, err)
		default:
			a.logger.Printf("FETCH: %v", err)
			writeError(w, http.StatusBadGateway, "failed to fetch questions")
		}
		return
	}

	a.logger.Debugf("SESSION: started %s for %q with %d questions", session.ID(), session.Player(), session.Len())
	writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID:        session.ID(),
		Player:           session.Player(),
		Category:         category.Name,
		QuestionCount:    session.Len(),
		TimeLimitSeconds: int(limit / time.Second),
		Fallback:         session.Fallback(),
	})
}

func (a *API) HandleSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := a.session(w, ps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:   session.ID(),
		Player:      session.Player(),
		Progress:    session.Progress(),
		RemainingMS: session.Remaining().Milliseconds(),
		Fallback:    session.Fallback(),
	})
}

func (a *API) HandleDeleteSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := a.session(w, ps)
	if !ok {
		return
	}
	a.manager.Remove(session.ID())
	a.forget(session.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleQuestion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := a.session(w, ps)
	if !ok {
		return
	}

	// A question whose countdown ran out without an answer is resolved
	// before the next one is shown.
	session.Expire()

	question, number, deadline, ok := session.Present()
	if !ok {
		writeServiceError(w, quiz.ErrSessionFinished)
		return
	}

	response := questionResponse{
		SessionID:   session.ID(),
		Number:      number,
		Total:       session.Len(),
		Question:    question.PublicQuestion,
		RemainingMS: session.Remaining().Milliseconds(),
	}
	if !deadline.IsZero() {
		response.Deadline = &deadline
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *API) HandleAnswer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := a.session(w, ps)
	if !ok {
		return
	}

	var request answerRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	answer, err := session.Answer(request.Answer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.writeAnswer(w, r, session, answer)
}

// HandleSkip gives up on the current question without answering it.
func (a *API) HandleSkip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := a.session(w, ps)
	if !ok {
		return
	}

	answer, err := session.Skip()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.writeAnswer(w, r, session, answer)
}

func (a *API) writeAnswer(w http.ResponseWriter, r *http.Request, session *quiz.Session, answer quiz.Answer) {
	progress := session.Progress()
	if progress.Finished {
		if _, _, err := a.recordResult(r.Context(), session); err != nil {
			a.logger.Printf("STATS: recording %s: %v", session.ID(), err)
		}
	}

	writeJSON(w, http.StatusOK, answerResponse{
		QuestionID:    answer.QuestionID,
		Correct:       answer.Correct,
		CorrectAnswer: answer.CorrectAnswer,
		TimedOut:      answer.TimedOut,
		Finished:      progress.Finished,
		Score:         progress.Score,
	})
}

func (a *API) HandleResults(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := a.session(w, ps)
	if !ok {
		return
	}

	session.Expire()
	result, err := session.Result()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	stats, unlocked, err := a.recordResult(r.Context(), session)
	if err != nil {
		a.logger.Printf("STATS: recording %s: %v", session.ID(), err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultsResponse{
		Result:          result,
		Stats:           stats,
		NewAchievements: unlocked,
	})
}

func (a *API) HandleStats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	player, ok := a.player(w, ps)
	if !ok {
		return
	}
	stats, err := player.Stats.Load(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) HandleResetStats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	player, ok := a.player(w, ps)
	if !ok {
		return
	}
	if err := player.ResetStats(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandlePreferences(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	player, ok := a.player(w, ps)
	if !ok {
		return
	}
	prefs, err := player.Preferences.Load(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// HandleUpdatePreferences merges the body over the stored preferences, so
// clients may send only the fields they change.
func (a *API) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	player, ok := a.player(w, ps)
	if !ok {
		return
	}
	prefs, err := player.Preferences.Load(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !decodeJSON(w, r, &prefs) {
		return
	}
	if prefs.PreferredCategories == nil {
		prefs.PreferredCategories = []string{}
	}
	if err := player.SavePreferences(r.Context(), prefs); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (a *API) session(w http.ResponseWriter, ps httprouter.Params) (*quiz.Session, bool) {
	session, err := a.manager.Get(strings.TrimSpace(ps.ByName("id")))
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return session, true
}

func (a *API) player(w http.ResponseWriter, ps httprouter.Params) (*profile.Profile, bool) {
	player, err := a.profiles.For(ps.ByName("name"))
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return player, true
}
