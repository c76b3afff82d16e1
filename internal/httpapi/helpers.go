package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"trivia-quiz/internal/opentdb"
	"trivia-quiz/internal/profile"
	"trivia-quiz/internal/quiz"
)

const maxBodyBytes = 1 << 20

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, quiz.ErrInvalidPlayerName), errors.Is(err, profile.ErrInvalidNamespace):
		writeError(w, http.StatusBadRequest, "player name is required")
	case errors.Is(err, quiz.ErrInvalidAnswer):
		writeError(w, http.StatusBadRequest, "answer must be one of the option letters")
	case errors.Is(err, opentdb.ErrInvalidParameter), errors.Is(err, profile.ErrInvalidPreferences):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, quiz.ErrSessionFinished):
		writeError(w, http.StatusConflict, "session already finished")
	case errors.Is(err, quiz.ErrSessionInProgress):
		writeError(w, http.StatusConflict, "session still in progress")
	case errors.Is(err, quiz.ErrNoQuestions):
		writeError(w, http.StatusBadGateway, "failed to fetch questions")
	default:
		writeError(w, http.StatusInternalServerError, "request failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, into any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func securityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'")
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("X-Real-IP"); ip != "" && net.ParseIP(ip) != nil {
		host = ip
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

// baseURL is the externally visible origin of the service.
func (a *API) baseURL(r *http.Request) string {
	if a.publicURL != "" {
		return strings.TrimSuffix(a.publicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
