package httpapi

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"trivia-quiz/internal/logging"
)

const maxLoggedBody = 512

func NewRouter(api *API) http.Handler {
	mux := httprouter.New()

	mux.GET("/healthz", api.HandleHealthz)
	mux.GET("/version", api.HandleVersion)
	mux.GET("/categories", api.HandleCategories)

	mux.POST("/sessions", api.HandleCreateSession)
	mux.GET("/sessions/:id", api.HandleSession)
	mux.DELETE("/sessions/:id", api.HandleDeleteSession)
	mux.GET("/sessions/:id/question", api.HandleQuestion)
	mux.POST("/sessions/:id/answers", api.HandleAnswer)
	mux.POST("/sessions/:id/skip", api.HandleSkip)
	mux.GET("/sessions/:id/results", api.HandleResults)
	mux.GET("/sessions/:id/ws", api.HandleCountdown)
	mux.GET("/sessions/:id/qr", api.HandleQR)

	mux.GET("/players/:name/stats", api.HandleStats)
	mux.DELETE("/players/:name/stats", api.HandleResetStats)
	mux.GET("/players/:name/preferences", api.HandlePreferences)
	mux.PUT("/players/:name/preferences", api.HandleUpdatePreferences)

	mux.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	mux.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		api.logger.Printf("ERROR: panic serving %s %s: %v", r.Method, r.URL.Path, v)
		writeError(w, http.StatusInternalServerError, "request failed")
	}

	return withRequestLogging(api.logger, mux)
}

// withRequestLogging adds security headers and, in verbose mode, logs each
// request. Error bodies are logged up to maxLoggedBody bytes.
func withRequestLogging(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		securityHeaders(w)
		if !logger.Verbose() {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			maxLogBytes:    maxLoggedBody,
		}
		next.ServeHTTP(recorder, r)

		logger.Debugf("SERVE: %s %s %d (%d bytes) to %s in %s",
			r.Method,
			r.URL.Path,
			recorder.statusCode,
			recorder.bytesWritten,
			realIP(r),
			time.Since(start).Round(time.Microsecond),
		)
		if recorder.statusCode >= http.StatusBadRequest && recorder.logBody.Len() > 0 {
			suffix := ""
			if recorder.truncated {
				suffix = "..."
			}
			logger.Debugf("SERVE: response body: %s%s", bytes.TrimSpace(recorder.logBody.Bytes()), suffix)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	maxLogBytes  int
	logBody      bytes.Buffer
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	written, err := r.ResponseWriter.Write(p)
	r.bytesWritten += written

	if room := r.maxLogBytes - r.logBody.Len(); room > 0 {
		chunk := p[:written]
		if len(chunk) > room {
			chunk = chunk[:room]
			r.truncated = true
		}
		r.logBody.Write(chunk)
	} else if written > 0 {
		r.truncated = true
	}
	return written, err
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
