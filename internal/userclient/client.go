package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trivia-quiz/internal/profile"
	"trivia-quiz/internal/quiz"
)

const DefaultServer = "http://127.0.0.1:8080"

var ErrServiceUnavailable = errors.New("quiz service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type CreateSessionRequest struct {
	Player           string `json:"player"`
	Amount           int    `json:"amount,omitempty"`
	Category         string `json:"category,omitempty"`
	Difficulty       string `json:"difficulty,omitempty"`
	Type             string `json:"type,omitempty"`
	TimeLimitSeconds *int   `json:"time_limit_seconds,omitempty"`
}

type Session struct {
	SessionID        string `json:"session_id"`
	Player           string `json:"player"`
	Category         string `json:"category"`
	QuestionCount    int    `json:"question_count"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	Fallback         bool   `json:"fallback"`
}

type Question struct {
	Number      int                 `json:"number"`
	Total       int                 `json:"total"`
	Question    quiz.PublicQuestion `json:"question"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
	RemainingMS int64               `json:"remaining_ms"`
}

type AnswerResult struct {
	QuestionID    string `json:"question_id"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	TimedOut      bool   `json:"timed_out"`
	Finished      bool   `json:"finished"`
	Score         int    `json:"score"`
}

type Results struct {
	Result          quiz.Result   `json:"result"`
	Stats           profile.Stats `json:"stats"`
	NewAchievements []string      `json:"new_achievements"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPClient talks to a running quiz-service.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) CreateSession(ctx context.Context, request CreateSessionRequest) (Session, error) {
	var payload Session
	err := c.doJSON(ctx, http.MethodPost, "/sessions", request, &payload)
	return payload, err
}

// Question returns the current question, or an *APIError with status 409
// once the session is finished.
func (c *HTTPClient) Question(ctx context.Context, sessionID string) (Question, error) {
	var payload Question
	err := c.doJSON(ctx, http.MethodGet, sessionPath(sessionID, "/question"), nil, &payload)
	return payload, err
}

func (c *HTTPClient) Answer(ctx context.Context, sessionID, answer string) (AnswerResult, error) {
	var payload AnswerResult
	err := c.doJSON(ctx, http.MethodPost, sessionPath(sessionID, "/answers"), map[string]string{"answer": answer}, &payload)
	return payload, err
}

// Skip gives up on the current question.
func (c *HTTPClient) Skip(ctx context.Context, sessionID string) (AnswerResult, error) {
	var payload AnswerResult
	err := c.doJSON(ctx, http.MethodPost, sessionPath(sessionID, "/skip"), nil, &payload)
	return payload, err
}

func (c *HTTPClient) Results(ctx context.Context, sessionID string) (Results, error) {
	var payload Results
	err := c.doJSON(ctx, http.MethodGet, sessionPath(sessionID, "/results"), nil, &payload)
	return payload, err
}

func (c *HTTPClient) Stats(ctx context.Context, player string) (profile.Stats, error) {
	var payload profile.Stats
	err := c.doJSON(ctx, http.MethodGet, "/players/"+url.PathEscape(player)+"/stats", nil, &payload)
	return payload, err
}

// ShareURL is the link encoded in the session's QR code.
func (c *HTTPClient) ShareURL(sessionID string) string {
	return c.baseURL + sessionPath(sessionID, "/qr")
}

func sessionPath(sessionID, suffix string) string {
	return "/sessions/" + url.PathEscape(sessionID) + suffix
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}
