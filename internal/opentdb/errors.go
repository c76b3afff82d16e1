package opentdb

import (
	"errors"
	"fmt"
	"net/http"
)

// Response codes returned in the response_code field.
const (
	CodeSuccess          = 0
	CodeNoResults        = 1
	CodeInvalidParameter = 2
	CodeTokenNotFound    = 3
	CodeTokenEmpty       = 4
	CodeRateLimit        = 5
)

var (
	ErrNoResults        = errors.New("opentdb: not enough questions for query")
	ErrInvalidParameter = errors.New("opentdb: invalid parameter")
	ErrTokenNotFound    = errors.New("opentdb: session token not found")
	ErrTokenEmpty       = errors.New("opentdb: session token exhausted")
	ErrRateLimited      = errors.New("opentdb: rate limited")
	ErrRetriesExhausted = errors.New("opentdb: retries exhausted")
)

type ResponseCodeError struct {
	Code int
}

func (e *ResponseCodeError) Error() string {
	if sentinel := e.sentinel(); sentinel != nil {
		return fmt.Sprintf("%s (response_code=%d)", sentinel.Error(), e.Code)
	}
	return fmt.Sprintf("opentdb: response_code=%d", e.Code)
}

func (e *ResponseCodeError) Is(target error) bool {
	sentinel := e.sentinel()
	return sentinel != nil && sentinel == target
}

func (e *ResponseCodeError) sentinel() error {
	switch e.Code {
	case CodeNoResults:
		return ErrNoResults
	case CodeInvalidParameter:
		return ErrInvalidParameter
	case CodeTokenNotFound:
		return ErrTokenNotFound
	case CodeTokenEmpty:
		return ErrTokenEmpty
	case CodeRateLimit:
		return ErrRateLimited
	default:
		return nil
	}
}

// StatusError is returned when the API answers with a non-200 HTTP status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("opentdb returned status %d", e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}
