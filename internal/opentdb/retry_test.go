package opentdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz/internal/logging"
)

type fakeAPI struct {
	fetchErrs   []error
	fetchCalls  int
	seenTokens  []string
	tokenCalls  int
	resetCalls  int
	tokenErr    error
	nextToken   string
	resetResult string
}

func (f *fakeAPI) FetchQuestions(_ context.Context, params Params) ([]RawQuestion, error) {
	f.fetchCalls++
	f.seenTokens = append(f.seenTokens, params.Token)
	if len(f.fetchErrs) > 0 {
		err := f.fetchErrs[0]
		f.fetchErrs = f.fetchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return []RawQuestion{{Question: "ok"}}, nil
}

func (f *fakeAPI) RequestToken(_ context.Context) (string, error) {
	f.tokenCalls++
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.nextToken, nil
}

func (f *fakeAPI) ResetToken(_ context.Context, token string) (string, error) {
	f.resetCalls++
	return f.resetResult, nil
}

func newTestRetrier(api questionAPI, cfg RetryConfig) (*Retrier, *[]time.Duration) {
	retrier := NewRetrier(api, cfg, logging.Discard())
	var sleeps []time.Duration
	retrier.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return retrier, &sleeps
}

func TestRetrierReturnsFirstSuccess(t *testing.T) {
	api := &fakeAPI{}
	retrier, sleeps := newTestRetrier(api, RetryConfig{})

	questions, err := retrier.FetchQuestions(context.Background(), Params{})
	if err != nil {
		t.Fatalf("FetchQuestions returned error: %v", err)
	}
	if len(questions) != 1 || api.fetchCalls != 1 || len(*sleeps) != 0 {
		t.Fatalf("unexpected run: questions=%d calls=%d sleeps=%v", len(questions), api.fetchCalls, *sleeps)
	}
}

func TestRetrierBacksOffExponentially(t *testing.T) {
	transient := &StatusError{StatusCode: 503}
	api := &fakeAPI{fetchErrs: []error{transient, transient, transient, nil}}
	retrier, sleeps := newTestRetrier(api, RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    300 * time.Millisecond,
	})

	if _, err := retrier.FetchQuestions(context.Background(), Params{}); err != nil {
		t.Fatalf("FetchQuestions returned error: %v", err)
	}

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for idx := range want {
		if (*sleeps)[idx] != want[idx] {
			t.Fatalf("sleep %d = %s, want %s", idx, (*sleeps)[idx], want[idx])
		}
	}
}

func TestRetrierExhaustsAttempts(t *testing.T) {
	transient := errors.New("connection reset")
	api := &fakeAPI{fetchErrs: []error{transient, transient, transient}}
	retrier, sleeps := newTestRetrier(api, RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond})

	_, err := retrier.FetchQuestions(context.Background(), Params{})
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if !errors.Is(err, transient) {
		t.Fatalf("expected last cause to be wrapped, got %v", err)
	}
	if api.fetchCalls != 3 {
		t.Fatalf("fetch calls = %d, want 3", api.fetchCalls)
	}
	if len(*sleeps) != 2 {
		t.Fatalf("expected no sleep after final attempt, got %v", *sleeps)
	}
}

func TestRetrierWaitsRateLimitWindow(t *testing.T) {
	api := &fakeAPI{fetchErrs: []error{&ResponseCodeError{Code: CodeRateLimit}, nil}}
	retrier, sleeps := newTestRetrier(api, RetryConfig{BaseDelay: 10 * time.Millisecond})

	if _, err := retrier.FetchQuestions(context.Background(), Params{}); err != nil {
		t.Fatalf("FetchQuestions returned error: %v", err)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != RateLimitWindow {
		t.Fatalf("sleeps = %v, want [%s]", *sleeps, RateLimitWindow)
	}
}

func TestRetrierStopsOnPermanentErrors(t *testing.T) {
	for _, code := range []int{CodeNoResults, CodeInvalidParameter} {
		api := &fakeAPI{fetchErrs: []error{&ResponseCodeError{Code: code}, nil}}
		retrier, _ := newTestRetrier(api, RetryConfig{})

		_, err := retrier.FetchQuestions(context.Background(), Params{})
		var codeErr *ResponseCodeError
		if !errors.As(err, &codeErr) || codeErr.Code != code {
			t.Fatalf("code %d: expected response code error, got %v", code, err)
		}
		if errors.Is(err, ErrRetriesExhausted) {
			t.Fatalf("code %d: permanent errors should not count as exhausted", code)
		}
		if api.fetchCalls != 1 {
			t.Fatalf("code %d: fetch calls = %d, want 1", code, api.fetchCalls)
		}
	}
}

func TestRetrierRequestsTokenOnceAndReusesIt(t *testing.T) {
	api := &fakeAPI{nextToken: "tok-1"}
	retrier, _ := newTestRetrier(api, RetryConfig{UseToken: true})

	for i := 0; i < 2; i++ {
		if _, err := retrier.FetchQuestions(context.Background(), Params{}); err != nil {
			t.Fatalf("FetchQuestions returned error: %v", err)
		}
	}
	if api.tokenCalls != 1 {
		t.Fatalf("token calls = %d, want 1", api.tokenCalls)
	}
	if api.seenTokens[0] != "tok-1" || api.seenTokens[1] != "tok-1" {
		t.Fatalf("unexpected tokens: %v", api.seenTokens)
	}
	if retrier.Token() != "tok-1" {
		t.Fatalf("Token() = %q, want tok-1", retrier.Token())
	}
}

func TestRetrierReplacesMissingToken(t *testing.T) {
	api := &fakeAPI{
		nextToken: "tok-1",
		fetchErrs: []error{&ResponseCodeError{Code: CodeTokenNotFound}, nil},
	}
	retrier, sleeps := newTestRetrier(api, RetryConfig{UseToken: true})

	if _, err := retrier.FetchQuestions(context.Background(), Params{}); err != nil {
		t.Fatalf("FetchQuestions returned error: %v", err)
	}
	if api.tokenCalls != 2 {
		t.Fatalf("token calls = %d, want 2", api.tokenCalls)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("token refresh should retry immediately, slept %v", *sleeps)
	}
}

func TestRetrierResetsEmptyToken(t *testing.T) {
	api := &fakeAPI{
		nextToken:   "tok-1",
		resetResult: "tok-1b",
		fetchErrs:   []error{&ResponseCodeError{Code: CodeTokenEmpty}, nil},
	}
	retrier, _ := newTestRetrier(api, RetryConfig{UseToken: true})

	if _, err := retrier.FetchQuestions(context.Background(), Params{}); err != nil {
		t.Fatalf("FetchQuestions returned error: %v", err)
	}
	if api.resetCalls != 1 {
		t.Fatalf("reset calls = %d, want 1", api.resetCalls)
	}
	if got := api.seenTokens[len(api.seenTokens)-1]; got != "tok-1b" {
		t.Fatalf("retry used token %q, want tok-1b", got)
	}
}

func TestRetrierContinuesWithoutTokenWhenRequestFails(t *testing.T) {
	api := &fakeAPI{tokenErr: errors.New("down")}
	retrier, _ := newTestRetrier(api, RetryConfig{UseToken: true})

	if _, err := retrier.FetchQuestions(context.Background(), Params{}); err != nil {
		t.Fatalf("FetchQuestions returned error: %v", err)
	}
	if api.seenTokens[0] != "" {
		t.Fatalf("expected empty token, got %q", api.seenTokens[0])
	}
}

func TestRetrierStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeAPI{fetchErrs: []error{errors.New("boom"), nil}}
	retrier := NewRetrier(api, RetryConfig{BaseDelay: time.Hour}, logging.Discard())

	cancel()
	_, err := retrier.FetchQuestions(ctx, Params{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if api.fetchCalls != 1 {
		t.Fatalf("fetch calls = %d, want 1", api.fetchCalls)
	}
}
