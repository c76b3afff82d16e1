package quiz

import (
	"context"
	"errors"

	"trivia-quiz/internal/logging"
	"trivia-quiz/internal/opentdb"
)

type QuestionsFetcher interface {
	FetchQuestions(ctx context.Context, params opentdb.Params) ([]opentdb.RawQuestion, error)
}

type QuestionSet struct {
	Questions []Question
	// Fallback is set when the bundled questions replaced the API result.
	Fallback bool
	// Err is the fetch failure that caused the fallback.
	Err error
}

type Source struct {
	fetcher QuestionsFetcher
	logger  *logging.Logger
}

func NewSource(fetcher QuestionsFetcher, logger *logging.Logger) *Source {
	return &Source{fetcher: fetcher, logger: logger}
}

// Questions fetches questions from the API and falls back to the bundled
// bank when the fetch fails or returns nothing. Invalid params and
// cancellation are returned as errors instead.
func (s *Source) Questions(ctx context.Context, params opentdb.Params) (QuestionSet, error) {
	if err := params.Validate(); err != nil {
		return QuestionSet{}, err
	}

	var fetchErr error
	if s.fetcher != nil {
		raw, err := s.fetcher.FetchQuestions(ctx, params)
		switch {
		case err == nil && len(raw) > 0:
			return QuestionSet{Questions: BuildQuestions(raw)}, nil
		case err == nil:
			fetchErr = ErrNoQuestions
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			if ctx.Err() != nil {
				return QuestionSet{}, err
			}
			fetchErr = err
		default:
			fetchErr = err
		}
	} else {
		fetchErr = errors.New("question fetcher is not configured")
	}

	s.logger.Printf("FETCH: using bundled questions: %v", fetchErr)

	raw, err := FallbackRaw()
	if err != nil {
		return QuestionSet{}, errors.Join(fetchErr, err)
	}
	picked := pickFallback(raw, params)
	if len(picked) == 0 {
		return QuestionSet{}, errors.Join(fetchErr, ErrNoQuestions)
	}

	return QuestionSet{
		Questions: BuildQuestions(picked),
		Fallback:  true,
		Err:       fetchErr,
	}, nil
}
