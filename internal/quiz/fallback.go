package quiz

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"trivia-quiz/internal/opentdb"
)

//go:embed fallback_questions.json
var fallbackJSON []byte

// FallbackRaw returns the bundled questions used when the API is unreachable.
func FallbackRaw() ([]opentdb.RawQuestion, error) {
	var raw []opentdb.RawQuestion
	if err := json.Unmarshal(fallbackJSON, &raw); err != nil {
		return nil, fmt.Errorf("decode fallback questions: %w", err)
	}
	return raw, nil
}

// pickFallback selects up to amount bundled questions, preferring those that
// match the requested difficulty and type when enough of them exist.
func pickFallback(raw []opentdb.RawQuestion, params opentdb.Params) []opentdb.RawQuestion {
	amount := params.Amount
	if amount <= 0 {
		amount = 10
	}

	matching := make([]opentdb.RawQuestion, 0, len(raw))
	for _, item := range raw {
		if params.Difficulty != "" && !strings.EqualFold(item.Difficulty, params.Difficulty) {
			continue
		}
		if params.Type != "" && !strings.EqualFold(item.Type, params.Type) {
			continue
		}
		matching = append(matching, item)
	}
	pool := raw
	if len(matching) >= amount {
		pool = matching
	}

	picked := make([]opentdb.RawQuestion, len(pool))
	copy(picked, pool)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	if amount < len(picked) {
		picked = picked[:amount]
	}
	return picked
}
