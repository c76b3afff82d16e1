package profile

import (
	"context"
	"encoding/json"

	"trivia-quiz/internal/logging"
	"trivia-quiz/internal/storage"
)

// Value is a JSON-encoded T stored under one key. Reads of a missing or
// unreadable key yield the initial value.
type Value[T any] struct {
	store   storage.Store
	key     string
	initial func() T
	logger  *logging.Logger
}

func NewValue[T any](store storage.Store, key string, initial func() T, logger *logging.Logger) *Value[T] {
	return &Value[T]{
		store:   store,
		key:     key,
		initial: initial,
		logger:  logger,
	}
}

func (v *Value[T]) Key() string {
	return v.key
}

func (v *Value[T]) Load(ctx context.Context) (T, error) {
	raw, ok, err := v.store.Get(ctx, v.key)
	if err != nil {
		return v.initial(), err
	}
	if !ok {
		return v.initial(), nil
	}
	return v.decode(raw), nil
}

func (v *Value[T]) Save(ctx context.Context, value T) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return v.store.Set(ctx, v.key, encoded)
}

// Update loads the current value, applies fn and stores the result in one
// atomic store operation.
func (v *Value[T]) Update(ctx context.Context, fn func(T) (T, error)) (T, error) {
	var updated T
	_, err := v.store.Update(ctx, v.key, func(current []byte, ok bool) ([]byte, error) {
		value := v.initial()
		if ok {
			value = v.decode(current)
		}

		next, err := fn(value)
		if err != nil {
			return nil, err
		}
		updated = next
		return json.Marshal(next)
	})
	if err != nil {
		return v.initial(), err
	}
	return updated, nil
}

// Remove deletes the key so later loads return the initial value.
func (v *Value[T]) Remove(ctx context.Context) (T, error) {
	return v.initial(), v.store.Delete(ctx, v.key)
}

func (v *Value[T]) decode(raw []byte) T {
	value := v.initial()
	if err := json.Unmarshal(raw, &value); err != nil {
		v.logger.Printf("STORE: ignoring unreadable value for %q: %v", v.key, err)
		return v.initial()
	}
	return value
}
