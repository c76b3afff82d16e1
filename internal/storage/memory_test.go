package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryGetSetDelete(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get missing = (ok=%t, err=%v), want (false, nil)", ok, err)
	}

	value := []byte(`"alice"`)
	if err := store.Set(ctx, "name", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[1] = 'X'

	got, ok, err := store.Get(ctx, "name")
	if err != nil || !ok || string(got) != `"alice"` {
		t.Fatalf("Get = (%s, %t, %v), want (\"alice\", true, nil)", got, ok, err)
	}

	if err := store.Delete(ctx, "name"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "name"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestMemoryUpdate(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	got, err := store.Update(ctx, "counter", func(current []byte, ok bool) ([]byte, error) {
		if ok {
			t.Fatalf("expected missing key on first update")
		}
		return []byte("1"), nil
	})
	if err != nil || string(got) != "1" {
		t.Fatalf("first Update = (%s, %v)", got, err)
	}

	boom := errors.New("boom")
	if _, err := store.Update(ctx, "counter", func([]byte, bool) ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected update error, got %v", err)
	}
	if value, _, _ := store.Get(ctx, "counter"); string(value) != "1" {
		t.Fatalf("failed update changed value to %s", value)
	}

	if _, err := store.Update(ctx, "counter", func([]byte, bool) ([]byte, error) { return nil, nil }); err != nil {
		t.Fatalf("delete via Update failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "counter"); ok {
		t.Fatalf("expected nil update to delete key")
	}
}

func TestMemoryKeysAndEmptyKey(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	for _, key := range []string{"profile/bob/stats", "profile/alice/stats", "other"} {
		if err := store.Set(ctx, key, []byte("{}")); err != nil {
			t.Fatalf("Set(%s) failed: %v", key, err)
		}
	}

	keys, err := store.Keys(ctx, "profile/")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "profile/alice/stats" || keys[1] != "profile/bob/stats" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	if err := store.Set(ctx, "", nil); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}
