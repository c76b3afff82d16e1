package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"trivia-quiz/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
		_ = os.Remove(path)
		_ = os.Remove(path + "-wal")
		_ = os.Remove(path + "-shm")
		_ = os.Remove(path + "-journal")
	})
	return store
}

func TestStoreSetGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "profile/local/name"); err != nil || ok {
		t.Fatalf("Get missing = (ok=%t, err=%v), want (false, nil)", ok, err)
	}

	if err := store.Set(ctx, "profile/local/name", []byte(`"Alice"`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "profile/local/name", []byte(`"Bob"`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	value, ok, err := store.Get(ctx, "profile/local/name")
	if err != nil || !ok || string(value) != `"Bob"` {
		t.Fatalf("Get = (%s, %t, %v), want (\"Bob\", true, nil)", value, ok, err)
	}

	if err := store.Delete(ctx, "profile/local/name"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "profile/local/name"); ok {
		t.Fatalf("expected key deleted")
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	value, ok, err := second.Get(ctx, "k")
	if err != nil || !ok || string(value) != "v" {
		t.Fatalf("Get after reopen = (%s, %t, %v)", value, ok, err)
	}
}

func TestStoreUpdateIsAtomic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "count", func(current []byte, ok bool) ([]byte, error) {
				return append(current, 'x'), nil
			})
			if err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}()
	}
	wg.Wait()

	value, _, err := store.Get(ctx, "count")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(value) != workers {
		t.Fatalf("value length = %d, want %d", len(value), workers)
	}
}

func TestStoreUpdateRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("before")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	boom := errors.New("boom")
	if _, err := store.Update(ctx, "k", func([]byte, bool) ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	value, _, _ := store.Get(ctx, "k")
	if string(value) != "before" {
		t.Fatalf("value changed to %s", value)
	}

	if _, err := store.Update(ctx, "k", func([]byte, bool) ([]byte, error) { return nil, nil }); err != nil {
		t.Fatalf("delete via Update failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatalf("expected nil update to delete key")
	}
}

func TestStoreKeysFiltersByPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"profile/b/stats", "profile/a/stats", "profile_x", "misc"} {
		if err := store.Set(ctx, key, []byte("{}")); err != nil {
			t.Fatalf("Set(%s) failed: %v", key, err)
		}
	}

	keys, err := store.Keys(ctx, "profile/")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "profile/a/stats" || keys[1] != "profile/b/stats" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestStoreKeysMatchesNonASCIIPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"profile/zoé/name", "profile/zoé/stats", "profile/zoe/name", "profile/zoéy/name"} {
		if err := store.Set(ctx, key, []byte("{}")); err != nil {
			t.Fatalf("Set(%s) failed: %v", key, err)
		}
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{prefix: "profile/zoé/", want: []string{"profile/zoé/name", "profile/zoé/stats"}},
		{prefix: "profile/zoé", want: []string{"profile/zoé/name", "profile/zoé/stats", "profile/zoéy/name"}},
		{prefix: "profile/zoe/", want: []string{"profile/zoe/name"}},
		{prefix: "", want: []string{"profile/zoe/name", "profile/zoé/name", "profile/zoé/stats", "profile/zoéy/name"}},
	}
	for _, tc := range tests {
		keys, err := store.Keys(ctx, tc.prefix)
		if err != nil {
			t.Fatalf("Keys(%q) failed: %v", tc.prefix, err)
		}
		if len(keys) != len(tc.want) {
			t.Fatalf("Keys(%q) = %v, want %v", tc.prefix, keys, tc.want)
		}
		for idx := range keys {
			if keys[idx] != tc.want[idx] {
				t.Fatalf("Keys(%q) = %v, want %v", tc.prefix, keys, tc.want)
			}
		}
	}
}

func TestStoreRecordsUpdateTimeInSeconds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	before := time.Now().Unix()
	if err := store.Set(ctx, "profile/a/name", []byte(`"Ada"`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	after := time.Now().Unix()

	var updated int64
	if err := store.db.QueryRowContext(ctx, `SELECT updated_at_unix FROM kv WHERE key = ?`, "profile/a/name").Scan(&updated); err != nil {
		t.Fatalf("query updated_at_unix: %v", err)
	}
	if updated < before || updated > after {
		t.Fatalf("updated_at_unix = %d, want between %d and %d", updated, before, after)
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	store := newTestStore(t)
	if err := store.Set(context.Background(), "", []byte("x")); !errors.Is(err, storage.ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}
