package opentdb

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type fakeLister struct {
	categories []Category
	err        error
	calls      int
}

func (f *fakeLister) ListCategories(context.Context) ([]Category, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func sampleCategories() []Category {
	return []Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 17, Name: "Science & Nature"},
		{ID: 18, Name: "Science: Computers"},
		{ID: 23, Name: "History"},
	}
}

func TestListCategoriesDecodesPayload(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/api_category.php" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"trivia_categories":[{"id":9,"name":"General Knowledge"}]}`), nil
	}))

	categories, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories returned error: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != 9 {
		t.Fatalf("unexpected categories: %+v", categories)
	}
}

func TestCategoryCacheServesWithinTTL(t *testing.T) {
	lister := &fakeLister{categories: sampleCategories()}
	cache := NewCategoryCache(lister, time.Minute)
	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := cache.Categories(context.Background()); err != nil {
			t.Fatalf("Categories returned error: %v", err)
		}
	}
	if lister.calls != 1 {
		t.Fatalf("lister calls = %d, want 1", lister.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := cache.Categories(context.Background()); err != nil {
		t.Fatalf("Categories returned error: %v", err)
	}
	if lister.calls != 2 {
		t.Fatalf("expected refresh after ttl, calls = %d", lister.calls)
	}
}

func TestCategoryCacheServesStaleOnRefreshFailure(t *testing.T) {
	lister := &fakeLister{categories: sampleCategories()}
	cache := NewCategoryCache(lister, time.Minute)
	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	if _, err := cache.Categories(context.Background()); err != nil {
		t.Fatalf("Categories returned error: %v", err)
	}

	lister.err = errors.New("offline")
	now = now.Add(time.Hour)
	categories, err := cache.Categories(context.Background())
	if err != nil {
		t.Fatalf("expected stale list, got error %v", err)
	}
	if len(categories) != len(sampleCategories()) {
		t.Fatalf("unexpected stale categories: %+v", categories)
	}
}

func TestCategoryCacheReturnsErrorWhenEmpty(t *testing.T) {
	cache := NewCategoryCache(&fakeLister{err: errors.New("offline")}, time.Minute)
	if _, err := cache.Categories(context.Background()); err == nil {
		t.Fatalf("expected error without cached list")
	}
}

func TestCategoryCacheResolve(t *testing.T) {
	cache := NewCategoryCache(&fakeLister{categories: sampleCategories()}, time.Minute)
	ctx := context.Background()

	tests := []struct {
		input  string
		wantID int
	}{
		{input: "", wantID: 0},
		{input: "ANY", wantID: 0},
		{input: "23", wantID: 23},
		{input: "history", wantID: 23},
		{input: "computers", wantID: 18},
	}
	for _, tc := range tests {
		got, err := cache.Resolve(ctx, tc.input)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", tc.input, err)
		}
		if got.ID != tc.wantID {
			t.Fatalf("Resolve(%q) = %d, want %d", tc.input, got.ID, tc.wantID)
		}
	}

	for _, input := range []string{"science", "99", "cooking"} {
		if _, err := cache.Resolve(ctx, input); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("Resolve(%q) error = %v, want ErrInvalidParameter", input, err)
		}
	}
}
