package opentdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const DefaultCategoryTTL = 24 * time.Hour

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type categoriesResponse struct {
	TriviaCategories []Category `json:"trivia_categories"`
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var payload categoriesResponse
	if err := c.getJSON(ctx, "/api_category.php", nil, &payload); err != nil {
		return nil, err
	}
	return payload.TriviaCategories, nil
}

type categoryLister interface {
	ListCategories(ctx context.Context) ([]Category, error)
}

// CategoryCache keeps the category list in memory for ttl. When a refresh
// fails the previous list is served until the next successful fetch.
type CategoryCache struct {
	lister categoryLister
	ttl    time.Duration
	now    func() time.Time

	mu         sync.Mutex
	categories []Category
	fetchedAt  time.Time
}

func NewCategoryCache(lister categoryLister, ttl time.Duration) *CategoryCache {
	if ttl <= 0 {
		ttl = DefaultCategoryTTL
	}
	return &CategoryCache{
		lister: lister,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (c *CategoryCache) Categories(ctx context.Context) ([]Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.categories != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return copyCategories(c.categories), nil
	}

	fresh, err := c.lister.ListCategories(ctx)
	if err != nil {
		if c.categories != nil {
			return copyCategories(c.categories), nil
		}
		return nil, err
	}

	c.categories = copyCategories(fresh)
	c.fetchedAt = c.now()
	return copyCategories(fresh), nil
}

// Resolve maps a category ID or a case-insensitive name to its ID.
// Empty input and "any" resolve to 0, meaning every category.
func (c *CategoryCache) Resolve(ctx context.Context, value string) (Category, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "any") {
		return Category{Name: "Any Category"}, nil
	}

	categories, err := c.Categories(ctx)
	if err != nil {
		return Category{}, err
	}

	if id, convErr := strconv.Atoi(value); convErr == nil {
		for _, category := range categories {
			if category.ID == id {
				return category, nil
			}
		}
		return Category{}, fmt.Errorf("%w: unknown category id %d", ErrInvalidParameter, id)
	}

	for _, category := range categories {
		if strings.EqualFold(category.Name, value) {
			return category, nil
		}
	}

	// "Science" should find "Science: Computers" when it is the only match.
	var match *Category
	for idx := range categories {
		if strings.Contains(strings.ToLower(categories[idx].Name), strings.ToLower(value)) {
			if match != nil {
				return Category{}, fmt.Errorf("%w: category %q is ambiguous", ErrInvalidParameter, value)
			}
			match = &categories[idx]
		}
	}
	if match == nil {
		return Category{}, fmt.Errorf("%w: unknown category %q", ErrInvalidParameter, value)
	}
	return *match, nil
}

func copyCategories(in []Category) []Category {
	out := make([]Category, len(in))
	copy(out, in)
	return out
}
