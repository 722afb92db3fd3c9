package llm

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"smart-kitchen/entities"
	"smart-kitchen/internal/utils/testdb"
	"smart-kitchen/pkg/content"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentCache_PutThenGet(t *testing.T) {
	ctx := context.Background()
	cache := NewContentCache(content.NewContentRepository(testdb.New(t)), time.Hour)
	owner := uuid.New()
	key := CacheKey{Prompt: "list recipes for eggs", System: "be brief", Shape: "List[Recipe]"}

	cache.Put(ctx, key, json.RawMessage(`[{"name":"omelette"}]`), &owner)

	payload, ok := cache.Get(ctx, key)
	require.True(t, ok)
	assert.JSONEq(t, `[{"name":"omelette"}]`, string(payload))
}

func TestContentCache_KeyIsExact(t *testing.T) {
	ctx := context.Background()
	cache := NewContentCache(content.NewContentRepository(testdb.New(t)), time.Hour)
	owner := uuid.New()
	key := CacheKey{Prompt: "same prompt", System: "", Shape: "Recipe"}
	cache.Put(ctx, key, json.RawMessage(`{"name":"x"}`), &owner)

	_, ok := cache.Get(ctx, CacheKey{Prompt: "same prompt", System: "", Shape: "PantryEnrichment"})
	assert.False(t, ok)

	_, ok = cache.Get(ctx, CacheKey{Prompt: "same prompt ", System: "", Shape: "Recipe"})
	assert.False(t, ok)

	_, ok = cache.Get(ctx, CacheKey{Prompt: "same prompt", System: "other", Shape: "Recipe"})
	assert.False(t, ok)
}

func TestContentCache_ExpiredIsMiss(t *testing.T) {
	ctx := context.Background()
	c := NewContentCache(content.NewContentRepository(testdb.New(t)), time.Hour).(*contentCache)
	key := CacheKey{Prompt: "p", Shape: "Recipe"}

	c.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	c.Put(ctx, key, json.RawMessage(`{"name":"old"}`), nil)
	c.now = time.Now

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)
}

func TestContentCache_NewestEntryWins(t *testing.T) {
	ctx := context.Background()
	c := NewContentCache(content.NewContentRepository(testdb.New(t)), time.Hour).(*contentCache)
	key := CacheKey{Prompt: "p", Shape: "Recipe"}

	c.Put(ctx, key, json.RawMessage(`{"name":"first"}`), nil)
	time.Sleep(5 * time.Millisecond)
	c.Put(ctx, key, json.RawMessage(`{"name":"second"}`), nil)

	payload, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"second"}`, string(payload))
}

type failingContentRepo struct {
	content.ContentRepository
}

func (failingContentRepo) Create(context.Context, *entities.UserContent) error {
	return assert.AnError
}

func (failingContentRepo) FindLatestByMetadata(context.Context, string, string, string) (*entities.UserContent, error) {
	return nil, assert.AnError
}

func TestContentCache_StoreErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	cache := NewContentCache(failingContentRepo{}, time.Hour)
	key := CacheKey{Prompt: "p", Shape: "Recipe"}

	assert.NotPanics(t, func() {
		cache.Put(ctx, key, json.RawMessage(`{}`), nil)
	})
	_, ok := cache.Get(ctx, key)
	assert.False(t, ok)
}
