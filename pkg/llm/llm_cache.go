package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"smart-kitchen/entities"
	"smart-kitchen/pkg/content"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const DefaultCacheTTL = 7 * 24 * time.Hour

// CacheKey matches exactly on all three fields. No normalization is applied.
type CacheKey struct {
	Prompt string
	System string
	Shape  string
}

func (k CacheKey) Digest() string {
	h := sha256.New()
	for _, part := range []string{k.Prompt, k.System, k.Shape} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ResponseCache never fails a caller: lookup errors are misses and store
// errors are logged. Concurrent misses on one key each call the model.
type ResponseCache interface {
	Get(ctx context.Context, key CacheKey) (json.RawMessage, bool)
	Put(ctx context.Context, key CacheKey, payload json.RawMessage, ownerID *uuid.UUID)
	PurgeExpired(ctx context.Context) (int64, error)
}

type NopCache struct{}

func (NopCache) Get(context.Context, CacheKey) (json.RawMessage, bool) { return nil, false }

func (NopCache) Put(context.Context, CacheKey, json.RawMessage, *uuid.UUID) {}

func (NopCache) PurgeExpired(context.Context) (int64, error) { return 0, nil }

type (
	cacheData struct {
		Response json.RawMessage `json:"response"`
	}

	cacheMetadata struct {
		Key          string    `json:"key"`
		Prompt       string    `json:"prompt"`
		SystemPrompt string    `json:"system_prompt"`
		Shape        string    `json:"shape"`
		Timestamp    time.Time `json:"timestamp"`
	}

	contentCache struct {
		repo content.ContentRepository
		ttl  time.Duration
		now  func() time.Time
	}
)

// NewContentCache keeps entries as llm_cache rows. Entries older than ttl are
// treated as misses and removed by PurgeExpired.
func NewContentCache(repo content.ContentRepository, ttl time.Duration) ResponseCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &contentCache{repo: repo, ttl: ttl, now: time.Now}
}

func (c *contentCache) Get(ctx context.Context, key CacheKey) (json.RawMessage, bool) {
	row, err := c.repo.FindLatestByMetadata(ctx, entities.ContentTypeLLMCache, "key", key.Digest())
	if err != nil {
		if !errors.Is(err, content.ErrContentNotFound) {
			log.Warnw("llm cache lookup failed", "shape", key.Shape, "error", err)
		}
		return nil, false
	}

	var meta cacheMetadata
	if err := json.Unmarshal(row.Metadata, &meta); err != nil {
		log.Warnw("llm cache metadata unreadable", "id", row.ID, "error", err)
		return nil, false
	}
	if meta.Prompt != key.Prompt || meta.SystemPrompt != key.System || meta.Shape != key.Shape {
		return nil, false
	}
	if c.now().Sub(meta.Timestamp) > c.ttl {
		return nil, false
	}

	var data cacheData
	if err := json.Unmarshal(row.Data, &data); err != nil || len(data.Response) == 0 {
		log.Warnw("llm cache payload unreadable", "id", row.ID, "error", err)
		return nil, false
	}
	return data.Response, true
}

func (c *contentCache) Put(ctx context.Context, key CacheKey, payload json.RawMessage, ownerID *uuid.UUID) {
	data, err := json.Marshal(cacheData{Response: payload})
	if err != nil {
		log.Warnw("llm cache encode failed", "shape", key.Shape, "error", err)
		return
	}
	meta, err := json.Marshal(cacheMetadata{
		Key:          key.Digest(),
		Prompt:       key.Prompt,
		SystemPrompt: key.System,
		Shape:        key.Shape,
		Timestamp:    c.now().UTC(),
	})
	if err != nil {
		log.Warnw("llm cache encode failed", "shape", key.Shape, "error", err)
		return
	}

	row := &entities.UserContent{
		UserID:   ownerID,
		Type:     entities.ContentTypeLLMCache,
		Data:     datatypes.JSON(data),
		Metadata: datatypes.JSON(meta),
	}
	if err := c.repo.Create(ctx, row); err != nil {
		log.Warnw("llm cache store failed", "shape", key.Shape, "error", err)
	}
}

func (c *contentCache) PurgeExpired(ctx context.Context) (int64, error) {
	return c.repo.DeleteOlderThan(ctx, entities.ContentTypeLLMCache, c.now().Add(-c.ttl))
}
