package config

import (
	"context"
	"time"

	"smart-kitchen/pkg/llm"
	"smart-kitchen/pkg/recipe"

	"github.com/gofiber/fiber/v2/log"
)

// Janitor periodically drops expired cache entries and stale unsaved recipes.
type Janitor struct {
	cache    llm.ResponseCache
	recipes  recipe.RecipeService
	keepDays int
	interval time.Duration
	done     chan struct{}
}

func NewJanitor(cache llm.ResponseCache, recipes recipe.RecipeService, keepDays int, interval time.Duration) *Janitor {
	return &Janitor{
		cache:    cache,
		recipes:  recipes,
		keepDays: keepDays,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Run sweeps once immediately, then every interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		j.Sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Done is closed once Run has returned.
func (j *Janitor) Done() <-chan struct{} {
	return j.done
}

func (j *Janitor) Sweep(ctx context.Context) {
	purged, err := j.cache.PurgeExpired(ctx)
	if err != nil {
		log.Errorw("cache purge failed", "error", err)
	} else if purged > 0 {
		log.Infow("expired cache entries purged", "count", purged)
	}

	removed, err := j.recipes.CleanupOldRecipes(ctx, j.keepDays)
	if err != nil {
		log.Errorw("recipe cleanup failed", "error", err)
	} else if removed > 0 {
		log.Infow("stale recipes removed", "count", removed)
	}
}
