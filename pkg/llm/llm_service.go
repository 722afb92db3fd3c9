package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// SchemaVar is filled with Summarize(Request.Shape) unless the caller sets it.
const SchemaVar = "schema"

// Request is one structured generation call. Images bypass the cache since
// the key covers text only.
type Request struct {
	Template *Template
	Vars     map[string]string
	System   string
	Shape    *Shape
	List     bool
	Images   []ContentBlock
	OwnerID  *uuid.UUID
	UseCache bool
}

type (
	Service interface {
		// Generate renders the prompt, consults the cache, calls the model and
		// decodes the validated result into out.
		Generate(ctx context.Context, req Request, out any) error
	}

	service struct {
		client Client
		cache  ResponseCache
	}
)

func NewService(client Client, cache ResponseCache) Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &service{client: client, cache: cache}
}

func (s *service) Generate(ctx context.Context, req Request, out any) error {
	if req.Template == nil {
		return fmt.Errorf("generate: nil template")
	}

	vars := make(map[string]string, len(req.Vars)+1)
	for k, v := range req.Vars {
		vars[k] = v
	}
	if _, ok := vars[SchemaVar]; !ok && req.Shape != nil {
		vars[SchemaVar] = Summarize(req.Shape)
	}

	prompt, err := req.Template.Render(vars)
	if err != nil {
		return err
	}

	key := CacheKey{Prompt: prompt, System: req.System, Shape: cacheShapeName(req)}
	cacheable := req.UseCache && len(req.Images) == 0
	if cacheable {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var parsed any
			if err := json.Unmarshal(payload, &parsed); err == nil {
				if value, err := conform(parsed, req.Shape, req.List); err == nil {
					log.Debugw("llm cache hit", "shape", key.Shape)
					return decodeInto(value, req.Shape, out)
				}
			}
			log.Warnw("llm cache entry no longer matches shape", "shape", key.Shape)
		}
	}

	blocks := append([]ContentBlock{}, req.Images...)
	blocks = append(blocks, TextBlock(prompt))

	raw, err := s.client.Send(ctx, []Message{UserMessage(blocks...)}, req.System)
	if err != nil {
		return err
	}

	value, err := extractValue(raw, req.Shape, req.List)
	if err != nil {
		log.Warnw("llm output not extractable", "shape", key.Shape, "error", err)
		return err
	}

	if cacheable && req.OwnerID != nil {
		if payload, err := json.Marshal(value); err == nil {
			s.cache.Put(ctx, key, payload, req.OwnerID)
		}
	}
	return decodeInto(value, req.Shape, out)
}

func cacheShapeName(req Request) string {
	name := shapeName(req.Shape)
	if req.List {
		return "List[" + name + "]"
	}
	return name
}
