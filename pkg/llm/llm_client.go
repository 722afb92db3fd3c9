package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	BlockText  = "text"
	BlockImage = "image"
)

// ContentBlock is either text or a base64 encoded image.
type ContentBlock struct {
	Type      string
	Text      string
	MediaType string
	Data      string
}

type Message struct {
	Role    string
	Content []ContentBlock
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

func ImageBlock(mediaType string, raw []byte) ContentBlock {
	return ContentBlock{
		Type:      BlockImage,
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(raw),
	}
}

func UserMessage(blocks ...ContentBlock) Message {
	return Message{Role: RoleUser, Content: blocks}
}

// Client sends one conversation to a model and returns its text completion.
// Every failure is returned as a *GenerationError.
type Client interface {
	Send(ctx context.Context, messages []Message, system string) (string, error)
}

type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseDelay: 500 * time.Millisecond, MaxDelay: 8 * time.Second}
}

// withRetry runs call until it succeeds, returns a non temporary error, the
// attempts run out, or ctx is done.
func withRetry(ctx context.Context, policy RetryPolicy, provider string, call func() (string, error)) (string, error) {
	delay := policy.BaseDelay
	for attempt := 0; ; attempt++ {
		text, err := call()
		if err == nil {
			return text, nil
		}

		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			genErr = &GenerationError{Provider: provider, Err: err}
		}
		if attempt >= policy.MaxRetries || !genErr.Temporary() || ctx.Err() != nil {
			return "", genErr
		}

		log.Warnw("llm call failed, retrying",
			"provider", provider,
			"attempt", attempt+1,
			"status", genErr.StatusCode,
			"error", genErr.Err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", &GenerationError{Provider: provider, Err: ctx.Err()}
		case <-timer.C:
		}
		delay *= 2
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}
}
