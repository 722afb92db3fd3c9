package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(n int) RetryPolicy {
	return RetryPolicy{MaxRetries: n, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestAnthropicClient_SendsTextAndImage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"[{\"name\":\"milk\"}]"}]}`))
	}))
	defer srv.Close()

	client := NewAnthropicClient(AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL, Retry: fastRetry(0)})
	text, err := client.Send(context.Background(), []Message{
		UserMessage(ImageBlock("image/jpeg", []byte{0xff, 0xd8}), TextBlock("list the items")),
	}, "be precise")

	require.NoError(t, err)
	assert.Equal(t, `[{"name":"milk"}]`, text)
	assert.Equal(t, DefaultAnthropicModel, got["model"])
	assert.Equal(t, "be precise", got["system"])

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 1)
	blocks := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, blocks, 2)
	image := blocks[0].(map[string]any)
	assert.Equal(t, "image", image["type"])
	assert.Equal(t, "/9g=", image["source"].(map[string]any)["data"])
	assert.Equal(t, "list the items", blocks[1].(map[string]any)["text"])
}

func TestAnthropicClient_RetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	client := NewAnthropicClient(AnthropicConfig{BaseURL: srv.URL, Retry: fastRetry(2)})
	text, err := client.Send(context.Background(), []Message{UserMessage(TextBlock("hi"))}, "")

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAnthropicClient_TerminalFailureSurfaces(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	client := NewAnthropicClient(AnthropicConfig{BaseURL: srv.URL, Retry: fastRetry(3)})
	_, err := client.Send(context.Background(), []Message{UserMessage(TextBlock("hi"))}, "")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, http.StatusUnauthorized, genErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAnthropicClient_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewAnthropicClient(AnthropicConfig{BaseURL: srv.URL, Retry: fastRetry(2)})
	_, err := client.Send(context.Background(), []Message{UserMessage(TextBlock("hi"))}, "")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, http.StatusTooManyRequests, genErr.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAnthropicClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewAnthropicClient(AnthropicConfig{BaseURL: srv.URL, Retry: fastRetry(2)})
	_, err := client.Send(context.Background(), []Message{UserMessage(TextBlock("hi"))}, "")

	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)
}

func TestGeminiClient_SendsInlineData(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+DefaultGeminiModel+":generateContent", r.URL.Path)
		assert.Equal(t, "gkey", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "gkey", BaseURL: srv.URL, Retry: fastRetry(0)})
	text, err := client.Send(context.Background(), []Message{
		UserMessage(ImageBlock("image/png", []byte("png")), TextBlock("describe")),
	}, "system text")

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)

	sys := got["systemInstruction"].(map[string]any)["parts"].([]any)[0].(map[string]any)
	assert.Equal(t, "system text", sys["text"])
	parts := got["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	inline := parts[0].(map[string]any)["inline_data"].(map[string]any)
	assert.Equal(t, "image/png", inline["mime_type"])
}

func TestGeminiClient_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(GeminiConfig{BaseURL: srv.URL, Retry: fastRetry(1)})
	_, err := client.Send(context.Background(), []Message{UserMessage(TextBlock("hi"))}, "")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.False(t, genErr.Temporary())
}

func TestGeminiClient_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "SECRET-KEY-123", BaseURL: baseURL, Retry: fastRetry(0)})
	_, err := client.Send(context.Background(), []Message{UserMessage(TextBlock("hi"))}, "")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Zero(t, genErr.StatusCode)
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
}

func TestWithRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := withRetry(ctx, RetryPolicy{MaxRetries: 5, BaseDelay: time.Hour}, "test", func() (string, error) {
		calls++
		cancel()
		return "", &GenerationError{Provider: "test", StatusCode: http.StatusBadGateway}
	})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 1, calls)
}
