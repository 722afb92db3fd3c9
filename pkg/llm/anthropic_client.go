package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultAnthropicURL     = "https://api.anthropic.com/v1/messages"
	DefaultAnthropicModel   = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens        = 4096
	anthropicVersion        = "2023-06-01"
	anthropicProviderName   = "anthropic"
	defaultProviderTimeout  = 60 * time.Second
	maxErrorBodyBytes int64 = 2048
)

type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
	Timeout   time.Duration
	Retry     RetryPolicy
}

type anthropicClient struct {
	cfg        AnthropicConfig
	httpClient *http.Client
}

func NewAnthropicClient(cfg AnthropicConfig) Client {
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAnthropicURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProviderTimeout
	}
	return &anthropicClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type (
	anthropicSource struct {
		Type      string `json:"type"`
		MediaType string `json:"media_type"`
		Data      string `json:"data"`
	}

	anthropicBlock struct {
		Type   string           `json:"type"`
		Text   string           `json:"text,omitempty"`
		Source *anthropicSource `json:"source,omitempty"`
	}

	anthropicMessage struct {
		Role    string           `json:"role"`
		Content []anthropicBlock `json:"content"`
	}

	anthropicRequest struct {
		Model     string             `json:"model"`
		MaxTokens int                `json:"max_tokens"`
		System    string             `json:"system,omitempty"`
		Messages  []anthropicMessage `json:"messages"`
	}

	anthropicResponse struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
	}
)

func (c *anthropicClient) Send(ctx context.Context, messages []Message, system string) (string, error) {
	body := anthropicRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    system,
	}
	for _, m := range messages {
		am := anthropicMessage{Role: m.Role}
		for _, block := range m.Content {
			switch block.Type {
			case BlockImage:
				am.Content = append(am.Content, anthropicBlock{
					Type:   "image",
					Source: &anthropicSource{Type: "base64", MediaType: block.MediaType, Data: block.Data},
				})
			default:
				am.Content = append(am.Content, anthropicBlock{Type: "text", Text: block.Text})
			}
		}
		body.Messages = append(body.Messages, am)
	}

	requestJSON, err := json.Marshal(body)
	if err != nil {
		return "", &GenerationError{Provider: anthropicProviderName, StatusCode: http.StatusBadRequest, Err: err}
	}

	return withRetry(ctx, c.cfg.Retry, anthropicProviderName, func() (string, error) {
		return c.do(ctx, requestJSON)
	})
}

func (c *anthropicClient) do(ctx context.Context, requestJSON []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(requestJSON))
	if err != nil {
		return "", &GenerationError{Provider: anthropicProviderName, StatusCode: http.StatusBadRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GenerationError{Provider: anthropicProviderName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &GenerationError{
			Provider:   anthropicProviderName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(bodyBytes))),
		}
	}

	var out anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &GenerationError{Provider: anthropicProviderName, StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", &GenerationError{Provider: anthropicProviderName, StatusCode: resp.StatusCode, Err: errors.New("empty completion")}
	}
	return text.String(), nil
}
