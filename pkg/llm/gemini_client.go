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
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultGeminiModel   = "gemini-2.0-flash"
	geminiProviderName   = "gemini"
)

type GeminiConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
	Timeout   time.Duration
	Retry     RetryPolicy
}

type geminiClient struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

func NewGeminiClient(cfg GeminiConfig) Client {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProviderTimeout
	}
	return &geminiClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type (
	geminiInlineData struct {
		MimeType string `json:"mime_type"`
		Data     string `json:"data"`
	}

	geminiPart struct {
		Text       string            `json:"text,omitempty"`
		InlineData *geminiInlineData `json:"inline_data,omitempty"`
	}

	geminiContent struct {
		Role  string       `json:"role,omitempty"`
		Parts []geminiPart `json:"parts"`
	}

	geminiRequest struct {
		Contents          []geminiContent `json:"contents"`
		SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
		GenerationConfig  struct {
			MaxOutputTokens int `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}

	geminiResponse struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
)

func (c *geminiClient) Send(ctx context.Context, messages []Message, system string) (string, error) {
	var body geminiRequest
	body.GenerationConfig.MaxOutputTokens = c.cfg.MaxTokens
	if system != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	for _, m := range messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		content := geminiContent{Role: role}
		for _, block := range m.Content {
			if block.Type == BlockImage {
				content.Parts = append(content.Parts, geminiPart{
					InlineData: &geminiInlineData{MimeType: block.MediaType, Data: block.Data},
				})
				continue
			}
			content.Parts = append(content.Parts, geminiPart{Text: block.Text})
		}
		body.Contents = append(body.Contents, content)
	}

	requestJSON, err := json.Marshal(body)
	if err != nil {
		return "", &GenerationError{Provider: geminiProviderName, StatusCode: http.StatusBadRequest, Err: err}
	}

	url := fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)
	return withRetry(ctx, c.cfg.Retry, geminiProviderName, func() (string, error) {
		return c.do(ctx, url, requestJSON)
	})
}

func (c *geminiClient) do(ctx context.Context, url string, requestJSON []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestJSON))
	if err != nil {
		return "", &GenerationError{Provider: geminiProviderName, StatusCode: http.StatusBadRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	// never put the key in the URL, *url.Error prints it
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GenerationError{Provider: geminiProviderName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &GenerationError{
			Provider:   geminiProviderName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(bodyBytes))),
		}
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &GenerationError{Provider: geminiProviderName, StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", &GenerationError{Provider: geminiProviderName, StatusCode: resp.StatusCode, Err: errors.New("no candidates in response")}
	}

	var text strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}
