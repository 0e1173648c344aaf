// Package gemini provides a client for the Gemini generateContent REST API,
// the text generation oracle behind chat, metric extraction and narration.
package gemini

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

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

const (
	DefaultModel   = "gemini-1.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	mimeText = "text/plain"
	mimeJSON = "application/json"
)

var (
	// ErrNoAPIKey is returned without touching the network when no key is configured
	ErrNoAPIKey = errors.New("gemini: no API key configured")
	// ErrEmptyResponse is returned when the model produced no text (e.g. blocked prompt)
	ErrEmptyResponse = errors.New("gemini: response contained no text")
)

// Config holds client settings
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration // Per attempt
	MaxRetries int           // Retries after the first attempt, transient failures only
}

// StatusError is a non-200 answer from the API
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini: API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gemini: API returned status %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

// Temporary reports whether the request is worth retrying
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client for the Gemini API
type Client struct {
	cfg           Config
	client        *http.Client
	log           zerolog.Logger
	retryInterval time.Duration
}

// NewClient creates a new Gemini client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &Client{
		cfg:           cfg,
		client:        &http.Client{Timeout: cfg.Timeout},
		log:           log.With().Str("client", "gemini").Logger(),
		retryInterval: 500 * time.Millisecond,
	}
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Model returns the model name requests are sent to
func (c *Client) Model() string {
	return c.cfg.Model
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	TopK             int     `json:"topK"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends a single-turn prompt and returns the model text.
// With jsonMode the model is asked for an application/json response;
// the text is returned as-is and parsing is left to the caller.
func (c *Client) Generate(ctx context.Context, prompt, systemInstruction string, jsonMode bool) (string, error) {
	if !c.Configured() {
		return "", ErrNoAPIKey
	}

	body, err := json.Marshal(buildRequest(prompt, systemInstruction, jsonMode))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.retryInterval
	expBackoff.MaxInterval = 20 * c.retryInterval

	start := time.Now()
	text, err := backoff.Retry(ctx, func() (string, error) {
		return c.doGenerate(ctx, body)
	},
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(uint(c.cfg.MaxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Warn().Err(err).Dur("retry_in", next).Msg("Gemini request failed, retrying")
		}),
	)
	if err != nil {
		return "", err
	}

	c.log.Debug().
		Bool("json_mode", jsonMode).
		Int("prompt_chars", len(prompt)).
		Int("response_chars", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Generated content")

	return text, nil
}

func buildRequest(prompt, systemInstruction string, jsonMode bool) generateRequest {
	mime := mimeText
	if jsonMode {
		mime = mimeJSON
	}

	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      1,
			TopP:             0.95,
			TopK:             64,
			MaxOutputTokens:  8192,
			ResponseMimeType: mime,
		},
	}
	if systemInstruction != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemInstruction}}}
	}
	return req
}

// doGenerate performs one attempt. Errors that must not be retried are wrapped
// with backoff.Permanent.
func (c *Client) doGenerate(ctx context.Context, body []byte) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil {
			statusErr.Status = apiErr.Error.Status
			statusErr.Message = apiErr.Error.Message
		}
		if statusErr.Temporary() {
			return "", statusErr
		}
		return "", backoff.Permanent(statusErr)
	}

	var result generateResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to parse response: %w", err))
	}

	return extractText(result)
}

func extractText(result generateResponse) (string, error) {
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", backoff.Permanent(fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, result.PromptFeedback.BlockReason))
	}

	var b strings.Builder
	for _, candidate := range result.Candidates {
		for _, p := range candidate.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			break
		}
	}

	if b.Len() == 0 {
		return "", backoff.Permanent(ErrEmptyResponse)
	}
	return b.String(), nil
}
