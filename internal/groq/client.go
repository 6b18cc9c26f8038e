// Package groq implements a client for the Groq chat completions API.
//
// Groq exposes an OpenAI-compatible REST surface, so the wire types follow
// that schema. The client paces requests with a local rate limiter and
// retries rate-limited calls with exponential backoff. The API key is sent
// only in the Authorization header and never logged.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ciforge/migrag/internal/httputil"
	"github.com/ciforge/migrag/internal/log"
)

// ErrNoChoices indicates the API returned a response without completions.
var ErrNoChoices = errors.New("groq: response contained no choices")

const (
	defaultTimeout = 2 * time.Minute

	// Free-tier friendly pacing: 30 requests per minute with a small burst.
	requestsPerMinute = 30
	requestBurst      = 2
)

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int

	// HTTPClient overrides the default client, used by tests.
	HTTPClient *http.Client

	Logger log.Logger
}

// Client calls the Groq chat completions endpoint.
// Client is safe for concurrent use.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float32
	maxTokens   int

	httpClient *http.Client
	limiter    *rate.Limiter
	logger     log.Logger
}

// NewClient creates a Groq API client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), requestBurst),
		logger:      logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the messages to the chat completions endpoint and returns
// the first choice. It blocks on the local rate limiter before issuing the
// request.
func (c *Client) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("groq: waiting for rate limiter: %w", err)
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("groq: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("groq: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return nil, fmt.Errorf("groq: chat completions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("groq: parsing response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := cr.Choices[0]
	c.logger.Debug("chat completion",
		"model", cr.Model,
		"prompt_tokens", cr.Usage.PromptTokens,
		"completion_tokens", cr.Usage.CompletionTokens,
		"duration", time.Since(start))

	return &Completion{
		Text:         choice.Message.Content,
		Model:        cr.Model,
		FinishReason: choice.FinishReason,
		Usage:        cr.Usage,
	}, nil
}

// decodeError turns a non-200 response into an error carrying the API's
// message when one is present.
func (c *Client) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		return fmt.Errorf("groq: HTTP %d: %s", resp.StatusCode, ae.Error.Message)
	}
	return fmt.Errorf("groq: HTTP %d", resp.StatusCode)
}
