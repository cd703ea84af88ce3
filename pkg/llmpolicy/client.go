package llmpolicy

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/socialsim/engine/pkg/logger"
	"github.com/socialsim/engine/pkg/retry"
)

const providerName = "genai"

// DefaultModel is used by generators that don't override it.
const DefaultModel = "gemini-3-flash-preview"

// Config configures the structured-completion client.
type Config struct {
	APIKey string
	Model  string
	Retry  retry.Config
}

// Client issues JSON-structured completions against a generation provider,
// retrying transient failures with backoff (pkg/retry) and classifying
// every failure through ProviderError so callers can tell a malformed
// request from a provider outage.
type Client struct {
	genai *genai.Client
	model string
	retry retry.Config
	log   *slog.Logger
}

// NewClient constructs a Client. An empty APIKey is valid: IsConfigured
// reports false and callers fall back to a non-LLM generator.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Retry == (retry.Config{}) {
		cfg.Retry = retry.DefaultConfig()
	}

	c := &Client{model: cfg.Model, retry: cfg.Retry, log: log}
	if cfg.APIKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.genai = client
	return c, nil
}

// IsConfigured reports whether the client can make real calls.
func (c *Client) IsConfigured() bool { return c.genai != nil }

// Model returns the model name this client issues completions against,
// for callers that need to stamp it into generation metadata.
func (c *Client) Model() string { return c.model }

// CompleteStructured issues a single structured-completion call, retrying
// per c.retry. schema describes the expected JSON shape; the raw JSON text
// of the response is returned for the caller to unmarshal into its own
// generator-specific output type.
func (c *Client) CompleteStructured(ctx context.Context, systemPrompt, userPrompt string, schema *genai.Schema) (string, error) {
	if !c.IsConfigured() {
		return "", NewProviderError(providerName, "generate_content", 0, ErrorKindInvalidRequest, "not_configured", "client has no API key configured", nil)
	}

	var out string
	err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
		text, err := c.generateOnce(ctx, systemPrompt, userPrompt, schema)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func (c *Client) generateOnce(ctx context.Context, systemPrompt, userPrompt string, schema *genai.Schema) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr(float32(0.0)),
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", classifyGenAIError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", NewProviderError(providerName, "generate_content", 0, ErrorKindUnavailable, "empty_response", "provider returned no candidates", nil)
	}

	reason := string(resp.Candidates[0].FinishReason)
	if reason == "SAFETY" || reason == "RECITATION" {
		return "", NewProviderError(providerName, "generate_content", 0, ErrorKindInvalidRequest, "blocked", fmt.Sprintf("response blocked: %s", reason), nil)
	}

	text := resp.Candidates[0].Content.Parts[0].Text
	c.log.Debug("structured completion", logger.Scope("llmpolicy"), slog.Int("response_bytes", len(text)))
	return text, nil
}

// classifyGenAIError wraps a raw genai/transport error into a ProviderError.
// genai surfaces provider HTTP failures as genai.APIError values; anything
// else (network, marshaling) is classified unavailable so it is retried.
func classifyGenAIError(err error) error {
	if apiErr, ok := err.(genai.APIError); ok {
		return NewProviderError(providerName, "generate_content", apiErr.Code, ClassifyHTTPStatus(apiErr.Code), apiErr.Status, apiErr.Message, err)
	}
	return NewProviderError(providerName, "generate_content", 0, ErrorKindUnavailable, "", err.Error(), err)
}
