package aiquiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Provider is the text-completion boundary the pipeline generates through.
// A provider is bound to exactly one credential; temperature varies per call.
type Provider interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
	Key() string
}

// ProviderError wraps a failed completion call. Quota marks rate/usage-limit
// failures, which the orchestrator recovers from by rotating credentials.
type ProviderError struct {
	Message string
	Quota   bool
}

func (e *ProviderError) Error() string {
	return e.Message
}

// quotaSignatures are matched case-insensitively against provider error text.
var quotaSignatures = []string{
	"429",
	"quota",
	"rate limit",
	"rate_limit",
	"resource_exhausted",
	"insufficient_quota",
}

// IsQuotaError reports whether err indicates a per-key quota or rate limit.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Quota
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range quotaSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// OpenAIProvider generates completions through the OpenAI chat API.
type OpenAIProvider struct {
	client *openai.Client
	key    string
	model  string
}

// NewOpenAIProvider creates a provider bound to the given API key.
func NewOpenAIProvider(key string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(key),
		key:    key,
		model:  defaultModel,
	}
}

// Complete sends the prompt and returns the raw response text.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       p.model,
			Temperature: temperature,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", &ProviderError{
			Message: fmt.Sprintf("completion failed: %v", err),
			Quota:   IsQuotaError(err),
		}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Message: "empty response from model"}
	}
	return resp.Choices[0].Message.Content, nil
}

// Key returns the credential this provider is bound to.
func (p *OpenAIProvider) Key() string {
	return p.key
}
