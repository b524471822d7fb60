package research

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	sonarName           = "sonar"
	defaultSonarBaseURL = "https://api.perplexity.ai"
	defaultSonarModel   = "sonar-pro"
)

// sonarPrompt asks the conversational search for clearly labeled sections
// so the downstream label-anchored parser has something to hold on to.
const sonarPrompt = `Find detailed professional information about: %s

Please provide:
1. Full name and current job title
2. Company name and industry
3. Professional bio (2-3 sentences)
4. LinkedIn profile URL
5. Twitter/X profile URL (if available)
6. Personal website (if available)
7. Location (city, country)
8. Key achievements or notable work

Format the response clearly with labeled sections.`

// SonarBackend queries the Perplexity Sonar conversational search API.
// The endpoint speaks the OpenAI chat-completions protocol, so the backend
// reuses the go-openai client with a custom base URL.
type SonarBackend struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// SonarOption configures a SonarBackend.
type SonarOption func(*sonarSettings)

type sonarSettings struct {
	baseURL string
	model   string
	timeout time.Duration
}

// WithSonarBaseURL overrides the API endpoint. Used by tests.
func WithSonarBaseURL(url string) SonarOption {
	return func(s *sonarSettings) { s.baseURL = url }
}

// WithSonarModel sets the model name.
func WithSonarModel(model string) SonarOption {
	return func(s *sonarSettings) { s.model = model }
}

// WithSonarTimeout sets the per-query timeout.
func WithSonarTimeout(d time.Duration) SonarOption {
	return func(s *sonarSettings) { s.timeout = d }
}

// NewSonarBackend creates a backend for the Perplexity Sonar API.
func NewSonarBackend(apiKey string, opts ...SonarOption) *SonarBackend {
	settings := sonarSettings{
		baseURL: defaultSonarBaseURL,
		model:   defaultSonarModel,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = settings.baseURL

	return &SonarBackend{
		client:  openai.NewClientWithConfig(cfg),
		model:   settings.model,
		timeout: settings.timeout,
	}
}

// Name returns the backend tag.
func (b *SonarBackend) Name() string { return sonarName }

// Query asks the conversational search about the identity and returns the
// model's answer.
func (b *SonarBackend) Query(ctx context.Context, text string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(sonarPrompt, text),
			},
		},
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &Error{Backend: sonarName, Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return nil, queryErr(sonarName, err)
	}

	if len(resp.Choices) == 0 {
		return nil, &Error{Backend: sonarName, Message: "empty completion response"}
	}

	return &Result{Backend: sonarName, Text: resp.Choices[0].Message.Content}, nil
}
