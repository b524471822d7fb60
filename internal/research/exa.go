package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	exaName           = "exa"
	defaultExaBaseURL = "https://api.exa.ai"
	defaultExaResults = 5
)

// ExaBackend queries the Exa neural search API for professional
// information about a person.
type ExaBackend struct {
	apiKey     string
	baseURL    string
	numResults int
	timeout    time.Duration
	httpClient *http.Client
}

// ExaOption configures an ExaBackend.
type ExaOption func(*ExaBackend)

// WithExaBaseURL overrides the API endpoint. Used by tests.
func WithExaBaseURL(url string) ExaOption {
	return func(b *ExaBackend) { b.baseURL = url }
}

// WithExaTimeout sets the per-query timeout.
func WithExaTimeout(d time.Duration) ExaOption {
	return func(b *ExaBackend) { b.timeout = d }
}

// WithExaNumResults sets how many results are requested per query.
func WithExaNumResults(n int) ExaOption {
	return func(b *ExaBackend) { b.numResults = n }
}

// NewExaBackend creates a backend for the Exa search API.
func NewExaBackend(apiKey string, opts ...ExaOption) *ExaBackend {
	b := &ExaBackend{
		apiKey:     apiKey,
		baseURL:    defaultExaBaseURL,
		numResults: defaultExaResults,
		timeout:    15 * time.Second,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the backend tag.
func (b *ExaBackend) Name() string { return exaName }

// exaRequest is the Exa search request payload.
type exaRequest struct {
	Query         string      `json:"query"`
	NumResults    int         `json:"numResults"`
	Contents      exaContents `json:"contents"`
	UseAutoprompt bool        `json:"useAutoprompt"`
	Type          string      `json:"type"`
}

type exaContents struct {
	Text       bool `json:"text"`
	Highlights bool `json:"highlights"`
	Summary    bool `json:"summary"`
}

// Query runs a neural search and returns the raw response body.
func (b *ExaBackend) Query(ctx context.Context, text string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	payload, err := json.Marshal(exaRequest{
		Query:         text,
		NumResults:    b.numResults,
		Contents:      exaContents{Text: true, Highlights: true, Summary: true},
		UseAutoprompt: true,
		Type:          "neural",
	})
	if err != nil {
		return nil, queryErr(exaName, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, queryErr(exaName, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, queryErr(exaName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, queryErr(exaName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Backend: exaName, Status: resp.StatusCode, Message: string(body)}
	}

	return &Result{Backend: exaName, Text: string(body)}, nil
}
