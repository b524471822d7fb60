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
	serperName           = "serper"
	defaultSerperBaseURL = "https://google.serper.dev"
	defaultSerperResults = 10
)

// SerperBackend queries the Serper Google search API. It complements the
// neural Exa backend with plain keyword web results.
type SerperBackend struct {
	apiKey     string
	baseURL    string
	numResults int
	country    string
	language   string
	timeout    time.Duration
	httpClient *http.Client
}

// SerperOption configures a SerperBackend.
type SerperOption func(*SerperBackend)

// WithSerperBaseURL overrides the API endpoint. Used by tests.
func WithSerperBaseURL(url string) SerperOption {
	return func(b *SerperBackend) { b.baseURL = url }
}

// WithSerperTimeout sets the per-query timeout.
func WithSerperTimeout(d time.Duration) SerperOption {
	return func(b *SerperBackend) { b.timeout = d }
}

// NewSerperBackend creates a backend for the Serper search API.
func NewSerperBackend(apiKey string, opts ...SerperOption) *SerperBackend {
	b := &SerperBackend{
		apiKey:     apiKey,
		baseURL:    defaultSerperBaseURL,
		numResults: defaultSerperResults,
		country:    "us",
		language:   "en",
		timeout:    10 * time.Second,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the backend tag.
func (b *SerperBackend) Name() string { return serperName }

// serperRequest is the Serper search request payload.
type serperRequest struct {
	Query      string `json:"q"`
	NumResults int    `json:"num"`
	Country    string `json:"gl"`
	Language   string `json:"hl"`
}

// Query runs a keyword search and returns the raw response body.
func (b *SerperBackend) Query(ctx context.Context, text string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	payload, err := json.Marshal(serperRequest{
		Query:      text,
		NumResults: b.numResults,
		Country:    b.country,
		Language:   b.language,
	})
	if err != nil {
		return nil, queryErr(serperName, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, queryErr(serperName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, queryErr(serperName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, queryErr(serperName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Backend: serperName, Status: resp.StatusCode, Message: string(body)}
	}

	return &Result{Backend: serperName, Text: string(body)}, nil
}
