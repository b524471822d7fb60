// Package config provides environment-based application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix for all replyflow environment variables.
const envPrefix = "REPLYFLOW"

// Config holds all environment-based configuration.
// Variables carry the REPLYFLOW_ prefix, e.g. REPLYFLOW_OWN_ADDRESS.
type Config struct {
	// OwnAddress is the mailbox's own address. Messages sent by this
	// address are never enqueued for drafting.
	// Env: OWN_ADDRESS (required for `run`)
	OwnAddress string `envconfig:"OWN_ADDRESS"`

	// Account is the Google account name whose cached OAuth token is used.
	// Env: ACCOUNT (default: default)
	Account string `envconfig:"ACCOUNT" default:"default"`

	// StorageDir is the root directory for profile, email and draft storage.
	// Env: STORAGE_DIR (default: storage)
	StorageDir string `envconfig:"STORAGE_DIR" default:"storage"`

	// MailQuery is the mailbox search filter for new mail.
	// Env: MAIL_QUERY (default: in:inbox category:primary)
	MailQuery string `envconfig:"MAIL_QUERY" default:"in:inbox category:primary"`

	// FetchLimit caps how many fetched messages are considered per cycle.
	// Env: FETCH_LIMIT (default: 5)
	FetchLimit int `envconfig:"FETCH_LIMIT" default:"5"`

	// PollInterval is the fixed wait between polling cycles.
	// Env: POLL_INTERVAL (default: 180s)
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"180s"`

	// EnrichConcurrency bounds how many identities are enriched in parallel
	// within one cycle.
	// Env: ENRICH_CONCURRENCY (default: 4)
	EnrichConcurrency int `envconfig:"ENRICH_CONCURRENCY" default:"4"`

	// StoreMatchByName keeps the broad existence heuristic that treats a
	// case-insensitive display-name match as "already researched".
	// Env: STORE_MATCH_BY_NAME (default: true)
	StoreMatchByName bool `envconfig:"STORE_MATCH_BY_NAME" default:"true"`

	// SenderDenylist lists local-part markers of system mail that is never
	// enriched, comma separated.
	// Env: SENDER_DENYLIST
	SenderDenylist []string `envconfig:"SENDER_DENYLIST" default:"no-reply,noreply,no_reply,do-not-reply,donotreply,mailer-daemon,postmaster,notifications"`

	// Research backend credentials. A backend without a key is not
	// configured and is simply left out of the fan-out.
	ExaAPIKey    string `envconfig:"EXA_API_KEY"`
	SerperAPIKey string `envconfig:"SERPER_API_KEY"`
	SonarAPIKey  string `envconfig:"SONAR_API_KEY"`

	// Per-backend query timeouts.
	ExaTimeout    time.Duration `envconfig:"EXA_TIMEOUT" default:"15s"`
	SerperTimeout time.Duration `envconfig:"SERPER_TIMEOUT" default:"10s"`
	SonarTimeout  time.Duration `envconfig:"SONAR_TIMEOUT" default:"30s"`

	// SonarModel is the conversational search model name.
	// Env: SONAR_MODEL (default: sonar-pro)
	SonarModel string `envconfig:"SONAR_MODEL" default:"sonar-pro"`

	// MetricsAddr is the listen address of the metrics/health server.
	// Env: METRICS_ADDR (default: :9090)
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	// MetricsEnabled controls whether the metrics server is started.
	// Env: METRICS_ENABLED (default: true)
	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`

	// LogLevel is the log verbosity level (DEBUG, INFO, WARN, ERROR).
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (text or json).
	// Env: LOG_FORMAT (default: text)
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// ValidateForRun checks the fields the polling loop cannot run without.
func (c *Config) ValidateForRun() error {
	if strings.TrimSpace(c.OwnAddress) == "" {
		return fmt.Errorf("%s_OWN_ADDRESS must be set", envPrefix)
	}
	if c.FetchLimit <= 0 {
		return fmt.Errorf("%s_FETCH_LIMIT must be positive", envPrefix)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%s_POLL_INTERVAL must be positive", envPrefix)
	}
	if c.EnrichConcurrency <= 0 {
		return fmt.Errorf("%s_ENRICH_CONCURRENCY must be positive", envPrefix)
	}
	return nil
}

// HasResearchBackend reports whether at least one research backend has
// credentials configured.
func (c *Config) HasResearchBackend() bool {
	return c.ExaAPIKey != "" || c.SerperAPIKey != "" || c.SonarAPIKey != ""
}
