package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrResult    = "result"
	attrStatus    = "status"
	attrBackend   = "backend"
	attrOperation = "operation"
	attrAccount   = "account"
)

// Metrics provides methods for recording observability metrics.
// All recording methods are safe to call on a nil receiver, which lets
// callers skip nil checks when instrumentation is not wired up.
type Metrics struct {
	// Enrichment metrics
	enrichmentsTotal   metric.Int64Counter
	enrichmentDuration metric.Float64Histogram

	// Research backend metrics
	backendCallsTotal   metric.Int64Counter
	backendCallDuration metric.Float64Histogram

	// Profile store metrics
	storeWriteFailures metric.Int64Counter

	// Responder flow metrics
	cyclesTotal   metric.Int64Counter
	cycleDuration metric.Float64Histogram
	draftsTotal   metric.Int64Counter

	// Mail API metrics
	mailOperationsTotal   metric.Int64Counter
	mailOperationDuration metric.Float64Histogram

	// OAuth metrics
	oauthAuthTotal         metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter

	// Configuration
	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// Enrichment Metrics
	m.enrichmentsTotal, err = meter.Int64Counter(
		"profile_enrichments_total",
		metric.WithDescription("Total number of profile enrichment requests"),
		metric.WithUnit("{enrichment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile_enrichments_total counter: %w", err)
	}

	m.enrichmentDuration, err = meter.Float64Histogram(
		"profile_enrichment_duration_seconds",
		metric.WithDescription("Profile enrichment duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile_enrichment_duration_seconds histogram: %w", err)
	}

	// Research Backend Metrics
	m.backendCallsTotal, err = meter.Int64Counter(
		"research_backend_calls_total",
		metric.WithDescription("Total number of research backend queries"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create research_backend_calls_total counter: %w", err)
	}

	m.backendCallDuration, err = meter.Float64Histogram(
		"research_backend_call_duration_seconds",
		metric.WithDescription("Research backend query duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create research_backend_call_duration_seconds histogram: %w", err)
	}

	// Profile Store Metrics
	m.storeWriteFailures, err = meter.Int64Counter(
		"profile_store_write_failures_total",
		metric.WithDescription("Total number of failed profile store writes"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile_store_write_failures_total counter: %w", err)
	}

	// Responder Flow Metrics
	m.cyclesTotal, err = meter.Int64Counter(
		"responder_cycles_total",
		metric.WithDescription("Total number of responder flow cycles"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create responder_cycles_total counter: %w", err)
	}

	m.cycleDuration, err = meter.Float64Histogram(
		"responder_cycle_duration_seconds",
		metric.WithDescription("Responder flow cycle duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create responder_cycle_duration_seconds histogram: %w", err)
	}

	m.draftsTotal, err = meter.Int64Counter(
		"mail_drafts_created_total",
		metric.WithDescription("Total number of draft replies created"),
		metric.WithUnit("{draft}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_drafts_created_total counter: %w", err)
	}

	// Mail API Metrics
	m.mailOperationsTotal, err = meter.Int64Counter(
		"mail_api_operations_total",
		metric.WithDescription("Total number of mail API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_api_operations_total counter: %w", err)
	}

	m.mailOperationDuration, err = meter.Float64Histogram(
		"mail_api_operation_duration_seconds",
		metric.WithDescription("Mail API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_api_operation_duration_seconds histogram: %w", err)
	}

	// OAuth Metrics
	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of OAuth authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}

	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	return m, nil
}

// RecordEnrichment records a profile enrichment with its result and duration.
// Result should be one of: "cached", "fresh", "refresh"
func (m *Metrics) RecordEnrichment(ctx context.Context, result string, duration time.Duration) {
	if m == nil || m.enrichmentsTotal == nil || m.enrichmentDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.enrichmentsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.enrichmentDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordBackendCall records a research backend query with its duration and outcome.
func (m *Metrics) RecordBackendCall(ctx context.Context, backend string, duration time.Duration, err error) {
	if m == nil || m.backendCallsTotal == nil || m.backendCallDuration == nil {
		return // Instrumentation not initialized
	}

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrBackend, backend),
		attribute.String(attrStatus, status),
	}

	m.backendCallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.backendCallDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(attrBackend, backend),
	))
}

// RecordStoreWriteFailure records a failed write to the profile store.
func (m *Metrics) RecordStoreWriteFailure(ctx context.Context) {
	if m == nil || m.storeWriteFailures == nil {
		return // Instrumentation not initialized
	}

	m.storeWriteFailures.Add(ctx, 1)
}

// RecordCycle records one responder flow cycle with status and duration.
// Status should be "success" or "error".
func (m *Metrics) RecordCycle(ctx context.Context, status string, duration time.Duration) {
	if m == nil || m.cyclesTotal == nil || m.cycleDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	m.cyclesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.cycleDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordDraftCreated records a draft reply creation attempt with status.
// Status should be "success" or "error".
func (m *Metrics) RecordDraftCreated(ctx context.Context, status string) {
	if m == nil || m.draftsTotal == nil {
		return // Instrumentation not initialized
	}

	m.draftsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrStatus, status),
	))
}

// RecordMailOperation records a mail API operation with operation type,
// status, and duration.
//
// Parameters:
//   - operation: Operation type (list, get, search, draft, send)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordMailOperation(ctx context.Context, operation, status string, duration time.Duration) {
	m.RecordMailOperationForAccount(ctx, operation, status, "", duration)
}

// RecordMailOperationForAccount records a mail API operation with account info.
// The account label is only included when detailedLabels is enabled, since
// account names can be operator-defined and unbounded.
func (m *Metrics) RecordMailOperationForAccount(ctx context.Context, operation, status, account string, duration time.Duration) {
	if m == nil || m.mailOperationsTotal == nil || m.mailOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}

	m.mailOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.mailOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordOAuthAuth records an OAuth authentication attempt with result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m == nil || m.oauthAuthTotal == nil {
		return // Instrumentation not initialized
	}

	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordOAuthTokenRefresh records an OAuth token refresh attempt with result.
// Result should be one of: "success", "failure", "expired"
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m == nil || m.oauthTokenRefreshTotal == nil {
		return // Instrumentation not initialized
	}

	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}
