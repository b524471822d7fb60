// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the replyflow pipeline.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for enrichments, research backends, and mail operations
//   - Distributed tracing for enrichment flows and API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Enrichment Metrics:
//   - profile_enrichments_total: Counter of enrichment requests by result (cached, fresh, refresh)
//   - profile_enrichment_duration_seconds: Histogram of enrichment durations
//   - profile_store_write_failures_total: Counter of failed profile store writes
//
// Research Backend Metrics:
//   - research_backend_calls_total: Counter of backend queries by backend and status
//   - research_backend_call_duration_seconds: Histogram of backend query durations
//
// Responder Flow Metrics:
//   - responder_cycles_total: Counter of flow cycles by status
//   - responder_cycle_duration_seconds: Histogram of cycle durations
//   - mail_drafts_created_total: Counter of draft replies by status
//
// Mail API Metrics:
//   - mail_api_operations_total: Counter of mail operations by operation and status
//   - mail_api_operation_duration_seconds: Histogram of mail operation durations
//
// OAuth Authentication Metrics:
//   - oauth_auth_total: Counter of OAuth authentication events by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - Profile enrichments (enrich.profile)
//   - Research backend queries (research.<backend>)
//   - Mail API calls (mail.<operation>)
//   - OAuth token operations
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: replyflow)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "replyflow",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record an enrichment
//	recorder.RecordEnrichment(ctx, "fresh", time.Since(start))
//
//	// Record a research backend query
//	recorder.RecordBackendCall(ctx, "exa", time.Since(start), nil)
//
//	// Record a mail API operation
//	recorder.RecordMailOperation(ctx, "draft", "success", time.Since(start))
package instrumentation
