package instrumentation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Invocation captures all information about a pipeline operation for audit
// logging. This provides an audit trail for enrichments and draft creation,
// where the operation touches real sender mailboxes and profiles.
//
// # Privacy Considerations
//
// The UserEmail field contains PII. When logging, consider:
//   - Using UserDomain() to get only the domain for metrics/general logs
//   - Only logging full email in audit-specific log streams
//   - Ensuring audit logs have appropriate access controls
type Invocation struct {
	// Operation name (enrich, draft, send)
	Operation string

	// UserEmail is the sender's email address the operation acted on
	UserEmail string

	// Account is the mail account name (default, work, personal)
	Account string

	// Backends lists the research backends queried, if any
	Backends []string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// UserDomain returns the domain portion of the sender's email for
// lower-cardinality logging.
func (inv *Invocation) UserDomain() string {
	return ExtractUserDomain(inv.UserEmail)
}

// Status returns "success" or "error" based on the Success field.
func (inv *Invocation) Status() string {
	if inv.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
// This provides a consistent set of fields for all invocation logs.
//
// # Cardinality
//
// This function uses cardinality-controlled values (user_domain)
// for metrics-compatible logging. For full audit logging, use LogAuditAttrs.
func (inv *Invocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", inv.Operation),
		slog.String("user_domain", inv.UserDomain()),
		slog.Duration("duration", inv.Duration),
		slog.Bool("success", inv.Success),
	}

	// Add optional fields only if present
	if inv.Account != "" && inv.Account != "default" {
		attrs = append(attrs, slog.String("account", inv.Account))
	}
	if len(inv.Backends) > 0 {
		attrs = append(attrs, slog.String("backends", strings.Join(inv.Backends, "+")))
	}
	if inv.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", inv.TraceID))
	}
	if inv.Error != "" {
		attrs = append(attrs, slog.String("error", inv.Error))
	}

	return attrs
}

// LogAuditAttrs returns slog attributes for full audit logging.
// This includes the full sender email for compliance/audit purposes.
//
// # Security Warning
//
// This method includes PII (full email). Ensure audit logs are:
//   - Stored securely with appropriate access controls
//   - Not exposed to general monitoring dashboards
//   - Retained according to compliance requirements
func (inv *Invocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", inv.Operation),
		slog.String("user", inv.UserEmail),
		slog.Duration("duration", inv.Duration),
		slog.Bool("success", inv.Success),
	}

	// Add all optional fields
	if inv.Account != "" {
		attrs = append(attrs, slog.String("account", inv.Account))
	}
	if len(inv.Backends) > 0 {
		attrs = append(attrs, slog.String("backends", strings.Join(inv.Backends, "+")))
	}
	if inv.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", inv.TraceID))
	}
	if inv.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", inv.SpanID))
	}
	if inv.Error != "" {
		attrs = append(attrs, slog.String("error", inv.Error))
	}

	return attrs
}

// NewInvocation creates a new Invocation with timing started.
// Call Complete() when the operation finishes.
func NewInvocation(operation string) *Invocation {
	return &Invocation{
		Operation: operation,
		StartTime: time.Now(),
	}
}

// WithUser sets the sender identity information.
func (inv *Invocation) WithUser(email string) *Invocation {
	inv.UserEmail = email
	return inv
}

// WithAccount sets the mail account name.
func (inv *Invocation) WithAccount(account string) *Invocation {
	inv.Account = account
	return inv
}

// WithBackends sets the research backends queried.
func (inv *Invocation) WithBackends(backends []string) *Invocation {
	inv.Backends = backends
	return inv
}

// WithSpanContext extracts trace context from the current span.
func (inv *Invocation) WithSpanContext(ctx context.Context) *Invocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		inv.TraceID = span.SpanContext().TraceID().String()
		inv.SpanID = span.SpanContext().SpanID().String()
	}
	return inv
}

// Complete marks the invocation as completed and calculates duration.
// Returns the same Invocation for method chaining.
func (inv *Invocation) Complete(success bool, err error) *Invocation {
	inv.Duration = time.Since(inv.StartTime)
	inv.Success = success
	if err != nil {
		inv.Error = err.Error()
	}
	return inv
}

// CompleteWithError marks the invocation as failed with the given error.
func (inv *Invocation) CompleteWithError(err error) *Invocation {
	return inv.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (inv *Invocation) CompleteSuccess() *Invocation {
	return inv.Complete(true, nil)
}

// AuditLogger provides structured audit logging for pipeline operations.
// It wraps slog.Logger with convenience methods for logging invocations.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, PII is not included in logs (domain-based identifiers are used instead).
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: false,
		enabled:    true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// SetIncludePII sets whether to include full email addresses in audit logs.
func (al *AuditLogger) SetIncludePII(include bool) {
	al.includePII = include
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogInvocation logs a pipeline operation using the standard log attributes.
// This is suitable for general operational logging with cardinality controls.
// If the logger is configured with IncludePII, full sender emails are logged;
// otherwise, only domain-based identifiers are used.
func (al *AuditLogger) LogInvocation(inv *Invocation) {
	if al == nil || !al.enabled {
		return
	}

	var attrs []slog.Attr
	if al.includePII {
		attrs = inv.LogAuditAttrs()
	} else {
		attrs = inv.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if inv.Success {
		al.logger.Info("operation_executed", args...)
	} else {
		al.logger.Warn("operation_failed", args...)
	}
}

// LogAudit logs a pipeline operation with full audit details.
// This includes PII (full email addresses) for compliance/audit purposes.
// SECURITY: Ensure audit logs are routed to secure storage with appropriate access controls.
//
// Note: This method respects the enabled flag but always includes PII when called,
// regardless of the IncludePII configuration. Use LogInvocation for
// configuration-aware logging.
func (al *AuditLogger) LogAudit(inv *Invocation) {
	if al == nil || !al.enabled {
		return
	}

	attrs := inv.LogAuditAttrs()
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	al.logger.Info("operation_audit", args...)
}
