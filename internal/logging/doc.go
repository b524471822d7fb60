// Package logging provides structured logging utilities for the replyflow application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (email anonymization)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "enrich")
//	logger.Info("profile enriched",
//	    logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("sender processed",
//	    logging.UserHash(email))
//
// # Security Considerations
//
// Sender addresses are PII. Outside audit-specific log streams they are
// hashed (UserHash) or reduced to their domain (Domain) so that log entries
// can still be correlated without exposing the address itself.
package logging
