package instrumentation

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestInvocation_Complete(t *testing.T) {
	inv := NewInvocation("enrich").WithUser("alice@example.com")

	if inv.StartTime.IsZero() {
		t.Error("expected StartTime to be set")
	}

	time.Sleep(time.Millisecond)
	inv.CompleteSuccess()

	if !inv.Success {
		t.Error("expected Success to be true")
	}
	if inv.Duration <= 0 {
		t.Error("expected positive Duration")
	}
	if inv.Status() != StatusSuccess {
		t.Errorf("expected status %q, got %q", StatusSuccess, inv.Status())
	}
}

func TestInvocation_CompleteWithError(t *testing.T) {
	inv := NewInvocation("draft").CompleteWithError(errors.New("quota exceeded"))

	if inv.Success {
		t.Error("expected Success to be false")
	}
	if inv.Error != "quota exceeded" {
		t.Errorf("expected error message, got %q", inv.Error)
	}
	if inv.Status() != StatusError {
		t.Errorf("expected status %q, got %q", StatusError, inv.Status())
	}
}

func TestInvocation_LogAttrs_NoPII(t *testing.T) {
	inv := NewInvocation("enrich").
		WithUser("alice@example.com").
		WithBackends([]string{"exa", "serper"}).
		CompleteSuccess()

	for _, attr := range inv.LogAttrs() {
		if attr.Key == "user" {
			t.Error("LogAttrs must not include the full email address")
		}
		if attr.Key == "user_domain" && attr.Value.String() != "example.com" {
			t.Errorf("expected user_domain 'example.com', got %q", attr.Value.String())
		}
		if attr.Key == "backends" && attr.Value.String() != "exa+serper" {
			t.Errorf("expected backends 'exa+serper', got %q", attr.Value.String())
		}
	}
}

func TestInvocation_LogAuditAttrs_IncludesPII(t *testing.T) {
	inv := NewInvocation("enrich").
		WithUser("alice@example.com").
		WithAccount("default").
		CompleteSuccess()

	found := false
	for _, attr := range inv.LogAuditAttrs() {
		if attr.Key == "user" && attr.Value.String() == "alice@example.com" {
			found = true
		}
	}
	if !found {
		t.Error("LogAuditAttrs must include the full email address")
	}
}

func TestAuditLogger_LogInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLogger(logger)
	inv := NewInvocation("enrich").WithUser("alice@example.com").CompleteSuccess()
	al.LogInvocation(inv)

	out := buf.String()
	if !strings.Contains(out, "operation_executed") {
		t.Errorf("expected operation_executed log entry, got %q", out)
	}
	if strings.Contains(out, "alice@example.com") {
		t.Error("default audit logger must not log full email addresses")
	}
	if !strings.Contains(out, "example.com") {
		t.Error("expected user domain in log output")
	}
}

func TestAuditLogger_IncludePII(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true, IncludePII: true})
	inv := NewInvocation("draft").WithUser("alice@example.com").CompleteWithError(errors.New("boom"))
	al.LogInvocation(inv)

	out := buf.String()
	if !strings.Contains(out, "operation_failed") {
		t.Errorf("expected operation_failed log entry, got %q", out)
	}
	if !strings.Contains(out, "alice@example.com") {
		t.Error("expected full email address when IncludePII is enabled")
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: false})
	al.LogInvocation(NewInvocation("enrich").CompleteSuccess())
	al.LogAudit(NewInvocation("enrich").CompleteSuccess())

	if buf.Len() != 0 {
		t.Errorf("expected no output from disabled audit logger, got %q", buf.String())
	}
}
