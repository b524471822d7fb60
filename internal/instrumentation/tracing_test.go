package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithBackend("exa").
		WithOperation(OperationSearch).
		WithAccount("work").
		WithUserDomain("alice@example.com").
		WithCycle(3).
		WithForceRefresh(true).
		Build()

	want := map[string]string{
		SpanAttrBackend:    "exa",
		SpanAttrOperation:  OperationSearch,
		SpanAttrAccount:    "work",
		SpanAttrUserDomain: "example.com",
	}

	got := make(map[string]string)
	for _, attr := range attrs {
		if attr.Value.Type() == attribute.STRING {
			got[string(attr.Key)] = attr.Value.AsString()
		}
	}

	for key, value := range want {
		if got[key] != value {
			t.Errorf("expected attribute %s=%q, got %q", key, value, got[key])
		}
	}
}

func TestSpanAttributeBuilder_EmptyAccount(t *testing.T) {
	attrs := NewSpanAttributeBuilder().WithAccount("").Build()

	if len(attrs) != 0 {
		t.Errorf("expected no attributes for empty account, got %d", len(attrs))
	}
}

func TestStartSpan_NoProvider(t *testing.T) {
	ctx := context.Background()

	// Without a configured provider the global no-op tracer is used.
	// These must not panic.
	spanCtx, span := StartSpan(ctx, "test")
	defer span.End()

	_, enrichSpan := StartEnrichmentSpan(spanCtx, "alice@example.com")
	enrichSpan.End()

	_, backendSpan := StartBackendSpan(spanCtx, "serper")
	backendSpan.End()

	_, mailSpan := StartMailSpan(spanCtx, OperationDraft)
	SetSpanError(mailSpan, errors.New("boom"))
	SetSpanSuccess(mailSpan)
	AddSpanEvent(mailSpan, "retry")
	mailSpan.End()
}

func TestGetTraceID_NoSpan(t *testing.T) {
	ctx := context.Background()

	if id := GetTraceID(ctx); id != "" {
		t.Errorf("expected empty trace ID without span, got %q", id)
	}
	if id := GetSpanID(ctx); id != "" {
		t.Errorf("expected empty span ID without span, got %q", id)
	}
	if s := SpanContextString(ctx); s != "" {
		t.Errorf("expected empty span context string without span, got %q", s)
	}
}
