package server

import (
	"context"
	"testing"

	"github.com/teemow/replyflow/internal/instrumentation"
)

func TestNewMetricsServer_RequiresProvider(t *testing.T) {
	_, err := NewMetricsServer(MetricsServerConfig{Addr: ":9090"})
	if err == nil {
		t.Error("expected error when instrumentation provider is missing")
	}
}

func TestNewMetricsServer_RequiresEnabledProvider(t *testing.T) {
	ctx := context.Background()

	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = NewMetricsServer(MetricsServerConfig{
		Addr:                    ":9090",
		InstrumentationProvider: provider,
	})
	if err == nil {
		t.Error("expected error when instrumentation provider is disabled")
	}
}

func TestNewMetricsServer_DefaultAddr(t *testing.T) {
	ctx := context.Background()

	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	srv, err := NewMetricsServer(MetricsServerConfig{
		InstrumentationProvider: provider,
	})
	if err != nil {
		t.Fatalf("failed to create metrics server: %v", err)
	}

	if srv.Addr() != DefaultMetricsAddr {
		t.Errorf("expected default addr %q, got %q", DefaultMetricsAddr, srv.Addr())
	}
}

func TestMetricsServer_ShutdownWithoutStart(t *testing.T) {
	ctx := context.Background()

	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test-service",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	health := NewHealthChecker()
	srv, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":0",
		InstrumentationProvider: provider,
		HealthChecker:           health,
	})
	if err != nil {
		t.Fatalf("failed to create metrics server: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}

	if !health.IsShuttingDown() {
		t.Error("expected health checker to be marked shutting down")
	}
}
