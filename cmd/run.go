package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/replyflow/internal/archive"
	"github.com/teemow/replyflow/internal/config"
	"github.com/teemow/replyflow/internal/enrich"
	"github.com/teemow/replyflow/internal/flow"
	"github.com/teemow/replyflow/internal/google"
	"github.com/teemow/replyflow/internal/identity"
	"github.com/teemow/replyflow/internal/instrumentation"
	"github.com/teemow/replyflow/internal/logging"
	"github.com/teemow/replyflow/internal/mailbox"
	"github.com/teemow/replyflow/internal/parse"
	"github.com/teemow/replyflow/internal/profile"
	"github.com/teemow/replyflow/internal/research"
	"github.com/teemow/replyflow/internal/server"
)

func newRunCmd() *cobra.Command {
	var (
		account string
		envFile string
		once    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll the inbox and draft researched replies",
		Long: `Start the polling loop: fetch new inbox mail, research each sender
through the configured backends, store the profiles and create reply
drafts in the mailbox for review.

Configuration comes from REPLYFLOW_* environment variables, optionally
loaded from a .env file. REPLYFLOW_OWN_ADDRESS is required so the loop
never replies to its own mail.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if account != "" {
				cfg.Account = account
			}
			if err := cfg.ValidateForRun(); err != nil {
				return err
			}
			return runFlow(cfg, once)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Google account name to use (overrides REPLYFLOW_ACCOUNT)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to a .env file (default: .env in the working directory)")
	cmd.Flags().BoolVar(&once, "once", false, "Run a single cycle and exit instead of polling")
	return cmd
}

func runFlow(cfg *config.Config, once bool) error {
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()
	metrics := provider.Metrics()

	health := server.NewHealthChecker()
	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
			HealthChecker:           health,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
		logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	if err := google.MigrateDefaultToken(); err != nil {
		logger.Warn("token migration failed", logging.Err(err))
	}

	mb, err := mailbox.NewGmailClientForAccount(ctx, cfg.Account,
		mailbox.WithLogger(logger),
		mailbox.WithMetrics(metrics))
	if err != nil {
		metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultFailure)
		return fmt.Errorf("%s", google.GetAuthenticationErrorMessage(cfg.Account))
	}
	metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)

	coordinator, store, err := buildEnrichment(cfg, provider, logger)
	if err != nil {
		return err
	}

	mailArchive, err := archive.New(cfg.StorageDir, archive.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	extractor := identity.NewExtractor(cfg.SenderDenylist)
	drafter := flow.NewReplyDrafter(mb, store, extractor, logger)

	audit := instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)

	f := flow.New(flow.Config{
		OwnAddress:   cfg.OwnAddress,
		Query:        cfg.MailQuery,
		FetchLimit:   int64(cfg.FetchLimit),
		WaitInterval: cfg.PollInterval,
	}, mb, extractor, coordinator, drafter,
		flow.WithArchive(mailArchive),
		flow.WithAuditLogger(audit),
		flow.WithLogger(logger),
		flow.WithMetrics(metrics))

	health.SetReady(true)
	logger.Info("replyflow started",
		slog.String("account", mb.Account()),
		slog.String("query", cfg.MailQuery),
		slog.Duration("poll_interval", cfg.PollInterval))

	if once {
		return f.RunCycle(ctx)
	}
	return f.Run(ctx)
}

// buildEnrichment wires the research backends, parser, profile store and
// coordinator from configuration. Backends without credentials are left
// out of the fan-out.
func buildEnrichment(cfg *config.Config, provider *instrumentation.Provider, logger *slog.Logger) (*enrich.Coordinator, *profile.Store, error) {
	store, err := profile.NewStore(cfg.StorageDir,
		profile.WithNameMatching(cfg.StoreMatchByName),
		profile.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create profile store: %w", err)
	}

	backends := buildBackends(cfg)
	if len(backends) == 0 {
		logger.Warn("no research backend configured, profiles will stay empty")
	}

	coordinator := enrich.NewCoordinator(store, backends, parse.NewParser(parse.WithLogger(logger)),
		enrich.WithLogger(logger),
		enrich.WithMetrics(provider.Metrics()),
		enrich.WithConcurrency(cfg.EnrichConcurrency))

	return coordinator, store, nil
}

func buildBackends(cfg *config.Config) []research.Backend {
	var backends []research.Backend
	if cfg.ExaAPIKey != "" {
		backends = append(backends, research.NewExaBackend(cfg.ExaAPIKey,
			research.WithExaTimeout(cfg.ExaTimeout)))
	}
	if cfg.SerperAPIKey != "" {
		backends = append(backends, research.NewSerperBackend(cfg.SerperAPIKey,
			research.WithSerperTimeout(cfg.SerperTimeout)))
	}
	if cfg.SonarAPIKey != "" {
		backends = append(backends, research.NewSonarBackend(cfg.SonarAPIKey,
			research.WithSonarModel(cfg.SonarModel),
			research.WithSonarTimeout(cfg.SonarTimeout)))
	}
	return backends
}
