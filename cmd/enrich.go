package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/replyflow/internal/config"
	"github.com/teemow/replyflow/internal/identity"
	"github.com/teemow/replyflow/internal/instrumentation"
	"github.com/teemow/replyflow/internal/logging"
)

func newEnrichCmd() *cobra.Command {
	var (
		name         string
		forceRefresh bool
		envFile      string
	)

	cmd := &cobra.Command{
		Use:   "enrich <email>",
		Short: "Research a single sender and store the profile",
		Long: `Run the research pipeline for one email address and print the stored
profile as JSON. With --force-refresh the backends are queried even when
a profile already exists; the stored record is replaced on success and
kept on failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runEnrich(cfg, args[0], name, forceRefresh)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name hint for the research query")
	cmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "Query the backends even when a profile already exists")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to a .env file (default: .env in the working directory)")
	return cmd
}

func runEnrich(cfg *config.Config, email, name string, forceRefresh bool) error {
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx := context.Background()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	if !cfg.HasResearchBackend() && !forceRefresh {
		logger.Warn("no research backend configured, profile fields will stay empty")
	}

	normalized := identity.Normalize(email)
	coordinator, _, err := buildEnrichment(cfg, provider, logger)
	if err != nil {
		return err
	}

	audit := instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)
	inv := instrumentation.NewInvocation("enrich").WithUser(normalized)

	rec := coordinator.Enrich(ctx, normalized, name, forceRefresh)
	if rec == nil {
		audit.LogInvocation(inv.CompleteWithError(fmt.Errorf("enrichment yielded no profile")))
		return fmt.Errorf("no profile could be stored for %s", normalized)
	}
	audit.LogInvocation(inv.CompleteSuccess())

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
