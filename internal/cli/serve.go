package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resumeforge/internal/assets"
	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/observability"
	"resumeforge/internal/server"
)

// serveFlags carries command line overrides for the loaded configuration.
var serveFlags = viper.New()

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server that renders documents on request.

Available endpoints:
- GET  /health: Health check with supported sections and templates
- GET  /stats: Server statistics and rate limiting info
- GET  /sample-data: Sample payload (?kind=cover_letter for a cover letter)
- GET  /templates: Available templates
- POST /generate-resume: Render a resume PDF
- POST /generate-cover-letter: Render a cover letter PDF`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("assets-dir", "", "Directory holding template background images (default from config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := serveFlags.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("assets.dir", "assets-dir")
}

// applyServeOverrides copies flags the user actually set onto cfg.
func applyServeOverrides(cfg *config.Config, v *viper.Viper) {
	if v.IsSet("server.port") {
		if port := v.GetString("server.port"); port != "" {
			cfg.Server.Port = port
		}
	}
	if v.IsSet("server.host") {
		if host := v.GetString("server.host"); host != "" {
			cfg.Server.Host = host
		}
	}
	if v.IsSet("assets.dir") {
		if dir := v.GetString("assets.dir"); dir != "" {
			cfg.Assets.Dir = dir
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	applyServeOverrides(cfg, serveFlags)

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return fmt.Errorf("failed to load secrets from vault: %w", err)
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer shutdownObservability(om, logger)

	if err := om.StartPrometheus(); err != nil {
		return fmt.Errorf("failed to start prometheus endpoint: %w", err)
	}

	serverCfg := server.NewServerConfig(cfg, Version)
	serverCfg.Assets = assets.NewStore(cfg.Assets.Dir, cfg.Assets.Debounce, logger)
	serverCfg.Observability = om

	srv, err := server.NewServer(cfg, serverCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(cmd.Context())
}

// shutdownObservability flushes exporters; the server has already stopped
// accepting requests by the time this runs.
func shutdownObservability(om *observability.ObservabilityManager, logger *errors.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		logger.LogError(err, "Failed to shutdown observability")
	}
}
