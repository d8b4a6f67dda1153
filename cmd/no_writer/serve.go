package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joshuamtm/nyct-no-writer-mvp/internal/config"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/metrics"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/server"
	"github.com/joshuamtm/nyct-no-writer-mvp/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the upload, analyze, generate, export and metrics endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT or 8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	jwtService, err := metricsAuth(a.cfg)
	if err != nil {
		return err
	}
	if jwtService == nil && a.cfg.MetricsEnabled() {
		a.logger.Warn("server.metrics.unauthenticated")
	}

	srv := server.New(server.Config{
		Port:           port,
		CORSOrigins:    a.cfg.CORSOrigins,
		MetricsEnabled: a.cfg.MetricsEnabled(),
		RateLimit: ratelimit.NewConfig(ratelimit.Settings{
			Enabled:       a.cfg.RateLimitOn(),
			DefaultLimit:  a.cfg.RateLimitDefault,
			DefaultWindow: time.Duration(a.cfg.RateLimitWindowSeconds) * time.Second,
			Whitelist:     a.cfg.RateLimitWhitelist,
			Blacklist:     a.cfg.RateLimitBlacklist,
		}),
	}, server.Deps{
		Pipeline:   a.pipeline,
		Aggregator: metrics.NewAggregator(a.source),
		Collectors: a.collectors,
		JWT:        jwtService,
		Logger:     a.logger,
	})

	a.logger.Info("server.config",
		zap.Int("port", port),
		zap.Bool("ai_enabled", a.pipeline.AIEnabled()),
		zap.Bool("metrics_enabled", a.cfg.MetricsEnabled()),
		zap.Strings("cors_origins", a.cfg.CORSOrigins),
	)
	return srv.Start(ctx)
}

// metricsAuth returns the token service, or nil when JWT_SECRET is unset.
func metricsAuth(cfg *config.Config) (*server.JWTService, error) {
	auth, err := cfg.MetricsAuth()
	if errors.Is(err, config.ErrAuthDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid JWT configuration: %w", err)
	}
	return server.NewJWTService(auth), nil
}
