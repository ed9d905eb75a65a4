package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/dygy/codegroove/internal/logging"
	"github.com/dygy/codegroove/internal/server"
)

const sentryFlushTimeout = 2 * time.Second

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON API for composing, rendering and playback sessions.

Example:
  codegroove serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func initServeFlags() {
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: $PORT or 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.FromContext(cmd.Context())

	srvCfg := server.Config{
		Port:           cfg.Port,
		MaxSourceBytes: cfg.MaxSourceBytes,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		SessionTTL:     cfg.SessionTTL,
		DrumKit:        cfg.DrumKit,
	}
	if port > 0 {
		srvCfg.Port = port
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     "codegroove@" + version,
			Debug:       !cfg.IsProduction(),
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				if event.Request != nil {
					delete(event.Request.Headers, "Authorization")
					delete(event.Request.Headers, "Cookie")
				}
				return event
			},
		}); err != nil {
			logger.Warn("failed to initialize Sentry", "error", err)
		} else {
			logger.Info("sentry initialized", "environment", cfg.Environment, "release", version)
			srvCfg.Sentry = true
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(srvCfg, registry, logger)
	fmt.Fprintf(cmd.ErrOrStderr(), "\n  codegroove API running at: http://localhost:%d\n\n", srvCfg.Port)

	if err := srv.Run(ctx); err != nil {
		if cfg.SentryDSN != "" {
			sentry.CaptureException(err)
		}
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
