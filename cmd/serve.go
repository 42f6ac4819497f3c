package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ptit-ai/unirag/internal/metrics"
	"github.com/ptit-ai/unirag/internal/observability"
	"github.com/ptit-ai/unirag/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query API",
	Long: `
Run the query pipeline behind an HTTP API:

  POST /api/query   answer a question with provenance
  GET  /api/health  liveness check
  GET  /api/stats   invocation and outcome counters

The server shuts down gracefully on SIGINT/SIGTERM.
`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}

	shutdownOTel, err := observability.Init(p.cfg)
	if err != nil {
		log.Printf("observability init failed, continuing without export: %v", err)
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			log.Printf("observability shutdown: %v", err)
		}
	}()

	if err := metrics.Init(); err != nil {
		log.Printf("metrics store unavailable, counters disabled: %v", err)
	} else {
		defer func() { _ = metrics.Close() }()
		if err := metrics.InitOTelMetrics(); err != nil {
			log.Printf("metrics export unavailable: %v", err)
		}
	}

	srv, err := server.NewServer(server.ConfigFromTypes(p.cfg), p.router, nil)
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}
