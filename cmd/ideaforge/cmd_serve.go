package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ideaforge/internal/config"
	"ideaforge/internal/logging"
	"ideaforge/internal/server"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis, regeneration and follow-up API over HTTP",
	Long: `Starts the HTTP API:

  POST /api/analyze      stream one analysis as NDJSON
  POST /api/regenerate   regenerate sections in dependency order
  POST /api/agent        answer or plan a follow-up message
  GET  /api/reports      list stored reports
  GET  /api/reports/:id  fetch one stored report

The config file is watched; a valid edit rebuilds the runtime for new
requests while in-flight requests finish on the old one.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	a, err := buildApp(ctx, cfg, st)
	if err != nil {
		return err
	}

	var reports server.ReportStore
	if st != nil {
		reports = st
	}
	srv := server.New(a.runtime(), reports, cfg.Server.AllowedOrigins)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx, addr)
	})
	g.Go(func() error {
		return config.Watch(gctx, configPath, func(next *config.Config) {
			rebuilt, err := buildApp(gctx, next, st)
			if err != nil {
				logging.Get(logging.CategoryBoot).Warn("keeping previous runtime: %v", err)
				return
			}
			srv.Swap(rebuilt.runtime())
		})
	})
	return g.Wait()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(background(cmd), os.Interrupt, syscall.SIGTERM)
}
