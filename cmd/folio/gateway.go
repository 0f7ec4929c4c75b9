package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"folio/internal/gateway"
	"folio/internal/trace"
)

var gatewayAddr string

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the internal HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := buildApp()
		if err != nil {
			return err
		}
		if gatewayAddr != "" {
			app.cfg.Gateway.Addr = gatewayAddr
		}

		if app.cfg.Trace.Enabled {
			shutdown, err := trace.Init(ctx, trace.Config{
				Endpoint: app.cfg.Trace.Endpoint,
				URLPath:  app.cfg.Trace.URLPath,
				APIKey:   app.cfg.Trace.APIKey,
			})
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					slog.Error("trace shutdown failed", "error", err)
				}
			}()
			slog.Info("tracing enabled", "endpoint", app.cfg.Trace.Endpoint)
		}

		if app.cfg.Gateway.AuthToken == "" {
			slog.Warn("gateway auth token is empty, requests will not be authenticated")
		}

		factory := func(maxIterations int) gateway.Asker {
			return app.newAgent(maxIterations)
		}

		srv := gateway.NewServer(factory, app.cfg.Gateway.AuthToken)
		slog.Info("starting gateway", "addr", app.cfg.Gateway.Addr, "llm", app.cfg.DefaultLLM, "owner", app.doc.Profile.Name)
		return srv.ListenAndServe(ctx, app.cfg.Gateway.Addr)
	},
}

func init() {
	gatewayCmd.Flags().StringVarP(&gatewayAddr, "addr", "a", "", "override gateway listen address")
}
