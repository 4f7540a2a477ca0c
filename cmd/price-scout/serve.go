// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pdiddy/price-scout/internal/favorites"
	"github.com/pdiddy/price-scout/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search and saved-items HTTP API",
	Long: `Serve starts an HTTP server exposing POST /search, GET /search/status,
GET/POST /favorites, DELETE /favorites/{id}, GET /metrics and GET /healthz.
It stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := favorites.NewStore(a.cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	addr := a.cfg.Server.Addr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}

	router := httpapi.NewRouter(a.orch, store, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return httpapi.Serve(ctx, addr, router)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")

	rootCmd.AddCommand(serveCmd)
}
