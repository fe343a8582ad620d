package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arborui/arbor"
	"github.com/arborui/arbor/internal/config"
	"github.com/arborui/arbor/internal/logging"
	httpAdapter "github.com/arborui/arbor/pkg/adapters/http"
	"github.com/arborui/arbor/pkg/adapters/memory"
	redisAdapter "github.com/arborui/arbor/pkg/adapters/redis"
	"github.com/arborui/arbor/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editor HTTP server",
	Long:  `Starts the arbor editor as a JSON API over HTTP. Documents are kept in memory unless a redis address is configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, _ := cmd.Flags().GetString("config")
		addr, _ := cmd.Flags().GetString("addr")
		docPath, _ := cmd.Flags().GetString("document")

		cfg := config.Default()
		if cfgPath != "" {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				fmt.Printf("Error loading config: %v\n", err)
				os.Exit(1)
			}
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr = addr
		}

		logger := logging.New(logging.ParseLevel(cfg.LogLevel))

		opts := []arbor.Option{arbor.WithLogger(logger)}
		registry := prometheus.NewRegistry()
		if cfg.Metrics {
			opts = append(opts, arbor.WithMetrics(registry))
		}
		editor := arbor.New(opts...)

		if docPath != "" {
			data, err := os.ReadFile(docPath)
			if err != nil {
				fmt.Printf("Error reading document: %v\n", err)
				os.Exit(1)
			}
			if err := editor.Import(data); err != nil {
				fmt.Printf("Error importing document: %v\n", err)
				os.Exit(1)
			}
		}

		var docs ports.DocumentStore
		if cfg.Redis.Addr != "" {
			store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
				redisAdapter.WithTTL(cfg.Redis.TTL))
			defer store.Close()
			docs = store
			logger.Info("using redis document store", "addr", cfg.Redis.Addr)
		} else {
			docs = memory.NewStore()
		}

		mux := http.NewServeMux()
		mux.Handle("/", httpAdapter.NewHandler(editor, docs, logger))
		if cfg.Metrics {
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		}

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Arbor Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Arbor Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().StringP("config", "c", "", "Path to a YAML config file")
	serveCmd.Flags().StringP("document", "d", "", "Document to load into the editor on startup")
}
