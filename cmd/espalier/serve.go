package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/adapters/file"
	httpadapter "github.com/aretw0/espalier/internal/adapters/http"
	redisadapter "github.com/aretw0/espalier/internal/adapters/redis"
	"github.com/aretw0/espalier/internal/config"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/persistence/middleware"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow routing HTTP server",
	Long: `Compiles every workflow in the directory and exposes them over a JSON API:
summaries, next-agent resolution, transition checks, pathfinding, validation
and hot reload. Prometheus metrics are served on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		logger := logging.New(logging.ParseLevel(cfg.LogLevel))
		metrics := httpadapter.NewMetrics()

		engineOpts := []espalier.Option{
			espalier.WithLogger(logger),
			espalier.WithQueryObserver(metrics.Observer()),
		}
		if cfg.Strict {
			engineOpts = append(engineOpts, espalier.WithStrict())
		}

		reg := registry.New(file.New(cfg.Workflows),
			registry.WithLogger(logger),
			registry.WithEngineOptions(engineOpts...),
		)
		if err := reg.LoadAll(cmd.Context()); err != nil {
			// Compiling is total, so failures here are unreadable sources.
			logger.Warn("some workflows failed to load", "error", err)
		}
		if reg.Len() == 0 {
			logger.Warn("no workflows loaded", "dir", cfg.Workflows)
		}

		var cache ports.ExportCache
		var locker ports.DistributedLocker
		if cfg.Redis.Addr != "" {
			client := goredis.NewClient(&goredis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer client.Close()
			cache = redisadapter.NewFromClient(client,
				redisadapter.WithPrefix(cfg.Redis.Prefix+":export:"),
				redisadapter.WithTTL(cfg.Redis.TTLDuration()),
			)
			locker = redisadapter.NewLocker(client, cfg.Redis.Prefix+":")
			logger.Info("using redis export cache", "addr", cfg.Redis.Addr)
		} else {
			cache = memory.NewCache()
		}

		if key, err := cfg.Cache.Key(); err != nil {
			fmt.Printf("Error in cache encryption config: %v\n", err)
			os.Exit(1)
		} else if key != nil {
			cache = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
				ActiveKey: key,
			})(cache)
			logger.Info("export cache encryption enabled")
		}

		serverOpts := []httpadapter.Option{
			httpadapter.WithLogger(logger),
			httpadapter.WithMetrics(metrics),
			httpadapter.WithExportCache(cache),
		}
		if locker != nil {
			serverOpts = append(serverOpts, httpadapter.WithLocker(locker))
		}
		srv := httpadapter.NewServer(reg, serverOpts...)

		httpServer := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: srv.Handler(),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting espalier server",
				"addr", cfg.Server.Addr,
				"workflows", reg.Len(),
			)
			serverErrors <- httpServer.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				if err := httpServer.Close(); err != nil {
					logger.Error("error killing server", "error", err)
				}
			}
			logger.Info("espalier server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("workflows", ".", "Directory containing .mmd workflow files")
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("config", "", "Path to a YAML config file")
}

// loadConfig resolves the effective config: defaults, then the config file,
// then explicit flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.FromFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("workflows") {
		cfg.Workflows, _ = cmd.Flags().GetString("workflows")
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		cfg.Strict = true
	}
	return cfg, nil
}
