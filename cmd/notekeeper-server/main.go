package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/bootstrap"
	"github.com/at-ishikawa/notekeeper/internal/cache"
	"github.com/at-ishikawa/notekeeper/internal/config"
	"github.com/at-ishikawa/notekeeper/internal/inference/openai"
	"github.com/at-ishikawa/notekeeper/internal/logger"
	"github.com/at-ishikawa/notekeeper/internal/notes"
	"github.com/at-ishikawa/notekeeper/internal/server"
	"github.com/at-ishikawa/notekeeper/internal/storage"
	"github.com/at-ishikawa/notekeeper/internal/ws"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "notekeeper-server",
		Short:         "Notekeeper REST API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger.New() > %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("time.LoadLocation(%s) > %w", cfg.App.Timezone, err)
	}

	app := bootstrap.New(log)

	stores, err := bootstrap.OpenStores(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("bootstrap.OpenStores() > %w", err)
	}
	app.AddShutdownHook("database", stores.Close)
	log.Info("database connected", zap.String("driver", cfg.Database.Driver))

	hub := ws.NewHub(cfg.Server.CORS.AllowedOrigins, log)
	deps := notes.Dependencies{
		Records:      stores.Records,
		Folders:      stores.Folders,
		Categories:   stores.Categories,
		Events:       hub,
		Location:     location,
		DefaultLimit: cfg.Pagination.DefaultLimit,
		MaxLimit:     cfg.Pagination.MaxLimit,
		Logger:       log,
	}

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return errors.Join(fmt.Errorf("cache.NewRedisClient() > %w", err), stores.Close(ctx))
		}
		app.AddShutdownHook("redis", func(context.Context) error {
			return client.Close()
		})
		deps.Cache = cache.NewRedisCache(client, time.Duration(cfg.Redis.TTLSeconds)*time.Second, log)
		log.Info("period cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.Storage.Enabled() {
		images, err := storage.NewS3ImageStorage(ctx, cfg.Storage, log)
		if err != nil {
			return errors.Join(fmt.Errorf("storage.NewS3ImageStorage() > %w", err), stores.Close(ctx))
		}
		deps.Images = images
		log.Info("image storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	opts := server.Options{
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		Hub:            hub,
		Ready:          stores.Ping,
		Logger:         log,
	}
	if cfg.OpenAI.APIKey != "" {
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxRetryAttempts, log)
		app.AddShutdownHook("openai", func(context.Context) error {
			return client.Close()
		})
		opts.Narrator = client
		log.Info("narration enabled", zap.String("model", client.GetModel()))
	}

	records := notes.NewRecordService(deps)
	srv := server.New(server.Services{
		Records:    records,
		Folders:    notes.NewFolderService(deps, records),
		Categories: notes.NewCategoryService(deps),
		Summaries:  notes.NewSummaryService(records),
	}, opts)

	httpServer := server.NewHTTPServer(fmt.Sprintf(":%d", cfg.Server.Port), srv.Handler())
	app.AddShutdownHook("http", httpServer.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		go hub.Run(ctx)

		log.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer.ListenAndServe() > %w", err)
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
