package main

import (
	"context"
	"fmt"
	"time"

	"github.com/at-ishikawa/notekeeper/internal/bootstrap"
	"github.com/at-ishikawa/notekeeper/internal/config"
	"github.com/at-ishikawa/notekeeper/internal/notes"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// openStores loads the configuration and connects to its database.
// The caller closes the returned stores.
func openStores(ctx context.Context) (*config.Config, *bootstrap.Stores, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loadConfig() > %w", err)
	}
	stores, err := bootstrap.OpenStores(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap.OpenStores() > %w", err)
	}
	return cfg, stores, nil
}

func newSummaryService(cfg *config.Config, stores *bootstrap.Stores) (*notes.SummaryService, error) {
	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation(%s) > %w", cfg.App.Timezone, err)
	}
	records := notes.NewRecordService(notes.Dependencies{
		Records:    stores.Records,
		Folders:    stores.Folders,
		Categories: stores.Categories,
		Location:   location,
		Logger:     cliLogger,
	})
	return notes.NewSummaryService(records), nil
}
