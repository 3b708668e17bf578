package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/at-ishikawa/notekeeper/internal/category"
	"github.com/at-ishikawa/notekeeper/internal/config"
	"github.com/at-ishikawa/notekeeper/internal/database"
	"github.com/at-ishikawa/notekeeper/internal/folder"
	"github.com/at-ishikawa/notekeeper/internal/record"
)

// Stores are the repositories of the configured database driver.
type Stores struct {
	Records    record.Repository
	Folders    folder.Repository
	Categories category.Repository
	// SQL is set only for the mysql driver.
	SQL *sqlx.DB

	mongoClient *mongo.Client
}

// OpenStores connects to the database selected by cfg.Driver.
// Mongo indexes are created on open; MySQL schema is applied by the migrate command.
func OpenStores(ctx context.Context, cfg config.DatabaseConfig) (*Stores, error) {
	switch cfg.Driver {
	case "mongo":
		client, db, err := database.OpenMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("database.OpenMongo() > %w", err)
		}
		if err := database.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("database.EnsureIndexes() > %w", err)
		}
		return &Stores{
			Records:     record.NewMongoRepository(db),
			Folders:     folder.NewMongoRepository(db),
			Categories:  category.NewMongoRepository(db),
			mongoClient: client,
		}, nil
	case "mysql":
		db, err := database.Open(cfg.MySQL)
		if err != nil {
			return nil, fmt.Errorf("database.Open() > %w", err)
		}
		return &Stores{
			Records:    record.NewDBRepository(db),
			Folders:    folder.NewDBRepository(db),
			Categories: category.NewDBRepository(db),
			SQL:        db,
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Ping reports whether the database answers.
func (s *Stores) Ping(ctx context.Context) error {
	if s.mongoClient != nil {
		return s.mongoClient.Ping(ctx, readpref.Primary())
	}
	if s.SQL != nil {
		return s.SQL.PingContext(ctx)
	}
	return nil
}

// Close releases the database connections.
func (s *Stores) Close(ctx context.Context) error {
	if s.mongoClient != nil {
		if err := s.mongoClient.Disconnect(ctx); err != nil {
			return fmt.Errorf("mongoClient.Disconnect() > %w", err)
		}
	}
	if s.SQL != nil {
		if err := s.SQL.Close(); err != nil {
			return fmt.Errorf("SQL.Close() > %w", err)
		}
	}
	return nil
}
