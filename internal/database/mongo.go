package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/at-ishikawa/notekeeper/internal/config"
)

// Collection names shared by the Mongo repositories.
const (
	RecordsCollection    = "records"
	FoldersCollection    = "folders"
	CategoriesCollection = "categories"
)

// OpenMongo connects to MongoDB and verifies the connection with a ping.
func OpenMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	opts := options.Client().ApplyURI(cfg.URI)
	if timeout > 0 {
		opts.SetTimeout(timeout).SetConnectTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo.Connect() > %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("client.Ping() > %w", err)
	}
	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		RecordsCollection: {
			{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "dateInfo.year", Value: 1}, {Key: "dateInfo.month", Value: 1}, {Key: "dateInfo.day", Value: 1}}},
			{Keys: bson.D{{Key: "dateInfo.year", Value: 1}, {Key: "dateInfo.week", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		FoldersCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CategoriesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for _, name := range []string{RecordsCollection, FoldersCollection, CategoriesCollection} {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes[name]); err != nil {
			return fmt.Errorf("Indexes().CreateMany(%s) > %w", name, err)
		}
	}
	return nil
}

// IsNotFound reports whether err means a single-document lookup matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
