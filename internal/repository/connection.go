package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OpenMongoRepository connects to uri and returns a repository backed by the
// session_state collection of database, with its expiry index in place.
func OpenMongoRepository(ctx context.Context, uri, database string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetAppName("storefront").
		SetConnectTimeout(10*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(50))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	repo := NewMongoRepository(client.Database(database))
	if err := client.Ping(ctx, nil); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	if err := repo.CreateIndexes(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}
