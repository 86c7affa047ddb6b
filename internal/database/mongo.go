package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/config"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names of the document store
const (
	CollectionUsers       = "users"
	CollectionMeals       = "meals"
	CollectionUserMeals   = "userMeals"
	CollectionUserMetrics = "userMetrics"
	CollectionUserStreaks = "userStreaks"
	CollectionCachedFoods = "cachedFoods"
)

// NewMongoDB connects, pings and ensures indexes. The database name comes from
// cfg.Database or else the URI path.
func NewMongoDB(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	name := cfg.Database
	if name == "" {
		name = databaseFromURI(cfg.URI)
	}
	db := client.Database(name)

	if err := ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	logger.Info("MongoDB connection established", "database", name)
	return client, db, nil
}

func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "nutrition"
	}
	return u.Path[1:]
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionMeals: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "sourceDetails.fdcId", Value: 1}}},
			{Keys: bson.D{{Key: "sourceDetails.legacyId", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		CollectionUserMeals: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
		},
		CollectionUserMetrics: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}, {Key: "date", Value: -1}}},
		},
		CollectionUserStreaks: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionCachedFoods: {
			{Keys: bson.D{{Key: "foodId", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
