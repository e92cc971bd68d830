package db

import (
	"context"
	"fmt"
	"time"

	"cineverse/internal/config"
	"cineverse/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	ContentCollection   = "content"
	UsersCollection     = "users"
	WatchlistCollection = "watchlist"
	HistoryCollection   = "history"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

func InitMongo(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}

	mongoClient = client
	mongoDB = client.Database(cfg.MongoDB)
	logger.Get().WithField("db", cfg.MongoDB).Info("mongo connected")
	return nil
}

func DB() *mongo.Database {
	return mongoDB
}

func Close(ctx context.Context) error {
	if mongoClient == nil {
		return nil
	}
	return mongoClient.Disconnect(ctx)
}

// EnsureIndexes creates the uniqueness constraints the repositories rely on.
func EnsureIndexes(ctx context.Context, d *mongo.Database) error {
	idx := []struct {
		coll  string
		model mongo.IndexModel
	}{
		{UsersCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		}},
		{WatchlistCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "contentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{HistoryCollection, mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "contentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{ContentCollection, mongo.IndexModel{
			Keys: bson.D{{Key: "type", Value: 1}},
		}},
	}

	for _, i := range idx {
		if _, err := d.Collection(i.coll).Indexes().CreateOne(ctx, i.model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.coll, err)
		}
	}
	return nil
}

// Ping reports whether the primary is reachable.
func Ping(ctx context.Context) error {
	if mongoClient == nil {
		return fmt.Errorf("mongo not initialised")
	}
	return mongoClient.Ping(ctx, nil)
}
