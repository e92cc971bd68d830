package repository

import (
	"context"
	"time"

	"cineverse/internal/db"
	"cineverse/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WatchlistRepository struct {
	col *mongo.Collection
}

func NewWatchlistRepository(d *mongo.Database) *WatchlistRepository {
	return &WatchlistRepository{col: d.Collection(db.WatchlistCollection)}
}

// Add is idempotent: adding the same item twice keeps the first addedAt.
func (r *WatchlistRepository) Add(ctx context.Context, userID, contentID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID, "contentId": contentID},
		bson.M{"$setOnInsert": bson.M{"addedAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Remove returns mongo.ErrNoDocuments when the item was not on the list.
func (r *WatchlistRepository) Remove(ctx context.Context, userID, contentID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"userId": userID, "contentId": contentID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByUser returns entries newest first.
func (r *WatchlistRepository) ListByUser(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "addedAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.WatchlistEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
