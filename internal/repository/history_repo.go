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

type HistoryRepository struct {
	col *mongo.Collection
}

func NewHistoryRepository(d *mongo.Database) *HistoryRepository {
	return &HistoryRepository{col: d.Collection(db.HistoryCollection)}
}

// Record keeps one event per (user, content), refreshed on every view.
func (r *HistoryRepository) Record(ctx context.Context, userID, contentID string, episodeIndex int) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID, "contentId": contentID},
		bson.M{"$set": bson.M{
			"episodeIndex": episodeIndex,
			"viewedAt":     time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Recent returns up to limit events, most recent first.
func (r *HistoryRepository) Recent(ctx context.Context, userID string, limit int) ([]models.ViewingEvent, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"userId": userID},
		options.Find().
			SetSort(bson.D{{Key: "viewedAt", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ViewingEvent{}
	for cur.Next(ctx) {
		var ev models.ViewingEvent
		if err := cur.Decode(&ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, cur.Err()
}
