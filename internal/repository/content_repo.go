package repository

import (
	"context"
	"errors"
	"fmt"

	"cineverse/internal/db"
	"cineverse/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrUnsupportedFilter = errors.New("unsupported filter field")

// FieldFilter is a single equality predicate, field == value.
type FieldFilter struct {
	Field string
	Value any
}

// filterable maps the API field names onto document keys.
var filterable = map[string]string{
	"type":  "type",
	"year":  "year",
	"genre": "genre",
	"tags":  "tags",
	"title": "title",
}

func (f *FieldFilter) toBSON() (bson.M, error) {
	if f == nil {
		return bson.M{}, nil
	}
	key, ok := filterable[f.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFilter, f.Field)
	}
	// genre and tags are arrays; equality on an array field matches membership
	return bson.M{key: f.Value}, nil
}

type ContentRepository struct {
	col *mongo.Collection
}

func NewContentRepository(d *mongo.Database) *ContentRepository {
	return &ContentRepository{col: d.Collection(db.ContentCollection)}
}

// List returns the matching documents in store order; callers sort.
func (r *ContentRepository) List(ctx context.Context, filter *FieldFilter) ([]models.ContentItem, error) {
	q, err := filter.toBSON()
	if err != nil {
		return nil, err
	}

	cur, err := r.col.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ContentItem{}
	for cur.Next(ctx) {
		var c models.ContentItem
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, cur.Err()
}

func (r *ContentRepository) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	var c models.ContentItem
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetMany loads the given ids; unknown ids are skipped.
func (r *ContentRepository) GetMany(ctx context.Context, ids []string) ([]models.ContentItem, error) {
	if len(ids) == 0 {
		return []models.ContentItem{}, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ContentItem{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert assigns a new id when the item has none.
func (r *ContentRepository) Insert(ctx context.Context, c *models.ContentItem) error {
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

// Replace overwrites the whole document; mongo.ErrNoDocuments if it does not exist.
func (r *ContentRepository) Replace(ctx context.Context, c *models.ContentItem) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Subscribe streams fresh snapshots of List(filter) every time the
// collection changes. The caller must Unsubscribe.
func (r *ContentRepository) Subscribe(ctx context.Context, filter *FieldFilter) (*Subscription, error) {
	if _, err := filter.toBSON(); err != nil {
		return nil, err
	}
	load := func(ctx context.Context) ([]models.ContentItem, error) {
		return r.List(ctx, filter)
	}
	watch := func(ctx context.Context) (changeFeed, error) {
		cs, err := r.col.Watch(ctx, mongo.Pipeline{})
		if err != nil {
			return nil, err
		}
		return cs, nil
	}
	return newSubscription(ctx, load, watch), nil
}
