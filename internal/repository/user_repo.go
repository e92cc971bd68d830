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

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(d *mongo.Database) *UserRepository {
	return &UserRepository{col: d.Collection(db.UsersCollection)}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var u models.UserProfile
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var u models.UserProfile
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Insert(ctx context.Context, u *models.UserProfile) error {
	_, err := r.col.InsertOne(ctx, u)
	return err
}

// profileSyncUpdate merges the identity fields and only sets the role when
// the document is created, so an existing admin stays admin.
func profileSyncUpdate(p models.ProfileSync, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"displayName": p.DisplayName,
			"email":       p.Email,
			"photoURL":    p.PhotoURL,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"role":      models.RoleUser,
			"createdAt": now,
		},
	}
}

// SyncProfile upserts the profile from a sign-in and returns the stored document.
func (r *UserRepository) SyncProfile(ctx context.Context, p models.ProfileSync) (*models.UserProfile, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var u models.UserProfile
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": p.ID}, profileSyncUpdate(p, time.Now().UTC()), opts).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetRole changes a user's role; mongo.ErrNoDocuments if the user does not exist.
func (r *UserRepository) SetRole(ctx context.Context, id, role string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
