package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"league-app-go/internal/domain/shared"
	"league-app-go/internal/domain/user"
)

type UserRepository struct {
	db *driver.Database
}

func (r *UserRepository) UpsertProfile(ctx context.Context, profile *user.Profile) error {
	now := time.Now().UTC()
	role := profile.Role
	if role == "" {
		role = shared.RoleUser
	}

	set := bson.M{"updated_at": now}
	if profile.Email != nil {
		set["email"] = *profile.Email
	}
	if profile.AvatarURL != nil {
		set["avatar_url"] = *profile.AvatarURL
	}

	_, err := r.db.Collection(collProfiles).UpdateOne(ctx,
		bson.M{"_id": profile.UserID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"role": role, "created_at": now},
		},
		options.Update().SetUpsert(true))
	return err
}

func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*user.Profile, error) {
	return findByID[user.Profile](ctx, r.db.Collection(collProfiles), userID, user.ErrProfileNotFound)
}

func (r *UserRepository) SetRole(ctx context.Context, userID string, role shared.GlobalRole) error {
	result, err := r.db.Collection(collProfiles).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return user.ErrProfileNotFound
	}
	return nil
}
