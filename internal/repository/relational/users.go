package relational

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"league-app-go/internal/domain/shared"
	"league-app-go/internal/domain/user"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) UpsertProfile(ctx context.Context, profile *user.Profile) error {
	if profile.Role == "" {
		profile.Role = shared.RoleUser
	}

	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if profile.Email != nil {
		updates["email"] = profile.Email
	}
	if profile.AvatarURL != nil {
		updates["avatar_url"] = profile.AvatarURL
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(updates),
		}).
		Create(profile).Error
}

func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*user.Profile, error) {
	var profile user.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *UserRepository) SetRole(ctx context.Context, userID string, role shared.GlobalRole) error {
	result := r.db.WithContext(ctx).
		Model(&user.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrProfileNotFound
	}
	return nil
}
