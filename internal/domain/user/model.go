package user

import (
	"time"

	"league-app-go/internal/domain/shared"
)

type Profile struct {
	UserID    string            `gorm:"type:text;primaryKey" bson:"_id"`
	Email     *string           `gorm:"type:text" bson:"email,omitempty"`
	AvatarURL *string           `gorm:"type:text" bson:"avatar_url,omitempty"`
	Role      shared.GlobalRole `gorm:"type:varchar(16);not null;default:user" bson:"role"`
	CreatedAt time.Time         `gorm:"autoCreateTime" bson:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" bson:"updated_at"`
}

func (Profile) TableName() string {
	return "user_profiles"
}
