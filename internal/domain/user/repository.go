package user

import (
	"context"

	"league-app-go/internal/domain/shared"
)

type Repository interface {
	// UpsertProfile creates the profile or refreshes its contact fields. It never changes Role.
	UpsertProfile(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	SetRole(ctx context.Context, userID string, role shared.GlobalRole) error
}
