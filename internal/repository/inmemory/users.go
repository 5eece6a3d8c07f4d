package inmemory

import (
	"context"
	"time"

	"league-app-go/internal/domain/shared"
	"league-app-go/internal/domain/user"
)

type UserRepository struct {
	*view
}

func (r *UserRepository) UpsertProfile(ctx context.Context, profile *user.Profile) error {
	value := *profile
	return r.write(func(st *state) error {
		now := time.Now().UTC()
		existing, ok := st.profiles[value.UserID]
		if !ok {
			if value.Role == "" {
				value.Role = shared.RoleUser
			}
			value.CreatedAt = now
			value.UpdatedAt = now
			st.profiles[value.UserID] = value
			return nil
		}
		if value.Email != nil {
			existing.Email = value.Email
		}
		if value.AvatarURL != nil {
			existing.AvatarURL = value.AvatarURL
		}
		existing.UpdatedAt = now
		st.profiles[value.UserID] = existing
		return nil
	})
}

func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*user.Profile, error) {
	var (
		profile user.Profile
		ok      bool
	)
	r.read(func(st *state) {
		profile, ok = st.profiles[userID]
	})
	if !ok {
		return nil, user.ErrProfileNotFound
	}
	return &profile, nil
}

func (r *UserRepository) SetRole(ctx context.Context, userID string, role shared.GlobalRole) error {
	return r.write(func(st *state) error {
		profile, ok := st.profiles[userID]
		if !ok {
			return user.ErrProfileNotFound
		}
		profile.Role = role
		profile.UpdatedAt = time.Now().UTC()
		st.profiles[userID] = profile
		return nil
	})
}
