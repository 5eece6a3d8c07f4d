package user

import (
	"context"
	"strings"
	"time"

	"league-app-go/internal/domain/shared"
)

type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
}

type Option func(*Service)

// WithCache caches profiles for ttl. A zero ttl disables caching.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if cache != nil && ttl > 0 {
			s.cache = cache
			s.cacheTTL = ttl
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, cache: noopCache{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureProfile upserts the caller's profile and returns it with its stored role.
func (s *Service) EnsureProfile(ctx context.Context, userID, email, avatarURL string) (*Profile, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if cached, ok := s.cache.GetByUserID(userID); ok {
		return cached, nil
	}

	profile := Profile{UserID: userID, Role: shared.RoleUser}
	if email != "" {
		profile.Email = &email
	}
	if avatarURL != "" {
		profile.AvatarURL = &avatarURL
	}

	if err := s.repo.UpsertProfile(ctx, &profile); err != nil {
		return nil, err
	}
	stored, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.SetByUserID(userID, stored, s.cacheTTL)
	return stored, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if cached, ok := s.cache.GetByUserID(userID); ok {
		return cached, nil
	}
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.SetByUserID(userID, profile, s.cacheTTL)
	return profile, nil
}

// SetRole changes the global role of userID, creating the profile if needed.
func (s *Service) SetRole(ctx context.Context, userID string, role shared.GlobalRole) (*Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if role != shared.RoleUser && role != shared.RoleAdmin {
		return nil, ErrInvalidRole
	}
	if err := s.repo.UpsertProfile(ctx, &Profile{UserID: userID, Role: shared.RoleUser}); err != nil {
		return nil, err
	}
	if err := s.repo.SetRole(ctx, userID, role); err != nil {
		return nil, err
	}
	s.cache.DeleteByUserID(userID)
	return s.repo.GetProfile(ctx, userID)
}
