package user

import "time"

// Cache holds profiles by user id. Roles are read on every authenticated
// request, so a short TTL keeps the store out of the hot path.
type Cache interface {
	GetByUserID(userID string) (*Profile, bool)
	SetByUserID(userID string, profile *Profile, ttl time.Duration)
	DeleteByUserID(userID string)
}

type noopCache struct{}

func (noopCache) GetByUserID(string) (*Profile, bool) {
	return nil, false
}

func (noopCache) SetByUserID(string, *Profile, time.Duration) {}

func (noopCache) DeleteByUserID(string) {}
