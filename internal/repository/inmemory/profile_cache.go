package inmemory

import (
	"sync"
	"time"

	"league-app-go/internal/domain/user"
)

type ProfileCache struct {
	mu    sync.RWMutex
	items map[string]profileItem
}

type profileItem struct {
	value     user.Profile
	expiresAt time.Time
}

func NewProfileCache() *ProfileCache {
	return &ProfileCache{
		items: make(map[string]profileItem),
	}
}

func (c *ProfileCache) GetByUserID(userID string) (*user.Profile, bool) {
	now := time.Now()

	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[userID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := item.value
	return &value, true
}

func (c *ProfileCache) SetByUserID(userID string, profile *user.Profile, ttl time.Duration) {
	if profile == nil || ttl <= 0 {
		c.DeleteByUserID(userID)
		return
	}

	c.mu.Lock()
	c.items[userID] = profileItem{
		value:     *profile,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *ProfileCache) DeleteByUserID(userID string) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}
