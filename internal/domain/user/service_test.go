package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-app-go/internal/domain/shared"
	"league-app-go/internal/domain/user"
	"league-app-go/internal/repository/inmemory"
)

func TestEnsureProfileDefaultsToUserRole(t *testing.T) {
	svc := user.NewService(inmemory.NewStore().Users())

	profile, err := svc.EnsureProfile(context.Background(), "u1", "u1@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.UserID)
	assert.Equal(t, shared.RoleUser, profile.Role)
	require.NotNil(t, profile.Email)
	assert.Equal(t, "u1@example.com", *profile.Email)
	assert.Nil(t, profile.AvatarURL)

	_, err = svc.EnsureProfile(context.Background(), "", "", "")
	assert.ErrorIs(t, err, user.ErrUserIDRequired)
}

func TestEnsureProfileNeverDowngradesRole(t *testing.T) {
	ctx := context.Background()
	svc := user.NewService(inmemory.NewStore().Users())

	_, err := svc.SetRole(ctx, "root", shared.RoleAdmin)
	require.NoError(t, err)

	profile, err := svc.EnsureProfile(ctx, "root", "root@example.com", "https://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, profile.Role)
	require.NotNil(t, profile.AvatarURL)
}

func TestSetRoleValidatesAndInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	cache := inmemory.NewProfileCache()
	svc := user.NewService(inmemory.NewStore().Users(), user.WithCache(cache, time.Minute))

	profile, err := svc.EnsureProfile(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleUser, profile.Role)

	_, err = svc.SetRole(ctx, "u1", shared.GlobalRole("owner"))
	assert.ErrorIs(t, err, user.ErrInvalidRole)
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	profile, err = svc.SetRole(ctx, "u1", shared.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, profile.Role)

	profile, err = svc.EnsureProfile(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, profile.Role, "a role change must not be hidden by a cached profile")
}

func TestGetProfileNotFound(t *testing.T) {
	svc := user.NewService(inmemory.NewStore().Users())

	_, err := svc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, user.ErrProfileNotFound)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProfileCacheExpires(t *testing.T) {
	cache := inmemory.NewProfileCache()
	cache.SetByUserID("u1", &user.Profile{UserID: "u1", Role: shared.RoleAdmin}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := cache.GetByUserID("u1")
	assert.False(t, ok)

	cache.SetByUserID("u1", &user.Profile{UserID: "u1", Role: shared.RoleAdmin}, time.Minute)
	cached, ok := cache.GetByUserID("u1")
	require.True(t, ok)
	assert.Equal(t, shared.RoleAdmin, cached.Role)
}

func TestUncachedRoleChangesAreSeenAtOnce(t *testing.T) {
	ctx := context.Background()
	repo := inmemory.NewStore().Users()
	replicaA := user.NewService(repo, user.WithCache(inmemory.NewProfileCache(), 0))
	replicaB := user.NewService(repo)

	_, err := replicaB.SetRole(ctx, "u1", shared.RoleAdmin)
	require.NoError(t, err)
	profile, err := replicaA.EnsureProfile(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, profile.Role)

	_, err = replicaB.SetRole(ctx, "u1", shared.RoleUser)
	require.NoError(t, err)
	profile, err = replicaA.EnsureProfile(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleUser, profile.Role, "a revoked admin loses the role on every replica")
}
