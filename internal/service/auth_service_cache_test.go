package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklane/internal/cache"
)

func withServiceRedis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})
}

func TestAuthService_EditProfile_WithWarmCacheKeepsLoginWorking(t *testing.T) {
	withServiceRedis(t)
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, workerSignup("cached_edit"))
	require.NoError(t, err)

	// the auth gate's lookup populates the user cache, so the edit below
	// reads the cached copy rather than the database row
	_, err = svc.ValidateSession(ctx, token)
	require.NoError(t, err)

	about := "freshly edited"
	updated, err := svc.EditProfile(ctx, EditProfileInput{UserID: user.ID, About: &about})
	require.NoError(t, err)
	assert.Equal(t, "freshly edited", updated.About)

	// the stored credential must survive the round trip through the cache
	_, _, err = svc.Login(ctx, LoginInput{Username: "cached_edit", Password: "password123"})
	require.NoError(t, err)
}
