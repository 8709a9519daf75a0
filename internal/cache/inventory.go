package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix    = "user:%d"
	postKeyPrefix    = "post:%d"
	projectKeyPrefix = "project:%d"
)

const (
	// UserTTL bounds staleness of cached user records.
	UserTTL = 5 * time.Minute
	// PostTTL bounds staleness of cached post records.
	PostTTL = 10 * time.Minute
	// ProjectTTL bounds staleness of cached project records.
	ProjectTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

func ProjectKey(projectID uint) string {
	return fmt.Sprintf(projectKeyPrefix, projectID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client == nil {
		return
	}
	for _, key := range keys {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateProject(ctx context.Context, projectID uint) {
	Invalidate(ctx, ProjectKey(projectID))
}
