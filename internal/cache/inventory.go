package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	PostKeyPrefix = "post:%d"
	FeedKeyPrefix = "feed:%d:%d:%d"
)

const (
	UserTTL = 5 * time.Minute
	PostTTL = 30 * time.Minute
	FeedTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// FeedKey identifies one page of a user's followed-posts feed.
func FeedKey(userID uint, limit, offset int) string {
	return fmt.Sprintf(FeedKeyPrefix, userID, limit, offset)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	InvalidateUserFeed(ctx, userID)
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateUserFeed drops every cached page of one user's feed.
func InvalidateUserFeed(ctx context.Context, userID uint) {
	scanAndDelete(ctx, fmt.Sprintf("feed:%d:*", userID))
}

// InvalidateFeeds drops every per-user feed key. Feeds are short-lived
// anyway, so a best-effort scan is enough.
func InvalidateFeeds(ctx context.Context) {
	scanAndDelete(ctx, "feed:*")
}

func scanAndDelete(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
