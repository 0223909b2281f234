package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	PostKeyPrefix         = "post:%d"
	ApprovedPostsPrefix   = "posts:approved:p%d:l%d"
	CategoryListKeyPrefix = "categories:u%d:p%d:l%d"
)

const (
	UserTTL         = 5 * time.Minute
	PostTTL         = 10 * time.Minute
	PostListTTL     = 1 * time.Minute
	CategoryListTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// ApprovedPostsKey identifies one page of the public approved posts listing.
func ApprovedPostsKey(page, limit int) string {
	return fmt.Sprintf(ApprovedPostsPrefix, page, limit)
}

// CategoryListKey identifies one page of a creator's category listing.
func CategoryListKey(userID uint, page, limit int) string {
	return fmt.Sprintf(CategoryListKeyPrefix, userID, page, limit)
}

// GetJSON loads and unmarshals a cached value into dest. Returns false on
// miss, unmarshal failure, or when caching is disabled.
func GetJSON(ctx context.Context, key string, dest any) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

// SetJSON marshals and stores a value with the given TTL. Failures are
// swallowed; the cache is best effort.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, raw, ttl)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateApprovedPosts drops every cached page of the approved listing.
// Pages are keyed by page and limit so a SCAN is required.
func InvalidateApprovedPosts(ctx context.Context) {
	invalidatePattern(ctx, "posts:approved:*")
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	InvalidateApprovedPosts(ctx)
}

// InvalidateCategories drops every cached page of one creator's category
// listing.
func InvalidateCategories(ctx context.Context, userID uint) {
	invalidatePattern(ctx, fmt.Sprintf("categories:u%d:*", userID))
}

func invalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}
