package cache

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	feedKeyPrefix = "feed:"
	userKeyPrefix = "user:%d"
)

const (
	// FeedTTL bounds how stale a cached home feed page may be. Writes never
	// invalidate feed entries; they simply age out.
	FeedTTL = 20 * time.Second
	UserTTL = 5 * time.Minute
)

// FeedKey builds the cache key for one home feed page from its query
// parameters. The key is normalized (params sorted, defaults dropped) so that
// equivalent requests share an entry.
func FeedKey(params url.Values) string {
	parts := make([]string, 0, len(params))
	for name, values := range params {
		for _, v := range values {
			if v == "" {
				continue
			}
			parts = append(parts, name+"="+v)
		}
	}
	sort.Strings(parts)
	return feedKeyPrefix + strings.Join(parts, "&")
}

// UserKey builds the cache key for a user profile.
func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

// Invalidate removes a single key. No-op without a client.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser removes a cached user profile.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// FlushFeed removes every cached feed page. This is the only invalidation the
// feed cache supports: entries otherwise live out their TTL.
func FlushFeed(ctx context.Context) error {
	if client == nil {
		return nil
	}

	iter := client.Scan(ctx, 0, feedKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}
