package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	TeamsKey           = "teams:all"
	TeamPostsKeyPrefix = "team:%d:posts:first"
	PostStatusesKey    = "post_statuses"
)

const (
	UserTTL         = time.Minute
	TeamsTTL        = 30 * time.Minute
	TeamPostsTTL    = 30 * time.Second
	PostStatusesTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// TeamPostsKey caches the anonymous, default-sorted first page of a team board.
func TeamPostsKey(teamID uint, pageSize int) string {
	return fmt.Sprintf(TeamPostsKeyPrefix, teamID) + fmt.Sprintf(":%d", pageSize)
}

// Invalidate deletes keys, ignoring a missing client.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidatePattern deletes every key matching pattern.
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	Invalidate(ctx, keys...)
}

// InvalidateTeamPosts drops every cached first page of a team board.
func InvalidateTeamPosts(ctx context.Context, teamID uint) {
	InvalidatePattern(ctx, fmt.Sprintf(TeamPostsKeyPrefix, teamID)+":*")
}
