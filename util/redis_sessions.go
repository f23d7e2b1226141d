package util

import (
	"context"
	"fmt"
	"time"

	"github.com/dentalworks/labtrack/config"
)

// AddSessionToUserSet adds the session token to the per-user Redis set. The
// set persists until explicitly cleaned up via RemoveSessionTokenFromUserSet
// or InvalidateUserSessions. Best-effort: a nil client is not an error.
func AddSessionToUserSet(userID uint, token string, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	key := fmt.Sprintf("user_sessions:%d", userID)
	if err := rdb.SAdd(ctx, key, token).Err(); err != nil {
		return fmt.Errorf("failed to add session to user set: %w", err)
	}
	if ttl > 0 {
		_ = rdb.Expire(ctx, key, ttl).Err()
	}
	return nil
}

// RemoveSessionTokenFromUserSet removes one session token from the per-user set.
func RemoveSessionTokenFromUserSet(userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	key := fmt.Sprintf("user_sessions:%d", userID)
	if err := rdb.SRem(context.Background(), key, token).Err(); err != nil {
		return fmt.Errorf("failed to remove session from user set: %w", err)
	}
	return nil
}

// InvalidateUserSessions deletes every cached session entry for a user,
// forcing subsequent requests back to the database session table.
func InvalidateUserSessions(userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	key := fmt.Sprintf("user_sessions:%d", userID)

	tokens, err := rdb.SMembers(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}
	for _, token := range tokens {
		_ = rdb.Del(ctx, fmt.Sprintf("session:%s", token)).Err()
	}
	if err := rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete user session set: %w", err)
	}
	return nil
}
