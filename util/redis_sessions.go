package util

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ariebrainware/clinic-admin/config"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotCached is returned by LookupCachedSession when Redis has no entry for the token.
var ErrSessionNotCached = errors.New("session not cached")

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func userSetKey(userID uint) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

// CacheSession stores session:<token> -> "<userID>:<roleID>" with the session TTL and records the
// token in the per-user set. It is a no-op without Redis.
func CacheSession(ctx context.Context, token string, userID uint, roleID uint32, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	val := fmt.Sprintf("%d:%d", userID, roleID)
	if err := rdb.Set(ctx, sessionKey(token), val, ttl).Err(); err != nil {
		return fmt.Errorf("cache session: %w", err)
	}
	return AddSessionToUserSet(ctx, userID, token)
}

// LookupCachedSession resolves a token from Redis. Without Redis it reports ErrSessionNotCached.
func LookupCachedSession(ctx context.Context, token string) (uint, uint32, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return 0, 0, ErrSessionNotCached
	}
	val, err := rdb.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, 0, ErrSessionNotCached
	}
	if err != nil {
		return 0, 0, err
	}
	return parseSessionValue(val)
}

func parseSessionValue(val string) (uint, uint32, error) {
	parts := strings.SplitN(val, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed session value %q", val)
	}
	uid, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed session user id: %w", err)
	}
	rid, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed session role id: %w", err)
	}
	return uint(uid), uint32(rid), nil
}

// AddSessionToUserSet adds the session token to the per-user Redis set.
// The set has no TTL and persists until explicitly cleaned up via
// RemoveSessionTokenFromUserSet or InvalidateUserSessions.
func AddSessionToUserSet(ctx context.Context, userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.SAdd(ctx, userSetKey(userID), token).Err(); err != nil {
		return err
	}
	return rdb.Persist(ctx, userSetKey(userID)).Err()
}

// DropCachedSession deletes session:<token> and removes the token from the per-user set.
func DropCachedSession(ctx context.Context, userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return err
	}
	return RemoveSessionTokenFromUserSet(ctx, userID, token)
}

// removeTokenScript drops a token from the user set and deletes the set once empty.
const removeTokenScript = `
	local removed = redis.call('SREM', KEYS[1], ARGV[1])
	if removed > 0 then
		local count = redis.call('SCARD', KEYS[1])
		if count == 0 then
			redis.call('DEL', KEYS[1])
		end
	end
	return removed
`

// RemoveSessionTokenFromUserSet removes a single session token from the per-user set.
// If the set becomes empty after removal, it is deleted.
func RemoveSessionTokenFromUserSet(ctx context.Context, userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	return rdb.Eval(ctx, removeTokenScript, []string{userSetKey(userID)}, token).Err()
}

// InvalidateUserSessions deletes all session:<token> keys for the given user and
// removes the per-user set.
func InvalidateUserSessions(ctx context.Context, userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	members, err := rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	for _, tok := range members {
		_ = rdb.Del(ctx, sessionKey(tok)).Err()
	}
	return rdb.Del(ctx, userSetKey(userID)).Err()
}
