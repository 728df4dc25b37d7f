package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariebrainware/clinic-admin/config"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

const defaultInFlightTTL = 30 * time.Second

// InFlightGuard rejects a write with 409 while an identical write (same session, method and
// path) is still being handled. Redis holds the marker when available, otherwise a process
// local cache does. The marker expires after ttl in case a handler never returns.
type InFlightGuard struct {
	ttl   time.Duration
	local *cache.Cache
}

// NewInFlightGuard builds a guard; ttl <= 0 uses 30s.
func NewInFlightGuard(ttl time.Duration) *InFlightGuard {
	if ttl <= 0 {
		ttl = defaultInFlightTTL
	}
	return &InFlightGuard{ttl: ttl, local: cache.New(ttl, 2*ttl)}
}

// Handler returns the gin middleware. Safe methods pass through untouched.
func (g *InFlightGuard) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		key := g.key(c)
		acquired, err := g.acquire(c.Request.Context(), key)
		if err != nil {
			logger := util.Logger()
			logger.Warn().Err(err).Str("key", key).Msg("in-flight guard unavailable")
			c.Next()
			return
		}
		if !acquired {
			util.CallConflict(c, util.APIErrorParams{
				Msg: "The same request is already being processed",
				Err: errors.New("duplicate submission"),
			})
			c.Abort()
			return
		}
		defer g.release(key)

		c.Next()
	}
}

func (g *InFlightGuard) key(c *gin.Context) string {
	owner := SessionToken(c)
	if s, ok := CurrentSession(c); ok {
		owner = s.SessionToken
	}
	if owner == "" {
		owner = c.ClientIP()
	}
	return fmt.Sprintf("inflight:%s:%s:%s", owner, c.Request.Method, c.Request.URL.Path)
}

func (g *InFlightGuard) acquire(ctx context.Context, key string) (bool, error) {
	if rdb := config.GetRedisClient(); rdb != nil {
		return rdb.SetNX(ctx, key, 1, g.ttl).Result()
	}
	return g.local.Add(key, struct{}{}, g.ttl) == nil, nil
}

// release runs after the handler, on a fresh context so a cancelled request still frees the key.
func (g *InFlightGuard) release(key string) {
	if rdb := config.GetRedisClient(); rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Del(ctx, key).Err(); err != nil {
			logger := util.Logger()
			logger.Warn().Err(err).Str("key", key).Msg("failed to release in-flight marker")
		}
		return
	}
	g.local.Delete(key)
}
