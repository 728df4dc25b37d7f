package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
)

// EndpointCallLogger writes one log line per request. Calls that change state are also
// recorded as ENDPOINT_CALL security events so they land in the SecurityLog table.
func EndpointCallLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		userID, _ := GetUserID(c)

		logger := util.Logger()
		evt := logger.Info()
		if status >= http.StatusInternalServerError {
			evt = logger.Error()
		} else if status >= http.StatusBadRequest {
			evt = logger.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Dur("latency", duration).
			Str("request_id", GetRequestID(c)).
			Uint("user_id", userID).
			Msg("request")

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			return
		}

		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        route,
			"raw_path":    c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"query":       c.Request.URL.RawQuery,
			"request_id":  GetRequestID(c),
		}
		if roleID, ok := GetRoleID(c); ok && roleID != 0 {
			details["role_id"] = roleID
		}

		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventEndpointCall,
			UserID:    fmt.Sprintf("%d", userID),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Route:     c.Request.Method + " " + route,
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details:   details,
		})
	}
}
