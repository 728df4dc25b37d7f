package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DBKey      = "db"
	UserIDKey  = "user_id"
	RoleIDKey  = "role_id"
	SessionKey = "session"

	// SessionHeader carries the token issued by POST /login.
	SessionHeader = "session-token"
	// SessionCookie is accepted when the header is absent.
	SessionCookie = "session_token"
	// LoginPath is where unauthenticated callers are sent.
	LoginPath = "/login"
)

// CORSMiddleware configures CORS for the dashboard front end. "*" in origins allows any origin.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", SessionHeader, RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(origins) == 0 || util.Contains("*", origins) {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// DatabaseMiddleware injects db into every request context.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DBKey, db)
		c.Next()
	}
}

// GetDB returns the database set by DatabaseMiddleware, or nil.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(DBKey)
	if !ok {
		return nil
	}
	db, _ := v.(*gorm.DB)
	return db
}

// SessionToken returns the token presented by the caller, header first then cookie.
func SessionToken(c *gin.Context) string {
	if tok := strings.TrimSpace(c.GetHeader(SessionHeader)); tok != "" {
		return tok
	}
	if tok, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(tok)
	}
	return ""
}

// ValidateLoginToken is the route guard. It resolves the presented session token through
// Redis, then the database, and stores user id, role id and the session in the context.
// Unknown or expired tokens are sent to the login view.
func ValidateLoginToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			rejectUnauthenticated(c, "missing session token")
			return
		}

		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{
				Msg: "Database unavailable",
				Err: errors.New("database not found in context"),
			})
			c.Abort()
			return
		}

		if uid, rid, err := util.LookupCachedSession(c.Request.Context(), token); err == nil && uid != 0 {
			setSession(c, &model.Session{UserID: uid, RoleID: rid, SessionToken: token})
			c.Next()
			return
		}

		var session model.Session
		err := db.WithContext(c.Request.Context()).
			Where("session_token = ?", token).
			First(&session).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logger := util.Logger()
				logger.Error().Err(err).Msg("session lookup failed")
			}
			rejectUnauthenticated(c, "invalid session token")
			return
		}
		if session.Expired(time.Now()) {
			rejectUnauthenticated(c, "session expired")
			return
		}
		if session.RoleID == 0 {
			var user model.User
			if err := db.WithContext(c.Request.Context()).Select("role_id").First(&user, session.UserID).Error; err == nil {
				session.RoleID = user.RoleID
			}
		}

		setSession(c, &session)
		c.Next()
	}
}

func setSession(c *gin.Context, s *model.Session) {
	c.Set(UserIDKey, s.UserID)
	c.Set(RoleIDKey, s.RoleID)
	c.Set(SessionKey, s)
}

// rejectUnauthenticated answers 302 to the login view for browsers and 401 for API clients.
func rejectUnauthenticated(c *gin.Context, reason string) {
	util.LogUnauthorizedAccess(c.ClientIP(), c.Request.URL.Path, reason)
	if prefersHTML(c.GetHeader("Accept")) {
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
		return
	}
	util.CallUserNotAuthorized(c, util.APIErrorParams{
		Msg: "Please log in to continue",
		Err: errors.New(reason),
	})
	c.Abort()
}

// prefersHTML reports whether text/html is listed before any JSON type in an Accept header.
func prefersHTML(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mt := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch mt {
		case "text/html", "application/xhtml+xml":
			return true
		case "application/json", "*/*":
			return false
		}
	}
	return false
}

// GetUserID returns the authenticated user id.
func GetUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// GetRoleID returns the authenticated user's role id.
func GetRoleID(c *gin.Context) (uint32, bool) {
	v, ok := c.Get(RoleIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint32)
	return id, ok
}

// CurrentSession returns the session resolved by ValidateLoginToken.
func CurrentSession(c *gin.Context) (*model.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*model.Session)
	return s, ok && s != nil
}
