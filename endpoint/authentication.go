package endpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/ariebrainware/clinic-admin/config"
	"github.com/ariebrainware/clinic-admin/middleware"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@clinic.test"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type LoginResponse struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Role      string    `json:"role" example:"Admin"`
	UserID    uint      `json:"user_id" example:"1"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login godoc
// @Summary      Operator login
// @Description  Authenticate with email and password and open a dashboard session
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid credentials or locked account"
// @Failure      429 {object} util.APIResponse "Too many attempts"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ctx := loginContext{C: c, DB: db, Email: util.NormalizeEmail(req.Email), CI: clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}}

	user, ok := loadUserForLogin(ctx)
	if !ok {
		return
	}
	if !ensureAccountNotLocked(ctx, &user) {
		return
	}
	if !verifyPasswordOrRespond(ctx, &user, req.Password) {
		return
	}
	finalizeLogin(ctx, &user)
}

type clientInfo struct {
	IP    string
	Agent string
}

type loginContext struct {
	C     *gin.Context
	DB    *gorm.DB
	Email string
	CI    clientInfo
}

func loadUserForLogin(ctx loginContext) (model.User, bool) {
	var user model.User
	err := ctx.DB.WithContext(ctx.C.Request.Context()).Preload("Role").Where("email = ?", ctx.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "user not found")
		util.CallUserError(ctx.C, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("user not found")})
		return model.User{}, false
	}
	if err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "database error")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Database error", Err: err})
		return model.User{}, false
	}
	return user, true
}

func ensureAccountNotLocked(ctx loginContext, user *model.User) bool {
	if !user.IsLocked(time.Now()) {
		return true
	}
	expiry := time.Unix(*user.LockedUntil, 0)
	util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "account locked")
	util.CallUserError(ctx.C, util.APIErrorParams{
		Msg: fmt.Sprintf("Account is locked until %s due to multiple failed login attempts", expiry.Format(time.RFC3339)),
		Err: fmt.Errorf("account locked"),
	})
	return false
}

func verifyPasswordOrRespond(ctx loginContext, user *model.User, plain string) bool {
	match, err := util.VerifyPassword(plain, user.Password, user.PasswordSalt)
	if err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "password verification error")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Password verification failed", Err: err})
		return false
	}
	if match {
		return true
	}

	if user.RegisterFailure(time.Now()) {
		util.LogAccountLocked(user.ID, user.Email, ctx.CI.IP, "too many failed login attempts")
	}
	if err := ctx.DB.Model(user).Select("failed_attempts", "locked_until").Updates(user).Error; err != nil {
		util.LogLoginFailure(user.Email, ctx.CI.IP, ctx.CI.Agent, "failed to update failed attempts")
	}
	util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "invalid password")
	util.CallUserError(ctx.C, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid password")})
	return false
}

func finalizeLogin(ctx loginContext, user *model.User) {
	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		user.ResetFailures()
		if err := ctx.DB.Model(user).Select("failed_attempts", "locked_until").Updates(user).Error; err != nil {
			util.LogSecurityEvent(util.SecurityEvent{EventType: util.EventSuspiciousActivity, UserID: fmt.Sprintf("%d", user.ID), Email: user.Email, IP: ctx.CI.IP, Message: fmt.Sprintf("Failed to reset failed attempts: %v", err)})
		}
	}

	expires := time.Now().Add(config.LoadConfig().SessionTTL)
	token, err := createJWTToken(*user, expires)
	if err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "token generation failed")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	session := model.Session{
		UserID:       user.ID,
		RoleID:       user.RoleID,
		SessionToken: token,
		ExpiresAt:    expires,
		ClientIP:     ctx.CI.IP,
		Browser:      ctx.CI.Agent,
	}
	if err := ctx.DB.Create(&session).Error; err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "session creation failed")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return
	}

	// best-effort: the guard falls back to the database
	if err := util.CacheSession(ctx.C.Request.Context(), token, user.ID, user.RoleID, time.Until(expires)); err != nil {
		logger := util.Logger()
		logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to cache session")
	}

	util.LogLoginSuccess(user.ID, user.Email, ctx.CI.IP, ctx.CI.Agent)
	util.CallSuccessOK(ctx.C, util.APISuccessParams{
		Msg:  "Login successful",
		Data: LoginResponse{Token: token, Role: user.Role.Name, UserID: user.ID, ExpiresAt: expires},
	})
}

func createJWTToken(user model.User, expires time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":   uuid.NewString(),
		"sub":   fmt.Sprintf("%d", user.ID),
		"email": user.Email,
		"role":  user.RoleID,
		"exp":   expires.Unix(),
	})
	return token.SignedString(util.GetJWTSecretByte())
}

// Logout godoc
// @Summary      Operator logout
// @Description  End the current dashboard session
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse "Logout successful"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /logout [delete]
func Logout(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Session token not provided", Err: fmt.Errorf("no session in context")})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if err := db.Where("session_token = ?", session.SessionToken).Delete(&model.Session{}).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete session", Err: err})
		return
	}
	if err := util.DropCachedSession(c.Request.Context(), session.UserID, session.SessionToken); err != nil {
		logger := util.Logger()
		logger.Warn().Err(err).Uint("user_id", session.UserID).Msg("failed to drop cached session")
	}

	var user model.User
	if err := db.Select("id", "email").First(&user, session.UserID).Error; err == nil {
		util.LogLogout(user.ID, user.Email, c.ClientIP(), c.Request.UserAgent())
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Logout successful",
		Data: map[string]string{"redirect": middleware.LoginPath},
	})
}
