package endpoint

import (
	"fmt"
	"time"

	"github.com/ariebrainware/clinic-admin/middleware"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
)

// ValidateToken godoc
// @Summary      Validate session token
// @Description  Report whether the presented session token is a live session
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse "Valid session token"
// @Failure      401 {object} util.APIResponse "Invalid or expired session token"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /token/validate [get]
func ValidateToken(c *gin.Context) {
	sessionToken := middleware.SessionToken(c)
	if sessionToken == "" {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Session token not provided", Err: fmt.Errorf("Invalid session token")})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var result struct {
		model.Session
		Role string `json:"role"`
	}
	err := db.Table("sessions").
		Select("sessions.*, roles.name as role").
		Joins("JOIN users ON sessions.user_id = users.id").
		Joins("LEFT JOIN roles ON users.role_id = roles.id").
		Where("sessions.session_token = ? AND sessions.expires_at > ? AND sessions.deleted_at IS NULL AND users.deleted_at IS NULL", sessionToken, time.Now()).
		Scan(&result).Error
	if err != nil || result.UserID == 0 {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid or expired session token", Err: fmt.Errorf("Session not found")})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Valid session token",
		Data: result,
	})
}
