package endpoint

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ariebrainware/clinic-admin/backend"
	"github.com/ariebrainware/clinic-admin/middleware"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Message answered for transport failures towards the clinic backend.
const noResponseMsg = "No response received from server."

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

// confirmedOrRespond guards destructive routes: the caller must pass ?confirm=true.
func confirmedOrRespond(c *gin.Context) bool {
	if ok, _ := strconv.ParseBool(c.Query("confirm")); ok {
		return true
	}
	util.CallUserError(c, util.APIErrorParams{
		Msg: "Confirmation required",
		Err: errors.New("pass confirm=true to delete"),
	})
	return false
}

// paramOrRespond returns a non-empty path parameter.
func paramOrRespond(c *gin.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: fmt.Sprintf("%s is required", name), Err: fmt.Errorf("missing %s", name)})
		return "", false
	}
	return v, true
}

// intParamOrRespond returns a numeric path parameter.
func intParamOrRespond(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: fmt.Sprintf("Invalid %s", name), Err: fmt.Errorf("%s must be a positive integer", name)})
		return 0, false
	}
	return v, true
}

// respondBackendError maps a clinic backend failure onto the response envelope.
func respondBackendError(c *gin.Context, action string, err error) {
	logger := util.Logger()
	logger.Warn().Err(err).
		Str("action", action).
		Str("request_id", middleware.GetRequestID(c)).
		Msg("backend call failed")

	wrapped := fmt.Errorf("%s: %w", action, err)
	var apiErr *backend.APIError
	switch {
	case backend.IsNotFound(err):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: fmt.Sprintf("%s: not found", action), Err: wrapped})
	case errors.As(err, &apiErr):
		util.CallBadGateway(c, util.APIErrorParams{Msg: fmt.Sprintf("Server error: %s", apiErr.Error()), Err: wrapped})
	case errors.Is(err, backend.ErrNoResponse), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		util.CallBadGateway(c, util.APIErrorParams{Msg: noResponseMsg, Err: wrapped})
	default:
		util.CallServerError(c, util.APIErrorParams{Msg: action, Err: wrapped})
	}
}
