package endpoint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FeedbackRequest struct {
	PatientName string  `json:"patient_name" binding:"required" example:"Jane Doe"`
	Email       *string `json:"email" binding:"omitempty,email" example:"jane@example.com"`
	Message     string  `json:"message" binding:"required" example:"Friendly staff"`
	Rating      *int    `json:"rating" binding:"omitempty,min=1,max=5" example:"5"`
}

type ReplyRequest struct {
	Reply string `json:"reply" binding:"required" example:"Thank you for visiting us"`
}

type ReplyResponse struct {
	Feedback model.Feedback `json:"feedback"`
	Emailed  bool           `json:"emailed"`
}

// SubmitFeedback godoc
// @Summary      Leave feedback
// @Description  Public route used by the clinic site
// @Tags         Feedback
// @Accept       json
// @Produce      json
// @Param        request body FeedbackRequest true "Feedback"
// @Success      201 {object} util.APIResponse{data=model.Feedback}
// @Failure      400 {object} util.APIResponse "Invalid payload"
// @Failure      429 {object} util.APIResponse "Too many requests"
// @Router       /feedback [post]
func (p *Pages) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if !bindJSONOrRespond(c, &req, "Name and message are required") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	fb := model.Feedback{
		PatientName: util.NormalizeName(req.PatientName),
		Email:       req.Email,
		Message:     strings.TrimSpace(req.Message),
		Rating:      req.Rating,
	}
	if err := db.WithContext(c.Request.Context()).Create(&fb).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to save feedback", Err: err})
		return
	}
	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Feedback received", Data: fb})
}

// ListFeedback godoc
// @Summary      List feedback
// @Tags         Feedback
// @Produce      json
// @Security     SessionToken
// @Param        starred query bool false "Only starred feedback"
// @Success      200 {object} util.APIResponse{data=[]model.Feedback}
// @Router       /feedback [get]
func (p *Pages) ListFeedback(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	query := db.WithContext(c.Request.Context()).Order("created_at DESC")
	if raw := c.Query("starred"); raw != "" {
		starred, err := strconv.ParseBool(raw)
		if err != nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "starred must be true or false", Err: err})
			return
		}
		query = query.Where("is_starred = ?", starred)
	}

	var list []model.Feedback
	if err := query.Find(&list).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch feedback", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Feedback retrieved", Data: list})
}

// loadFeedbackOrRespond loads the feedback named by the :id path parameter.
func loadFeedbackOrRespond(c *gin.Context, db *gorm.DB) (model.Feedback, bool) {
	id, ok := intParamOrRespond(c, "id")
	if !ok {
		return model.Feedback{}, false
	}
	var fb model.Feedback
	err := db.WithContext(c.Request.Context()).First(&fb, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Feedback not found", Err: err})
		return model.Feedback{}, false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch feedback", Err: err})
		return model.Feedback{}, false
	}
	return fb, true
}

// ToggleFeedbackStar godoc
// @Summary      Star or unstar feedback
// @Tags         Feedback
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Feedback ID"
// @Success      200 {object} util.APIResponse{data=model.Feedback}
// @Failure      404 {object} util.APIResponse "Feedback not found"
// @Router       /feedback/{id}/star [patch]
func (p *Pages) ToggleFeedbackStar(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	fb, ok := loadFeedbackOrRespond(c, db)
	if !ok {
		return
	}
	fb.IsStarred = !fb.IsStarred
	if err := db.Model(&fb).Update("is_starred", fb.IsStarred).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update feedback", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Feedback updated", Data: fb})
}

// ReplyFeedback godoc
// @Summary      Reply to feedback
// @Description  Stores the reply and emails it when the feedback has an address and mail is configured
// @Tags         Feedback
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Feedback ID"
// @Param        request body ReplyRequest true "Reply"
// @Success      200 {object} util.APIResponse{data=ReplyResponse}
// @Failure      404 {object} util.APIResponse "Feedback not found"
// @Router       /feedback/{id}/reply [post]
func (p *Pages) ReplyFeedback(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	fb, ok := loadFeedbackOrRespond(c, db)
	if !ok {
		return
	}
	var req ReplyRequest
	if !bindJSONOrRespond(c, &req, "Reply is required") {
		return
	}

	reply := strings.TrimSpace(req.Reply)
	now := time.Now()
	fb.Reply = &reply
	fb.RepliedAt = &now
	if err := db.Model(&fb).Select("reply", "replied_at").Updates(&fb).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to save reply", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Reply saved",
		Data: ReplyResponse{Feedback: fb, Emailed: p.mailReply(fb)},
	})
}

// mailReply sends the reply to the feedback author. Failures are logged only.
func (p *Pages) mailReply(fb model.Feedback) bool {
	if p.mailer == nil || fb.Email == nil || *fb.Email == "" || fb.Reply == nil {
		return false
	}
	subject := fmt.Sprintf("Re: your feedback to %s", p.clinic)
	body := util.FeedbackReplyBody(fb.PatientName, fb.Message, *fb.Reply, p.clinic)
	if err := p.mailer.Send(*fb.Email, subject, body); err != nil {
		logger := util.Logger()
		logger.Warn().Err(err).Uint("feedback_id", fb.ID).Msg("failed to email feedback reply")
		return false
	}
	return true
}

// DeleteFeedback godoc
// @Summary      Delete feedback
// @Tags         Feedback
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Feedback ID"
// @Param        confirm query bool true "Must be true"
// @Success      200 {object} util.APIResponse
// @Failure      400 {object} util.APIResponse "Confirmation required"
// @Failure      404 {object} util.APIResponse "Feedback not found"
// @Router       /feedback/{id} [delete]
func (p *Pages) DeleteFeedback(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	if !confirmedOrRespond(c) {
		return
	}
	fb, ok := loadFeedbackOrRespond(c, db)
	if !ok {
		return
	}
	if err := db.Delete(&fb).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete feedback", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Feedback deleted", Data: map[string]uint{"id": fb.ID}})
}
