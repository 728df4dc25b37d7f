package endpoint

import (
	"net/http"
	"time"

	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
)

type CreateVisitRequest struct {
	Date string `json:"date" binding:"required" example:"2026-10-18"`
}

// ListVisits godoc
// @Summary      List visits of a doctor
// @Tags         Visits
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Doctor ID"
// @Success      200 {object} util.APIResponse{data=[]model.Visit}
// @Router       /doctors/{id}/visits [get]
func (p *Pages) ListVisits(c *gin.Context) {
	doctorID, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	p.respondVisits(c, doctorID, http.StatusOK, "Visits retrieved")
}

func (p *Pages) respondVisits(c *gin.Context, doctorID string, status int, msg string) {
	visits, err := p.backend.ListVisits(c.Request.Context(), doctorID)
	if err != nil {
		respondBackendError(c, "Failed to fetch visits", err)
		return
	}
	params := util.APISuccessParams{Msg: msg, Data: visits}
	if status == http.StatusCreated {
		util.CallSuccessCreated(c, params)
		return
	}
	util.CallSuccessOK(c, params)
}

// CreateVisit godoc
// @Summary      Open a visit for a doctor
// @Tags         Visits
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Doctor ID"
// @Param        request body CreateVisitRequest true "Visit date"
// @Success      201 {object} util.APIResponse{data=[]model.Visit}
// @Failure      400 {object} util.APIResponse "Invalid date"
// @Router       /doctors/{id}/visits [post]
func (p *Pages) CreateVisit(c *gin.Context) {
	doctorID, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	var req CreateVisitRequest
	if !bindJSONOrRespond(c, &req, "Visit date is required") {
		return
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Visit date must be YYYY-MM-DD", Err: err})
		return
	}
	if _, err := p.backend.CreateVisit(c.Request.Context(), doctorID, req.Date); err != nil {
		respondBackendError(c, "Failed to add visit", err)
		return
	}
	p.respondVisits(c, doctorID, http.StatusCreated, "Visit added")
}

// GetVisit godoc
// @Summary      Visit detail
// @Tags         Visits
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Visit ID"
// @Success      200 {object} util.APIResponse{data=model.Visit}
// @Failure      404 {object} util.APIResponse "Visit not found"
// @Router       /visits/{id} [get]
func (p *Pages) GetVisit(c *gin.Context) {
	visitID, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	visit, err := p.backend.GetVisit(c.Request.Context(), visitID)
	if err != nil {
		respondBackendError(c, "Failed to fetch visit", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Visit retrieved", Data: visit})
}

// DeleteVisit godoc
// @Summary      Delete a visit
// @Description  The backend removes the patients of the visit with it. With doctor_id the remaining visits are returned.
// @Tags         Visits
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Visit ID"
// @Param        confirm query bool true "Must be true"
// @Param        doctor_id query string false "Doctor whose visits to return"
// @Success      200 {object} util.APIResponse
// @Failure      400 {object} util.APIResponse "Confirmation required"
// @Router       /visits/{id} [delete]
func (p *Pages) DeleteVisit(c *gin.Context) {
	visitID, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	if !confirmedOrRespond(c) {
		return
	}
	if err := p.backend.DeleteVisit(c.Request.Context(), visitID); err != nil {
		respondBackendError(c, "Failed to delete visit", err)
		return
	}
	if doctorID := c.Query("doctor_id"); doctorID != "" {
		p.respondVisits(c, doctorID, http.StatusOK, "Visit deleted")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Visit deleted", Data: map[string]string{"id": visitID}})
}
