package endpoint

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ariebrainware/clinic-admin/backend"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
)

type PatientRequest struct {
	Name      string          `json:"name" binding:"required" example:"Jane Doe"`
	Contact   string          `json:"contact" binding:"required" example:"0300-1234567"`
	FeeStatus model.FeeStatus `json:"fee_status" example:"due"`
}

// RosterResponse is a reconciled visit roster. Shown counts the patients left after the search.
type RosterResponse struct {
	Patients []model.Patient `json:"patients"`
	Total    int             `json:"total"`
	Shown    int             `json:"shown"`
}

func (r PatientRequest) input() (backend.PatientInput, error) {
	status := r.FeeStatus
	if status == "" {
		status = model.FeeDue
	}
	if !status.Valid() {
		return backend.PatientInput{}, errors.New("fee_status must be due or paid")
	}
	return backend.PatientInput{
		Name:      util.NormalizeName(r.Name),
		Contact:   strings.TrimSpace(r.Contact),
		FeeStatus: status,
	}, nil
}

// filterRoster keeps patients whose serial, name or fee status contains search.
func filterRoster(patients []model.Patient, search string) []model.Patient {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return patients
	}
	out := []model.Patient{}
	for _, p := range patients {
		if strings.Contains(strconv.Itoa(p.SerialNo), term) ||
			strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(string(p.FeeStatus)), term) {
			out = append(out, p)
		}
	}
	return out
}

// ListPatients godoc
// @Summary      Visit roster
// @Description  Loads the roster of a visit with serials renumbered 1..N, optionally filtered
// @Tags         Patients
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Visit ID"
// @Param        search query string false "Matches serial, name or fee status"
// @Success      200 {object} util.APIResponse{data=RosterResponse}
// @Failure      502 {object} util.APIResponse "Backend unavailable"
// @Router       /visits/{id}/patients [get]
func (p *Pages) ListPatients(c *gin.Context) {
	visitID, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	p.respondRoster(c, visitID, http.StatusOK, "Patients retrieved")
}

func (p *Pages) respondRoster(c *gin.Context, visitID string, status int, msg string) {
	patients, err := p.roster.Load(c.Request.Context(), visitID)
	if err != nil {
		respondBackendError(c, "Failed to fetch patients", err)
		return
	}
	shown := filterRoster(patients, c.Query("search"))
	params := util.APISuccessParams{
		Msg:  msg,
		Data: RosterResponse{Patients: shown, Total: len(patients), Shown: len(shown)},
	}
	if status == http.StatusCreated {
		util.CallSuccessCreated(c, params)
		return
	}
	util.CallSuccessOK(c, params)
}

// refreshOrAck answers with the roster of ?visit_id= when given, else with the patient id.
func (p *Pages) refreshOrAck(c *gin.Context, patientID, msg string) {
	if visitID := c.Query("visit_id"); visitID != "" {
		p.respondRoster(c, visitID, http.StatusOK, msg)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: msg, Data: map[string]string{"id": patientID}})
}

// CreatePatient godoc
// @Summary      Add a patient to a visit
// @Tags         Patients
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Visit ID"
// @Param        request body PatientRequest true "Patient"
// @Success      201 {object} util.APIResponse{data=RosterResponse}
// @Failure      400 {object} util.APIResponse "Invalid payload"
// @Router       /visits/{id}/patients [post]
func (p *Pages) CreatePatient(c *gin.Context) {
	visitID, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	var req PatientRequest
	if !bindJSONOrRespond(c, &req, "Name and contact are required") {
		return
	}
	in, err := req.input()
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid fee status", Err: err})
		return
	}
	if err := p.backend.CreatePatient(c.Request.Context(), visitID, in); err != nil {
		respondBackendError(c, "Failed to add patient", err)
		return
	}
	p.respondRoster(c, visitID, http.StatusCreated, "Patient added")
}

// UpdatePatient godoc
// @Summary      Edit a patient
// @Tags         Patients
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        visit_id query string false "Visit whose roster to return"
// @Param        request body PatientRequest true "Patient"
// @Success      200 {object} util.APIResponse
// @Failure      400 {object} util.APIResponse "Invalid payload"
// @Router       /patients/{id} [put]
func (p *Pages) UpdatePatient(c *gin.Context) {
	id, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	var req PatientRequest
	if !bindJSONOrRespond(c, &req, "Name and contact are required") {
		return
	}
	in, err := req.input()
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid fee status", Err: err})
		return
	}
	if err := p.backend.UpdatePatient(c.Request.Context(), id, in); err != nil {
		respondBackendError(c, "Failed to update patient", err)
		return
	}
	p.refreshOrAck(c, id, "Patient updated")
}

// ToggleFee godoc
// @Summary      Toggle fee status
// @Description  Flips the fee status of a patient between due and paid
// @Tags         Patients
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        visit_id query string false "Visit whose roster to return"
// @Success      200 {object} util.APIResponse
// @Router       /patients/{id}/fee [patch]
func (p *Pages) ToggleFee(c *gin.Context) {
	id, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	if err := p.backend.ToggleFeeStatus(c.Request.Context(), id); err != nil {
		respondBackendError(c, "Failed to update fee status", err)
		return
	}
	p.refreshOrAck(c, id, "Fee status updated")
}

// DeletePatient godoc
// @Summary      Remove a patient
// @Description  The roster returned for visit_id is renumbered, which repairs the gap left behind
// @Tags         Patients
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Patient ID"
// @Param        confirm query bool true "Must be true"
// @Param        visit_id query string false "Visit whose roster to return"
// @Success      200 {object} util.APIResponse
// @Failure      400 {object} util.APIResponse "Confirmation required"
// @Router       /patients/{id} [delete]
func (p *Pages) DeletePatient(c *gin.Context) {
	id, ok := paramOrRespond(c, "id")
	if !ok {
		return
	}
	if !confirmedOrRespond(c) {
		return
	}
	if err := p.backend.DeletePatient(c.Request.Context(), id); err != nil {
		respondBackendError(c, "Failed to delete patient", err)
		return
	}
	p.refreshOrAck(c, id, "Patient deleted")
}
