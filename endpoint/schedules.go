package endpoint

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ariebrainware/clinic-admin/backend"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
)

type ScheduleForm struct {
	Name           string `form:"name" binding:"required"`
	Specialization string `form:"specialization" binding:"required"`
	DayOfWeek      string `form:"day_of_week"`
	SpecificDate   string `form:"specific_date"`
	StartTime      string `form:"start_time" binding:"required"`
	EndTime        string `form:"end_time" binding:"required"`
	IsAvailable    *bool  `form:"is_available"`
	ContactNumber  string `form:"contact_number"`
}

// ScheduleView adds the resolved photo URL to a schedule.
type ScheduleView struct {
	model.Schedule
	ImageURL string `json:"image_url,omitempty"`
}

func (f ScheduleForm) validate() error {
	day := strings.TrimSpace(f.DayOfWeek)
	date := strings.TrimSpace(f.SpecificDate)
	switch {
	case day == "" && date == "":
		return errors.New("either day_of_week or specific_date is required")
	case day != "" && date != "":
		return errors.New("day_of_week and specific_date are mutually exclusive")
	case day != "" && !util.Contains(day, model.Weekdays):
		return errors.New("day_of_week must be Monday to Sunday")
	}
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return errors.New("specific_date must be YYYY-MM-DD")
		}
	}
	start, err := time.Parse(timeLayout, f.StartTime)
	if err != nil {
		return errors.New("start_time must be HH:MM")
	}
	end, err := time.Parse(timeLayout, f.EndTime)
	if err != nil {
		return errors.New("end_time must be HH:MM")
	}
	if !start.Before(end) {
		return errors.New("start_time must be before end_time")
	}
	return nil
}

func (f ScheduleForm) input(img *backend.Upload) backend.ScheduleInput {
	available := true
	if f.IsAvailable != nil {
		available = *f.IsAvailable
	}
	return backend.ScheduleInput{
		Name:           util.NormalizeName(f.Name),
		Specialization: f.Specialization,
		DayOfWeek:      strings.TrimSpace(f.DayOfWeek),
		SpecificDate:   strings.TrimSpace(f.SpecificDate),
		StartTime:      f.StartTime,
		EndTime:        f.EndTime,
		IsAvailable:    available,
		ContactNumber:  strings.TrimSpace(f.ContactNumber),
		Image:          img,
	}
}

func (p *Pages) scheduleViews(list []model.Schedule) []ScheduleView {
	out := make([]ScheduleView, 0, len(list))
	for _, s := range list {
		v := ScheduleView{Schedule: s}
		if s.ImageFilename != nil && *s.ImageFilename != "" {
			v.ImageURL = p.backend.ScheduleImageURL(*s.ImageFilename)
		}
		out = append(out, v)
	}
	return out
}

// ListSchedules godoc
// @Summary      List schedules
// @Tags         Schedules
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=[]ScheduleView}
// @Router       /schedules [get]
func (p *Pages) ListSchedules(c *gin.Context) {
	p.respondSchedules(c, http.StatusOK, "Schedules retrieved")
}

func (p *Pages) respondSchedules(c *gin.Context, status int, msg string) {
	list, err := p.backend.ListSchedules(c.Request.Context())
	if err != nil {
		respondBackendError(c, "Failed to fetch schedules", err)
		return
	}
	params := util.APISuccessParams{Msg: msg, Data: p.scheduleViews(list)}
	if status == http.StatusCreated {
		util.CallSuccessCreated(c, params)
		return
	}
	util.CallSuccessOK(c, params)
}

// bindSchedule binds and validates the schedule form and opens the optional photo.
func bindSchedule(c *gin.Context) (backend.ScheduleInput, func(), bool) {
	var form ScheduleForm
	if !bindFormOrRespond(c, &form, "Name, specialization, start and end time are required") {
		return backend.ScheduleInput{}, nil, false
	}
	if err := form.validate(); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return backend.ScheduleInput{}, nil, false
	}
	img, closeImg, ok := uploadFromForm(c, "image", false)
	if !ok {
		return backend.ScheduleInput{}, nil, false
	}
	return form.input(img), closeImg, true
}

// CreateSchedule godoc
// @Summary      Add a schedule
// @Tags         Schedules
// @Accept       multipart/form-data
// @Produce      json
// @Security     SessionToken
// @Success      201 {object} util.APIResponse{data=[]ScheduleView}
// @Failure      400 {object} util.APIResponse "Invalid form"
// @Router       /schedules [post]
func (p *Pages) CreateSchedule(c *gin.Context) {
	in, closeImg, ok := bindSchedule(c)
	if !ok {
		return
	}
	defer closeImg()
	if _, err := p.backend.CreateSchedule(c.Request.Context(), in); err != nil {
		respondBackendError(c, "Failed to add schedule", err)
		return
	}
	p.respondSchedules(c, http.StatusCreated, "Schedule added")
}

// UpdateSchedule godoc
// @Summary      Update a schedule
// @Tags         Schedules
// @Accept       multipart/form-data
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Schedule ID"
// @Success      200 {object} util.APIResponse{data=[]ScheduleView}
// @Failure      400 {object} util.APIResponse "Invalid form"
// @Router       /schedules/{id} [put]
func (p *Pages) UpdateSchedule(c *gin.Context) {
	id, ok := intParamOrRespond(c, "id")
	if !ok {
		return
	}
	in, closeImg, ok := bindSchedule(c)
	if !ok {
		return
	}
	defer closeImg()
	if _, err := p.backend.UpdateSchedule(c.Request.Context(), id, in); err != nil {
		respondBackendError(c, "Failed to update schedule", err)
		return
	}
	p.respondSchedules(c, http.StatusOK, "Schedule updated")
}

// DeleteSchedule godoc
// @Summary      Delete a schedule
// @Tags         Schedules
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Schedule ID"
// @Param        confirm query bool true "Must be true"
// @Success      200 {object} util.APIResponse{data=[]ScheduleView}
// @Failure      400 {object} util.APIResponse "Confirmation required"
// @Router       /schedules/{id} [delete]
func (p *Pages) DeleteSchedule(c *gin.Context) {
	id, ok := intParamOrRespond(c, "id")
	if !ok {
		return
	}
	if !confirmedOrRespond(c) {
		return
	}
	if err := p.backend.DeleteSchedule(c.Request.Context(), id); err != nil {
		respondBackendError(c, "Failed to delete schedule", err)
		return
	}
	p.respondSchedules(c, http.StatusOK, "Schedule deleted")
}
