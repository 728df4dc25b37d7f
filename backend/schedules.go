package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ariebrainware/clinic-admin/model"
)

// ScheduleInput is the schedule form. DayOfWeek is sent empty when SpecificDate is set.
type ScheduleInput struct {
	Name           string
	Specialization string
	DayOfWeek      string
	SpecificDate   string
	StartTime      string
	EndTime        string
	IsAvailable    bool
	ContactNumber  string
	Image          *Upload
}

func (in ScheduleInput) form() *form {
	f := &form{}
	f.set("name", in.Name)
	f.set("specialization", in.Specialization)
	if in.SpecificDate != "" {
		f.set("day_of_week", "")
	} else {
		f.set("day_of_week", in.DayOfWeek)
	}
	f.set("start_time", in.StartTime)
	f.set("end_time", in.EndTime)
	f.set("is_available", strconv.FormatBool(in.IsAvailable))
	if in.SpecificDate != "" {
		f.set("specific_date", in.SpecificDate)
	}
	if in.ContactNumber != "" {
		f.set("contact_number", in.ContactNumber)
	}
	f.attach("image", in.Image)
	return f
}

func (c *Client) ListSchedules(ctx context.Context) ([]model.Schedule, error) {
	return getList[model.Schedule](ctx, c, c.endpoint("schedules"))
}

// CreateSchedule returns the schedule as stored by the backend.
func (c *Client) CreateSchedule(ctx context.Context, in ScheduleInput) (model.Schedule, error) {
	var s model.Schedule
	err := c.sendForm(ctx, http.MethodPost, c.endpoint("schedules")+"/", in.form(), &s)
	return s, err
}

func (c *Client) UpdateSchedule(ctx context.Context, id int, in ScheduleInput) (model.Schedule, error) {
	var s model.Schedule
	err := c.sendForm(ctx, http.MethodPut, c.endpoint("schedules", strconv.Itoa(id)), in.form(), &s)
	return s, err
}

func (c *Client) DeleteSchedule(ctx context.Context, id int) error {
	return c.sendJSON(ctx, http.MethodDelete, c.endpoint("schedules", strconv.Itoa(id)), nil, nil)
}

// ScheduleImageURL is where the backend serves images uploaded with a schedule.
func (c *Client) ScheduleImageURL(filename string) string {
	return c.endpoint("uploads", "doctors", filename)
}
