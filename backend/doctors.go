package backend

import (
	"context"
	"net/http"

	"github.com/ariebrainware/clinic-admin/model"
)

// DoctorInput is the doctor form. Image is optional on create and update.
type DoctorInput struct {
	Name           string
	Specialization string
	Phone          string
	Image          *Upload
}

func (in DoctorInput) form() *form {
	f := &form{}
	f.set("name", in.Name)
	f.set("specialization", in.Specialization)
	f.set("phone", in.Phone)
	f.attach("image", in.Image)
	return f
}

func (c *Client) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	return getList[model.Doctor](ctx, c, c.endpoint("doctors"))
}

func (c *Client) CreateDoctor(ctx context.Context, in DoctorInput) error {
	return c.sendForm(ctx, http.MethodPost, c.endpoint("doctors"), in.form(), nil)
}

func (c *Client) UpdateDoctor(ctx context.Context, id string, in DoctorInput) error {
	return c.sendForm(ctx, http.MethodPut, c.endpoint("doctors", id), in.form(), nil)
}

// DeleteDoctor removes the doctor. Visits and patients of the doctor are the backend's concern.
func (c *Client) DeleteDoctor(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, c.endpoint("doctors", id), nil, nil)
}

// DoctorImageURL is where the backend serves a doctor portrait.
func (c *Client) DoctorImageURL(filename string) string {
	return c.endpoint("doctors", "images", filename)
}

func (c *Client) ListVisits(ctx context.Context, doctorID string) ([]model.Visit, error) {
	return getList[model.Visit](ctx, c, c.endpoint("visits", doctorID))
}

func (c *Client) GetVisit(ctx context.Context, visitID string) (model.Visit, error) {
	var v model.Visit
	err := c.sendJSON(ctx, http.MethodGet, c.endpoint("visits", "detail", visitID), nil, &v)
	return v, err
}

type visitInput struct {
	Date string `json:"date"`
}

func (c *Client) CreateVisit(ctx context.Context, doctorID, date string) (model.Visit, error) {
	var v model.Visit
	err := c.sendJSON(ctx, http.MethodPost, c.endpoint("visits", doctorID), visitInput{Date: date}, &v)
	return v, err
}

// DeleteVisit removes the visit; the backend cascades to its patients.
func (c *Client) DeleteVisit(ctx context.Context, visitID string) error {
	return c.sendJSON(ctx, http.MethodDelete, c.endpoint("visits", visitID), nil, nil)
}
