package backend

import (
	"context"
	"net/http"

	"github.com/ariebrainware/clinic-admin/model"
)

// PatientInput is the body of patient create and update calls.
type PatientInput struct {
	Name      string          `json:"name"`
	Contact   string          `json:"contact"`
	FeeStatus model.FeeStatus `json:"fee_status"`
}

type serialInput struct {
	SerialNo int `json:"serial_no"`
}

// ListPatients returns the roster of a visit in backend order.
func (c *Client) ListPatients(ctx context.Context, visitID string) ([]model.Patient, error) {
	return getList[model.Patient](ctx, c, c.endpoint("patients", visitID))
}

func (c *Client) ListUniquePatients(ctx context.Context) ([]model.UniquePatient, error) {
	return getList[model.UniquePatient](ctx, c, c.endpoint("patients", "unique")+"/")
}

func (c *Client) CreatePatient(ctx context.Context, visitID string, in PatientInput) error {
	return c.sendJSON(ctx, http.MethodPost, c.endpoint("patients", visitID), in, nil)
}

func (c *Client) UpdatePatient(ctx context.Context, id string, in PatientInput) error {
	return c.sendJSON(ctx, http.MethodPut, c.endpoint("patients", "patient", id), in, nil)
}

// UpdatePatientSerial stores a corrected serial number.
func (c *Client) UpdatePatientSerial(ctx context.Context, id string, serial int) error {
	return c.sendJSON(ctx, http.MethodPatch, c.endpoint("patients", "patient", id, "serial"), serialInput{SerialNo: serial}, nil)
}

// ToggleFeeStatus flips a patient between due and paid on the backend.
func (c *Client) ToggleFeeStatus(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodPatch, c.endpoint("patients", "patient", id), nil, nil)
}

func (c *Client) DeletePatient(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, c.endpoint("patients", "patient", id), nil, nil)
}
