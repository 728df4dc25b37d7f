package model

import "encoding/json"

type FeeStatus string

const (
	FeeDue  FeeStatus = "due"
	FeePaid FeeStatus = "paid"
)

// Valid reports whether s is one of the known fee states.
func (s FeeStatus) Valid() bool {
	return s == FeeDue || s == FeePaid
}

// Patient is one entry of a visit roster. SerialNo is the 1-based position in the roster.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	FeeStatus FeeStatus `json:"fee_status"`
	VisitID   string    `json:"visit_id"`
	SerialNo  int       `json:"serial_no"`
}

// UniquePatient is a patient deduplicated across visits, with the doctors they have seen.
type UniquePatient struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Contact      string   `json:"contact"`
	DoctorVisits []string `json:"doctor_visits"`
}

// UnmarshalJSON accepts both doctor_visits and doctorVisits. A missing or non-array
// value yields an empty list.
func (p *UniquePatient) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      json.RawMessage `json:"id"`
		Name    string          `json:"name"`
		Contact string          `json:"contact"`
		Snake   json.RawMessage `json:"doctor_visits"`
		Camel   json.RawMessage `json:"doctorVisits"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ID = flexibleID(raw.ID)
	p.Name = raw.Name
	p.Contact = raw.Contact
	p.DoctorVisits = []string{}
	for _, candidate := range []json.RawMessage{raw.Snake, raw.Camel} {
		var ids []string
		if len(candidate) > 0 && json.Unmarshal(candidate, &ids) == nil {
			p.DoctorVisits = ids
			break
		}
	}
	return nil
}

// HasVisited reports whether the patient has a visit with doctorID.
func (p UniquePatient) HasVisited(doctorID string) bool {
	for _, id := range p.DoctorVisits {
		if id == doctorID {
			return true
		}
	}
	return false
}

// flexibleID renders a JSON string or number id as a string.
func flexibleID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}
