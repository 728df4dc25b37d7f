package roster

import (
	"context"

	"github.com/ariebrainware/clinic-admin/model"
)

// PatientLister fetches the roster of a visit.
type PatientLister interface {
	ListPatients(ctx context.Context, visitID string) ([]model.Patient, error)
}

// Repairer accepts repairs for background delivery. Submit must not block.
type Repairer interface {
	Submit(r Repair) bool
}

// Service loads rosters and keeps them contiguous.
type Service struct {
	patients PatientLister
	repairs  Repairer
}

func NewService(patients PatientLister, repairs Repairer) *Service {
	return &Service{patients: patients, repairs: repairs}
}

// Load fetches the roster of visitID, renumbers it and hands the corrections to the repairer.
// Only the fetch can fail; the corrected list is returned whether or not repairs are accepted.
func (s *Service) Load(ctx context.Context, visitID string) ([]model.Patient, error) {
	fetched, err := s.patients.ListPatients(ctx, visitID)
	if err != nil {
		return nil, err
	}
	fixed, repairs := Reconcile(fetched)
	if s.repairs != nil {
		for _, r := range repairs {
			s.repairs.Submit(r)
		}
	}
	return fixed, nil
}
