package roster

import (
	"context"
	"errors"
	"sync"

	"github.com/ariebrainware/clinic-admin/model"
)

// fakeBackend is an in-memory roster store. Serial writes can be made to fail per patient.
type fakeBackend struct {
	mu       sync.Mutex
	rosters  map[string][]model.Patient
	doctors  []model.Doctor
	visits   map[string][]model.Visit
	failFor  map[string]bool
	listErr  error
	writes   []Repair
	released chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		rosters: map[string][]model.Patient{},
		visits:  map[string][]model.Visit{},
		failFor: map[string]bool{},
	}
}

func (f *fakeBackend) ListPatients(_ context.Context, visitID string) ([]model.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Patient(nil), f.rosters[visitID]...), nil
}

func (f *fakeBackend) UpdatePatientSerial(_ context.Context, id string, serial int) error {
	if f.released != nil {
		<-f.released
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[id] {
		return errors.New("backend unavailable")
	}
	for visit, list := range f.rosters {
		for i := range list {
			if list[i].ID == id {
				f.writes = append(f.writes, Repair{PatientID: id, From: list[i].SerialNo, To: serial})
				f.rosters[visit][i].SerialNo = serial
			}
		}
	}
	return nil
}

func (f *fakeBackend) ListDoctors(context.Context) ([]model.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doctors, nil
}

func (f *fakeBackend) ListVisits(_ context.Context, doctorID string) ([]model.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doctorID == "broken" {
		return nil, errors.New("visits unavailable")
	}
	return f.visits[doctorID], nil
}

func (f *fakeBackend) serials(visitID string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return serialsOf(f.rosters[visitID])
}

// recordingRepairer collects submitted repairs synchronously.
type recordingRepairer struct {
	mu      sync.Mutex
	repairs []Repair
}

func (r *recordingRepairer) Submit(rep Repair) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repairs = append(r.repairs, rep)
	return true
}
