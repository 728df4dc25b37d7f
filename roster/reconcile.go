// Package roster keeps the serial numbers of a visit roster contiguous.
//
// A roster as returned by the backend may have gaps or duplicates in serial_no, for
// example after a deletion. Reconcile renumbers by position and reports which patients
// changed so the corrections can be pushed back without blocking the caller.
package roster

import "github.com/ariebrainware/clinic-admin/model"

// Repair is a serial correction to send to the backend.
type Repair struct {
	PatientID string
	From      int
	To        int
}

// Reconcile returns a copy of patients with SerialNo set to position+1, in the given order,
// plus one Repair for every patient whose serial changed. The input is not modified.
func Reconcile(patients []model.Patient) ([]model.Patient, []Repair) {
	out := make([]model.Patient, len(patients))
	var repairs []Repair
	for i, p := range patients {
		want := i + 1
		if p.SerialNo != want {
			repairs = append(repairs, Repair{PatientID: p.ID, From: p.SerialNo, To: want})
		}
		p.SerialNo = want
		out[i] = p
	}
	return out, repairs
}
