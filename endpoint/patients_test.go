package endpoint_test

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/ariebrainware/clinic-admin/endpoint"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rosterState is a mutable visit roster served by the fake clinic.
type rosterState struct {
	mu       sync.Mutex
	patients []model.Patient
}

func (s *rosterState) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.patients)
}

func (s *rosterState) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.patients[:0]
	for _, p := range s.patients {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.patients = kept
}

func seedRoster(env *testEnv, patients ...model.Patient) *rosterState {
	state := &rosterState{patients: patients}
	env.Clinic.handle(http.MethodGet, "/patients/v1", state.serve)
	return state
}

func serials(patients []model.Patient) []int {
	out := make([]int, len(patients))
	for i, p := range patients {
		out[i] = p.SerialNo
	}
	return out
}

// serialRepairs drains the repair queue and returns patient id -> repaired serial.
func serialRepairs(t *testing.T, env *testEnv) map[string]int {
	t.Helper()
	env.Queue.Close()
	out := map[string]int{}
	for _, c := range env.Clinic.Calls() {
		if c.Method != http.MethodPatch || len(c.Path) < len("/serial") || c.Path[len(c.Path)-len("/serial"):] != "/serial" {
			continue
		}
		var body struct {
			SerialNo int `json:"serial_no"`
		}
		require.NoError(t, json.Unmarshal(c.Body, &body))
		id := c.Path[len("/patients/patient/") : len(c.Path)-len("/serial")]
		out[id] = body.SerialNo
	}
	return out
}

func TestListPatients_RenumbersAndRepairs(t *testing.T) {
	env, token := SetupServerWithOperator(t)
	seedRoster(env,
		model.Patient{ID: "p1", Name: "Ana", FeeStatus: model.FeeDue, VisitID: "v1", SerialNo: 1},
		model.Patient{ID: "p3", Name: "Cid", FeeStatus: model.FeePaid, VisitID: "v1", SerialNo: 3},
		model.Patient{ID: "p4", Name: "Dee", FeeStatus: model.FeeDue, VisitID: "v1", SerialNo: 4},
	)
	for _, id := range []string{"p3", "p4"} {
		env.Clinic.reply(http.MethodPatch, "/patients/patient/"+id+"/serial", http.StatusOK, map[string]string{"message": "ok"})
	}

	rr := doRequest(env.R, http.MethodGet, "/visits/v1/patients", nil, authed(token))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var roster endpoint.RosterResponse
	ParseData(t, rr, &roster)
	assert.Equal(t, []int{1, 2, 3}, serials(roster.Patients))
	assert.Equal(t, []string{"p1", "p3", "p4"}, []string{roster.Patients[0].ID, roster.Patients[1].ID, roster.Patients[2].ID})
	assert.Equal(t, 3, roster.Total)
	assert.Equal(t, 3, roster.Shown)
	assert.Equal(t, map[string]int{"p3": 2, "p4": 3}, serialRepairs(t, env))
}

func TestListPatients_EmptyVisit(t *testing.T) {
	env, token := SetupServerWithOperator(t)
	env.Clinic.reply(http.MethodGet, "/patients/v1", http.StatusOK, map[string]string{"message": "No patients found"})

	rr := doRequest(env.R, http.MethodGet, "/visits/v1/patients", nil, authed(token))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var roster endpoint.RosterResponse
	ParseData(t, rr, &roster)
	assert.Empty(t, roster.Patients)
	assert.Zero(t, roster.Total)
	assert.Empty(t, serialRepairs(t, env))
}

func TestListPatients_RepairFailureDoesNotFailLoad(t *testing.T) {
	env, token := SetupServerWithOperator(t)
	seedRoster(env,
		model.Patient{ID: "p1", Name: "Ana", VisitID: "v1", SerialNo: 7},
	)
	env.Clinic.reply(http.MethodPatch, "/patients/patient/p1/serial", http.StatusInternalServerError, map[string]string{"message": "db down"})

	rr := doRequest(env.R, http.MethodGet, "/visits/v1/patients", nil, authed(token))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var roster endpoint.RosterResponse
	ParseData(t, rr, &roster)
	assert.Equal(t, []int{1}, serials(roster.Patients))
	env.Queue.Close()
	assert.EqualValues(t, 1, env.Queue.Stats().Failed)
}

func TestListPatients_Search(t *testing.T) {
	env, token := SetupServerWithOperator(t)
	seedRoster(env,
		model.Patient{ID: "p1", Name: "Ana", FeeStatus: model.FeeDue, VisitID: "v1", SerialNo: 1},
		model.Patient{ID: "p2", Name: "Ben", FeeStatus: model.FeePaid, VisitID: "v1", SerialNo: 2},
		model.Patient{ID: "p3", Name: "Banu", FeeStatus: model.FeeDue, VisitID: "v1", SerialNo: 3},
	)

	tests := []struct {
		search string
		want   []string
	}{
		{"ba", []string{"p3"}},
		{"PAID", []string{"p2"}},
		{"3", []string{"p3"}},
		{"", []string{"p1", "p2", "p3"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			rr := doRequest(env.R, http.MethodGet, "/visits/v1/patients?search="+tt.search, nil, authed(token))
			require.Equal(t, http.StatusOK, rr.Code)
			var roster endpoint.RosterResponse
			ParseData(t, rr, &roster)
			var ids []string
			for _, p := range roster.Patients {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, 3, roster.Total)
			assert.Equal(t, len(tt.want), roster.Shown)
		})
	}
}

func TestCreatePatient_DefaultsFeeDue(t *testing.T) {
	env, token := SetupServerWithOperator(t)
	seedRoster(env)
	env.Clinic.reply(http.MethodPost, "/patients/v1", http.StatusCreated, map[string]string{"message": "created"})

	rr := doRequest(env.R, http.MethodPost, "/visits/v1/patients", map[string]string{"name": " Ana  Lee ", "contact": "0300"}, authed(token))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	calls := env.Clinic.CallsTo(http.MethodPost, "/patients/v1")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"name":"Ana Lee","contact":"0300","fee_status":"due"}`, string(calls[0].Body))
	assert.Len(t, env.Clinic.CallsTo(http.MethodGet, "/patients/v1"), 1)
}

func TestCreatePatient_Validation(t *testing.T) {
	env, token := SetupServerWithOperator(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing contact", map[string]string{"name": "Ana"}},
		{"bad fee status", map[string]string{"name": "Ana", "contact": "0300", "fee_status": "waived"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(env.R, http.MethodPost, "/visits/v1/patients", tt.body, authed(token))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
	assert.Empty(t, env.Clinic.Calls())
}

func TestUpdatePatient(t *testing.T) {
	env, token := SetupServerWithOperator(t)
	env.Clinic.reply(http.MethodPut, "/patients/patient/p1", http.StatusOK, map[string]string{"message": "updated"})

	rr := doRequest(env.R, http.MethodPut, "/patients/p1", map[string]string{"name": "Ana", "contact": "0300", "fee_status": "paid"}, authed(token))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	calls := env.Clinic.CallsTo(http.MethodPut, "/patients/patient/p1")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"name":"Ana","contact":"0300","fee_status":"paid"}`, string(calls[0].Body))
}

func TestToggleFee_RefreshesRoster(t *testing.T) {
	env, token := SetupServerWithOperator(t)
	seedRoster(env, model.Patient{ID: "p1", Name: "Ana", FeeStatus: model.FeePaid, VisitID: "v1", SerialNo: 1})
	env.Clinic.reply(http.MethodPatch, "/patients/patient/p1", http.StatusOK, map[string]string{"message": "toggled"})

	rr := doRequest(env.R, http.MethodPatch, "/patients/p1/fee?visit_id=v1", nil, authed(token))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	calls := env.Clinic.CallsTo(http.MethodPatch, "/patients/patient/p1")
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Body)
	var roster endpoint.RosterResponse
	ParseData(t, rr, &roster)
	assert.Len(t, roster.Patients, 1)
}

func TestDeletePatient_ReturnsRenumberedRoster(t *testing.T) {
	env, token := SetupServerWithOperator(t)
	state := seedRoster(env,
		model.Patient{ID: "p1", Name: "Ana", VisitID: "v1", SerialNo: 1},
		model.Patient{ID: "p2", Name: "Ben", VisitID: "v1", SerialNo: 2},
		model.Patient{ID: "p3", Name: "Cid", VisitID: "v1", SerialNo: 3},
	)
	env.Clinic.handle(http.MethodDelete, "/patients/patient/p2", func(w http.ResponseWriter, r *http.Request) {
		state.remove("p2")
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	})
	env.Clinic.reply(http.MethodPatch, "/patients/patient/p3/serial", http.StatusOK, map[string]string{"message": "ok"})

	rr := doRequest(env.R, http.MethodDelete, "/patients/p2?visit_id=v1", nil, authed(token))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(env.R, http.MethodDelete, "/patients/p2?confirm=true&visit_id=v1", nil, authed(token))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var roster endpoint.RosterResponse
	ParseData(t, rr, &roster)
	assert.Equal(t, []int{1, 2}, serials(roster.Patients))
	assert.Equal(t, map[string]int{"p3": 2}, serialRepairs(t, env))
}
