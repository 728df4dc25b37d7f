package endpoint

import (
	"strings"

	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// visitFetchLimit bounds concurrent visit reads per totals request.
const visitFetchLimit = 4

type DoctorTotals struct {
	Doctor   model.Doctor `json:"doctor"`
	Patients int          `json:"patients"`
	Visits   int          `json:"visits"`
}

type TotalsResponse struct {
	Doctors       []DoctorTotals        `json:"doctors"`
	TotalPatients int                   `json:"total_patients"`
	Patients      []model.UniquePatient `json:"patients"`
	Shown         int                   `json:"shown"`
}

// Totals godoc
// @Summary      Patient totals
// @Description  Unique patients across all visits with per doctor patient and visit counts
// @Tags         Totals
// @Produce      json
// @Security     SessionToken
// @Param        doctor_id query string false "all or a doctor id"
// @Param        search query string false "Name (case-insensitive) or contact substring"
// @Success      200 {object} util.APIResponse{data=TotalsResponse}
// @Failure      502 {object} util.APIResponse "Backend unavailable"
// @Router       /totals [get]
func (p *Pages) Totals(c *gin.Context) {
	var (
		doctors  []model.Doctor
		patients []model.UniquePatient
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		doctors, err = p.backend.ListDoctors(ctx)
		return err
	})
	g.Go(func() (err error) {
		patients, err = p.backend.ListUniquePatients(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		respondBackendError(c, "Failed to load totals", err)
		return
	}
	p.doctors.remember(doctors)

	visits := make([]int, len(doctors))
	g, ctx = errgroup.WithContext(c.Request.Context())
	g.SetLimit(visitFetchLimit)
	for i, doc := range doctors {
		g.Go(func() error {
			list, err := p.backend.ListVisits(ctx, doc.ID)
			visits[i] = len(list)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		respondBackendError(c, "Failed to load visits", err)
		return
	}

	resp := TotalsResponse{
		Doctors:       make([]DoctorTotals, 0, len(doctors)),
		TotalPatients: len(patients),
	}
	for i, doc := range doctors {
		row := DoctorTotals{Doctor: doc, Visits: visits[i]}
		for _, pt := range patients {
			if pt.HasVisited(doc.ID) {
				row.Patients++
			}
		}
		resp.Doctors = append(resp.Doctors, row)
	}
	resp.Patients = filterUniquePatients(patients, c.Query("search"), c.Query("doctor_id"))
	resp.Shown = len(resp.Patients)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Totals retrieved", Data: resp})
}

func filterUniquePatients(patients []model.UniquePatient, search, doctorID string) []model.UniquePatient {
	term := strings.TrimSpace(search)
	lower := strings.ToLower(term)
	out := []model.UniquePatient{}
	for _, pt := range patients {
		if term != "" && !strings.Contains(strings.ToLower(pt.Name), lower) && !strings.Contains(pt.Contact, term) {
			continue
		}
		if doctorID != "" && doctorID != "all" && !pt.HasVisited(doctorID) {
			continue
		}
		out = append(out, pt)
	}
	return out
}
