package endpoint

import (
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/roster"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type DashboardCounts struct {
	Doctors        int           `json:"doctors"`
	Schedules      int           `json:"schedules"`
	GalleryImages  int           `json:"gallery_images"`
	Feedback       int64         `json:"feedback"`
	UnreadFeedback int64         `json:"unread_feedback"`
	Repairs        *roster.Stats `json:"repairs,omitempty"`
}

// Dashboard godoc
// @Summary      Dashboard counts
// @Description  Count doctors, schedules, active gallery images and feedback
// @Tags         Dashboard
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=DashboardCounts}
// @Failure      502 {object} util.APIResponse "Backend unavailable"
// @Router       /dashboard [get]
func (p *Pages) Dashboard(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var counts DashboardCounts
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		doctors, err := p.backend.ListDoctors(ctx)
		counts.Doctors = len(doctors)
		return err
	})
	g.Go(func() error {
		schedules, err := p.backend.ListSchedules(ctx)
		counts.Schedules = len(schedules)
		return err
	})
	g.Go(func() error {
		images, err := p.backend.ListGallery(ctx)
		for _, img := range images {
			if img.IsActive {
				counts.GalleryImages++
			}
		}
		return err
	})
	if err := g.Wait(); err != nil {
		respondBackendError(c, "Failed to load dashboard", err)
		return
	}

	fb := db.WithContext(c.Request.Context()).Model(&model.Feedback{})
	if err := fb.Count(&counts.Feedback).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count feedback", Err: err})
		return
	}
	if err := db.WithContext(c.Request.Context()).Model(&model.Feedback{}).
		Scopes(model.UnrepliedFeedback).Count(&counts.UnreadFeedback).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count feedback", Err: err})
		return
	}

	if p.repairs != nil {
		stats := p.repairs.Stats()
		counts.Repairs = &stats
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Dashboard loaded", Data: counts})
}
