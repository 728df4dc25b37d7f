package endpoint

import (
	"fmt"
	"net/http"

	"github.com/ariebrainware/clinic-admin/config"
	"github.com/ariebrainware/clinic-admin/middleware"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every dashboard route. Everything except the root, login, token
// validation and public feedback submission sits behind the session guard.
func NewRouter(d Deps) *gin.Engine {
	cfg := config.LoadConfig()
	pages := NewPages(d)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.EndpointCallLogger())
	r.Use(middleware.CORSMiddleware(d.CORSOrigins))
	r.Use(middleware.DatabaseMiddleware(d.DB))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	limited := middleware.RateLimiter(middleware.RateLimitConfig{})
	r.POST("/login", limited, Login)
	r.GET("/token/validate", ValidateToken)
	r.POST("/feedback", limited, pages.SubmitFeedback)

	auth := r.Group("/")
	auth.Use(middleware.ValidateLoginToken())
	auth.Use(middleware.NewInFlightGuard(d.InFlightTTL).Handler())
	{
		auth.DELETE("/logout", Logout)
		auth.GET("/dashboard", pages.Dashboard)

		auth.GET("/doctors", pages.ListDoctors)
		auth.POST("/doctors", pages.CreateDoctor)
		auth.PUT("/doctors/:id", pages.UpdateDoctor)
		auth.DELETE("/doctors/:id", pages.DeleteDoctor)
		auth.GET("/doctors/:id/image", pages.DoctorImage)
		auth.GET("/doctors/:id/visits", pages.ListVisits)
		auth.POST("/doctors/:id/visits", pages.CreateVisit)

		auth.GET("/visits/:id", pages.GetVisit)
		auth.DELETE("/visits/:id", pages.DeleteVisit)
		auth.GET("/visits/:id/patients", pages.ListPatients)
		auth.POST("/visits/:id/patients", pages.CreatePatient)

		auth.PUT("/patients/:id", pages.UpdatePatient)
		auth.PATCH("/patients/:id/fee", pages.ToggleFee)
		auth.DELETE("/patients/:id", pages.DeletePatient)

		auth.GET("/totals", pages.Totals)

		auth.GET("/schedules", pages.ListSchedules)
		auth.POST("/schedules", pages.CreateSchedule)
		auth.PUT("/schedules/:id", pages.UpdateSchedule)
		auth.DELETE("/schedules/:id", pages.DeleteSchedule)

		auth.GET("/gallery", pages.ListGallery)
		auth.POST("/gallery", pages.UploadGalleryImage)
		auth.DELETE("/gallery/:id", pages.DeleteGalleryImage)

		auth.GET("/feedback", pages.ListFeedback)
		auth.PATCH("/feedback/:id/star", pages.ToggleFeedbackStar)
		auth.POST("/feedback/:id/reply", pages.ReplyFeedback)
		auth.DELETE("/feedback/:id", pages.DeleteFeedback)
	}

	return r
}
