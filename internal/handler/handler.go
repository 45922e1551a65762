package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/community-hub-service/internal/service"
)

// Deps are the services behind the HTTP surface.
type Deps struct {
	DB            Pinger
	Dashboard     service.DashboardService
	Events        service.EventService
	Registrations service.RegistrationService
	CoreTeam      service.CoreTeamService
	Email         service.EmailService
	Auth          service.AuthService
	Upload        service.UploadService
	Cookie        CookieOptions
}

// Register mounts every route on the given engine. Admin routes sit under
// APIV1Prefix+AdminPrefix behind RequireAdmin.
func Register(r *gin.Engine, d Deps, logger zerolog.Logger) {
	h := NewHealthHandler(d.DB, logger)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}

		admin := api.Group(AdminPrefix, RequireAdmin(d.Auth))

		NewEventHandler(d.Events).Register(api, admin)
		NewRegistrationHandler(d.Registrations).Register(api, admin)
		NewCoreTeamHandler(d.CoreTeam).Register(api, admin)
		NewAuthHandler(d.Auth, d.Cookie).Register(api, admin)
		NewDashboardHandler(d.Dashboard).Register(admin)
		NewEmailHandler(d.Email).Register(admin)
		NewUploadHandler(d.Upload).Register(admin)
	}
}
