package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"league-app-go/internal/config"
	leaguedomain "league-app-go/internal/domain/league"
	"league-app-go/internal/transport/httpserver/handler"
	authmw "league-app-go/internal/transport/httpserver/middleware"
	"league-app-go/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, profiles authmw.ProfileStore, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))
	if cfg.MetricsEnabled {
		r.Use(authmw.Metrics)
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		auth := authmw.NewAuth(cfg.Auth, cfg.Supabase, profiles, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Common.AuthMe)
			r.Get("/policies", handlers.Common.ListPolicies)
			r.Put("/users/{id}/role", handlers.Common.SetUserRole)

			r.Post("/teams", handlers.League.CreateTeam)
			r.Get("/teams/{id}", handlers.League.GetTeam)
			r.Post("/teams/{id}/administrators", handlers.League.AddAdministrator(leaguedomain.KindTeam))

			r.Post("/players", handlers.League.CreatePlayer)
			r.Get("/players/{id}", handlers.League.GetPlayer)
			r.Post("/players/{id}/administrators", handlers.League.AddAdministrator(leaguedomain.KindPlayer))

			r.Post("/competitions", handlers.League.CreateCompetition)
			r.Get("/competitions/{id}", handlers.League.GetCompetition)
			r.Post("/competitions/{id}/administrators", handlers.League.AddAdministrator(leaguedomain.KindCompetition))

			r.Post("/matches", handlers.League.CreateMatch)
			r.Get("/matches/{id}", handlers.League.GetMatch)
			r.Post("/matches/{id}/administrators", handlers.League.AddAdministrator(leaguedomain.KindMatch))
			r.Post("/matches/{id}/sets", handlers.League.AddMatchSet)
			r.Post("/matches/{id}/player-stats", handlers.League.AddPlayerStats)
			r.Post("/matches/{id}/team-stats", handlers.League.AddTeamStats)

			r.Get("/relationships", handlers.Relationships.List)
			r.Post("/relationships", handlers.Relationships.Request)
			r.Get("/relationships/{id}", handlers.Relationships.Get)
			r.Patch("/relationships/{id}", handlers.Relationships.Amend)
			r.Get("/relationships/{id}/history", handlers.Relationships.History)
			r.Post("/relationships/{id}/approve", handlers.Relationships.Approve)
			r.Post("/relationships/{id}/reject", handlers.Relationships.Reject)
			r.Post("/relationships/{id}/cancel", handlers.Relationships.Cancel)
			r.Post("/relationships/{id}/end", handlers.Relationships.End)

			r.Get("/edit-requests", handlers.EditRequests.List)
			r.Post("/edit-requests", handlers.EditRequests.Create)
			r.Get("/edit-requests/{id}", handlers.EditRequests.Get)
			r.Get("/edit-requests/{id}/approvers", handlers.EditRequests.Approvers)
			r.Post("/edit-requests/{id}/decision", handlers.EditRequests.Decide)
			r.Post("/edit-requests/{id}/cancel", handlers.EditRequests.Cancel)
		})
	})

	return r
}
