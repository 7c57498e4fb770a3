package routes

import (
	"time"

	"github.com/Dosada05/intramural-draws/handlers"
	"github.com/Dosada05/intramural-draws/middleware"
	"github.com/Dosada05/intramural-draws/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Draw         *handlers.DrawHandler
	Match        *handlers.MatchHandler
	Registration *handlers.RegistrationHandler
	Notification *handlers.NotificationHandler
	Sport        *handlers.SportHandler
	Dashboard    *handlers.DashboardHandler
	WebSocket    *handlers.WebSocketHandler
	Health       *handlers.HealthHandler
}

func SetupRoutes(router chi.Router, h Handlers, jwtSecret string, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Healthz)

	// WebSocket не проходит через таймаут: соединение долгоживущее.
	router.Get("/ws/sports/{sportID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/matches", h.Match.ListPublished)

		r.Route("/sports", func(r chi.Router) {
			r.Get("/", h.Sport.GetAllSports)
			r.Get("/{sportID}", h.Sport.GetSportByID)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Get("/", h.Notification.ListMine)
			r.Post("/token", h.Notification.RegisterToken)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.RequireRole(models.RoleAdmin))

			r.Post("/draw", h.Draw.GenerateDraw)
			r.Get("/stats", h.Dashboard.Stats)

			r.Route("/matches", func(r chi.Router) {
				r.Get("/", h.Match.ListAll)
				r.Put("/{matchID}/visibility", h.Match.SetVisibility)
				r.Delete("/{matchID}", h.Match.Delete)
			})

			r.Route("/registrations", func(r chi.Router) {
				r.Get("/", h.Registration.List)
				r.Put("/{kind}/{id}", h.Registration.UpdateStatus)
			})
		})
	})
}
