package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/evmyshkin/mvpy/internal/auth"
	"github.com/evmyshkin/mvpy/internal/httpserver/handlers"
	"github.com/evmyshkin/mvpy/internal/models"
)

func NewRouter(s Server) http.Handler {
	lg := s.Log
	fail := handlers.AuthFailure(s.Metrics, lg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	if len(s.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(s.RequestTimeout))
		api.Post("/auth/login", handlers.Login(s.Auth, s.Audit, s.Metrics, lg))
		api.Post("/auth/logout", handlers.Logout(s.Auth, s.Audit, s.Metrics, lg))
		api.Post("/users", handlers.CreateUser(s.Users, s.Audit, lg))

		api.Group(func(protected chi.Router) {
			protected.Use(auth.Authenticate(s.Validator, s.Resolver, fail))
			protected.Get("/auth/me", handlers.Me())
			protected.Get("/users/{id}", handlers.GetUser(s.Users, lg))
			protected.Put("/users/{id}", handlers.UpdateUser(s.Users, lg))
			protected.Delete("/users/{id}", handlers.DeleteUser(s.Users, s.Audit, lg))
			protected.Get("/roles", handlers.ListRoles(s.Roles, lg))
			protected.Get("/roles/{id}", handlers.GetRole(s.Roles, lg))
			protected.Get("/audit", handlers.MyLogs(s.Audit, lg))
			protected.Group(func(staff chi.Router) {
				staff.Use(auth.RequireRole(fail, models.RoleAdmin, models.RoleManager))
				staff.Get("/users", handlers.ListUsers(s.Users, lg))
			})
		})
	})
	return r
}
