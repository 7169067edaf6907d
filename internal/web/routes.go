package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler builds the router with every page, form and probe.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))
	router.Use(s.metrics.instrument)

	router.Get("/health", s.handleHealth)
	router.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	router.Get("/", s.handleDashboard)
	router.Get("/progress", s.handleProgress)
	router.Get("/profile", s.handleProfileForm)
	router.Post("/profile", s.handleProfileSave)

	router.Route("/courses", func(r chi.Router) {
		r.Get("/", s.handleCourses)
		r.Get("/add", s.handleCourseAddForm)
		r.Post("/add", s.handleCourseAdd)
		r.Get("/{id}/edit", s.handleCourseEditForm)
		r.Post("/{id}/edit", s.handleCourseEdit)
		r.Post("/{id}/delete", s.handleCourseDelete)
	})

	router.Route("/assignments", func(r chi.Router) {
		r.Get("/", s.handleAssignments)
		r.Get("/add", s.handleAssignmentAddForm)
		r.Post("/add", s.handleAssignmentAdd)
		r.Get("/{id}/edit", s.handleAssignmentEditForm)
		r.Post("/{id}/edit", s.handleAssignmentEdit)
		r.Post("/{id}/delete", s.handleAssignmentDelete)
	})

	router.Route("/study-sessions", func(r chi.Router) {
		r.Get("/", s.handleSessions)
		r.Get("/add", s.handleSessionAddForm)
		r.Post("/add", s.handleSessionAdd)
		r.Post("/{id}/delete", s.handleSessionDelete)
	})

	router.Route("/goals", func(r chi.Router) {
		r.Get("/", s.handleGoals)
		r.Get("/add", s.handleGoalAddForm)
		r.Post("/add", s.handleGoalAdd)
		r.Get("/{id}/edit", s.handleGoalEditForm)
		r.Post("/{id}/edit", s.handleGoalEdit)
		r.Post("/{id}/delete", s.handleGoalDelete)
	})

	return router
}
