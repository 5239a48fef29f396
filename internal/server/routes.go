package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/departments", s.handleDepartments)
		r.Post("/catalog/reload", s.handleReload)

		r.Route("/curriculum/{deptID}", func(r chi.Router) {
			r.Get("/", s.handleCurriculum)
			r.Get("/graph.dot", s.handleGraph("dot"))
			r.Get("/graph.svg", s.handleGraph("svg"))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireStudent)
			r.Get("/records", s.handleRecords)
			r.Post("/records", s.handleSetRecord)
			r.Post("/records/check", s.handleCheckRecord)
			r.Get("/credits", s.handleCredits)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound(r.URL.Path), nil)
	})
	return r
}
