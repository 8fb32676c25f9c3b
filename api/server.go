/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Wires the routes the external collaborators use: the report processors PUT
  their flat tables in, a scheduler POSTs a pipeline run, the dashboard GETs
  the calc output.

MIDDLEWARE STACK:
  Logger, Recoverer, RequestID, CORS. The usual chi stack.

ROUTES:
  GET  /api/health             liveness
  GET  /api/sheets/{name}      read any sheet
  PUT  /api/sheets/{name}      overwrite a sheet (collaborator upload)
  POST /api/runs               execute one pipeline run
  GET  /api/calc               the calc output table
  GET  /api/rollup             the location rollup output table

SEE ALSO:
  - handlers.go: handler implementations
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/sheets/{name}", func(r chi.Router) {
			r.Get("/", h.GetSheet)
			r.Put("/", h.PutSheet)
		})

		r.Post("/runs", h.RunPipeline)
		r.Get("/calc", h.GetCalc)
		r.Get("/rollup", h.GetRollup)
	})

	return r
}
