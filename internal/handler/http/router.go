package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
	"github.com/cmlabs-hris/compensation-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/compensation-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	CORSOrigins []string
	Logger      *slog.Logger
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	gate rbp.Gate,
	compensationHandler CompensationHandler,
	workflowHandler WorkflowHandler,
	rbpHandler RBPHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelDebug,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		authenticated := func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
		}

		r.Group(func(r chi.Router) {
			authenticated(r)

			r.Route("/compensation", func(r chi.Router) {
				r.Post("/calculate", compensationHandler.Calculate)
				r.Get("/employees", compensationHandler.ListEmployees)

				r.Route("/worksheets/{formId}", func(r chi.Router) {
					r.Get("/", compensationHandler.GetWorksheet)
					r.Get("/export", compensationHandler.ExportWorksheet)
					r.Put("/", compensationHandler.SaveWorksheet)
					r.Post("/rows", compensationHandler.AddRow)
					r.Delete("/rows", compensationHandler.DeleteRows)
					r.Post("/upsert", compensationHandler.UpsertRow)
					r.Put("/mode", compensationHandler.SetMode)
				})
			})

			r.Route("/rbp", func(r chi.Router) {
				r.Post("/check", rbpHandler.CheckPermission)
				r.Get("/employees/{employeeId}/can-edit", rbpHandler.CanEditEmployee)
			})

			r.Post("/sse/token", workflowHandler.GetSSEToken)
		})

		r.Route("/workflows/{formId}", func(r chi.Router) {
			// SSE authenticates with a query token
			r.Get("/events", workflowHandler.Stream)

			r.Group(func(r chi.Router) {
				authenticated(r)

				r.Get("/", workflowHandler.GetConfig)
				r.Get("/status", workflowHandler.GetStatus)
				r.Get("/status/export", workflowHandler.ExportStatus)
				r.Post("/steps/{index}/advance", workflowHandler.AdvanceStep)

				// Workflow authoring
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(gate, rbp.PermissionWorkflowManage))
					r.Put("/", workflowHandler.SaveConfig)
					r.Post("/steps", workflowHandler.AddStep)
					r.Put("/steps/{index}", workflowHandler.EditStep)
					r.Delete("/steps/{index}", workflowHandler.DeleteStep)
					r.Post("/steps/{index}/move", workflowHandler.MoveStep)
					r.Post("/activate", workflowHandler.Activate)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	return r
}
