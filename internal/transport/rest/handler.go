package rest

import (
	"context"
	"net/http"
	"time"

	"hub3-slips/internal/repository"
	"hub3-slips/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type SlipService interface {
	Templates(ctx context.Context) ([]service.TemplateView, error)
	Preview(ctx context.Context, templateID, contactID int64) (*service.Preview, error)
	StartBatch(ctx context.Context, templateID int64, filter repository.ContactsFilter, userID int64) (string, error)
}

type JobService interface {
	GetJobs(ctx context.Context, userID int64) ([]service.JobView, error)
	GetJob(ctx context.Context, jobID string, userID int64) (*service.JobView, error)
}

type Handler struct {
	slips SlipService
	jobs  JobService
}

func NewHandler(slips SlipService, jobs JobService) *Handler {
	return &Handler{
		slips: slips,
		jobs:  jobs,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	r.Get("/references/{seed}", h.generateReference)
	r.Get("/references/validate/{reference}", h.validateReference)

	r.Get("/templates", h.listTemplates)

	r.Route("/slips", func(r chi.Router) {
		r.Post("/preview", h.previewSlip)
		r.Get("/preview.png", h.previewSlipPNG)
		r.Post("/batch", h.startBatch)
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.listJobs)
		r.Get("/{job_id}", h.getJob)
	})

	return r
}
