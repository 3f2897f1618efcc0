package rest

import (
	"net/http"
	"strings"

	"hub3-slips/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

const jobKeyPrefix = "jobs:"

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	jobs, err := h.jobs.GetJobs(r.Context(), userID)
	if err != nil {
		serviceError(w, "get jobs", err)
		return
	}

	Success(w, "", jobs)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		ErrorBadRequest(w, "job_id is required")
		return
	}
	// both "jobs:<uuid>" and the bare uuid are accepted
	if !strings.HasPrefix(jobID, jobKeyPrefix) {
		jobID = jobKeyPrefix + jobID
	}

	job, err := h.jobs.GetJob(r.Context(), jobID, userID)
	if err != nil {
		serviceError(w, "get job", err)
		return
	}

	Success(w, "", job)
}
