package rest

import (
	"net/http"
	"strconv"

	"hub3-slips/internal/transport/auth"
)

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.slips.Templates(r.Context())
	if err != nil {
		serviceError(w, "list templates", err)
		return
	}

	Success(w, "", templates)
}

func (h *Handler) previewSlip(w http.ResponseWriter, r *http.Request) {
	req, err := ValidatePreviewRequest(r)
	if err != nil {
		serviceError(w, "preview slip", err)
		return
	}

	preview, err := h.slips.Preview(r.Context(), req.TemplateID, req.ContactID)
	if err != nil {
		serviceError(w, "preview slip", err)
		return
	}

	Success(w, "", preview)
}

func (h *Handler) previewSlipPNG(w http.ResponseWriter, r *http.Request) {
	req, err := ValidatePreviewQuery(r)
	if err != nil {
		serviceError(w, "render barcode", err)
		return
	}

	preview, err := h.slips.Preview(r.Context(), req.TemplateID, req.ContactID)
	if err != nil {
		serviceError(w, "render barcode", err)
		return
	}
	if len(preview.PNG) == 0 {
		ErrorInternal(w, "barcode rendering is not configured")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(preview.PNG)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(preview.PNG)
}

func (h *Handler) startBatch(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	req, err := ValidateBatchRequest(r)
	if err != nil {
		serviceError(w, "start batch", err)
		return
	}

	jobID, err := h.slips.StartBatch(r.Context(), req.TemplateID, req.ToContactsFilter(), userID)
	if err != nil {
		serviceError(w, "start batch", err)
		return
	}

	SuccessAccepted(w, "batch started", map[string]string{"job_id": jobID})
}
