// Package quotation exposes the draft editor and the stored-quotation
// proxies over HTTP. The draft endpoints serve the editor's working copy;
// the /quotations endpoints pass through to the remote service with the
// lifecycle rules enforced locally.
package quotation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/qb-tools/quote-forge/pkg/models/domain"
	"github.com/qb-tools/quote-forge/pkg/services/pricing"
	"github.com/qb-tools/quote-forge/pkg/services/quotation"
	"github.com/qb-tools/quote-forge/pkg/services/validation"
	"github.com/qb-tools/quote-forge/pkg/store/client"
)

// Service is the slice of the quotation controller the handlers consume.
type Service interface {
	Draft() domain.Quotation
	DraftState() domain.DraftState
	Replace(ctx context.Context, q domain.Quotation) error
	ClearDraft(ctx context.Context)
	SaveDraft(ctx context.Context) (domain.Quotation, error)
	Submit(ctx context.Context) (domain.Quotation, error)
	Validate() validation.Result
	Totals() pricing.Totals
	ListQuotations(ctx context.Context, status domain.Status) ([]domain.Quotation, error)
	GetQuotation(ctx context.Context, id int64) (domain.Quotation, error)
	DeleteQuotation(ctx context.Context, id int64) error
	DuplicateQuotation(ctx context.Context, id int64) (domain.Quotation, error)
	UpdateStatus(ctx context.Context, id int64, next domain.Status) (domain.Quotation, error)
	GenerateQuotationPDF(ctx context.Context, id int64) ([]byte, error)
	ListMaterials(ctx context.Context) ([]domain.MaterialRef, error)
	RefreshMaterials(ctx context.Context) ([]domain.MaterialRef, error)
}

type draftStateResponse struct {
	Quotation      domain.Quotation `json:"quotation"`
	IsDirty        bool             `json:"isDirty"`
	LastSaved      *time.Time       `json:"lastSaved,omitempty"`
	AutoSaveStatus string           `json:"autoSaveStatus,omitempty"`
}

type validationResponse struct {
	IsValid bool              `json:"isValid"`
	Errors  validation.Errors `json:"errors"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	state := h.service.DraftState()
	h.writeJSON(r, w, draftStateResponse{
		Quotation:      state.Quotation,
		IsDirty:        state.IsDirty,
		LastSaved:      state.LastSaved,
		AutoSaveStatus: state.AutoSaveStatus,
	})
}

func (h *Handler) ReplaceDraft(w http.ResponseWriter, r *http.Request) {
	var q domain.Quotation
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, "invalid quotation body", http.StatusBadRequest)
		return
	}

	if err := h.service.Replace(r.Context(), q); err != nil {
		h.writeError(r, w, err)
		return
	}
	h.GetDraft(w, r)
}

func (h *Handler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	h.service.ClearDraft(r.Context())
	h.GetDraft(w, r)
}

func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	saved, err := h.service.SaveDraft(r.Context())
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeJSON(r, w, saved)
}

func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	issued, err := h.service.Submit(r.Context())
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeJSON(r, w, issued)
}

func (h *Handler) GetDraftPricing(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r, w, h.service.Totals())
}

func (h *Handler) ValidateDraft(w http.ResponseWriter, r *http.Request) {
	result := h.service.Validate()
	h.writeJSON(r, w, validationResponse{IsValid: result.IsValid, Errors: result.Errors})
}

func (h *Handler) ListQuotations(w http.ResponseWriter, r *http.Request) {
	status := domain.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		http.Error(w, fmt.Sprintf("unknown status %q", status), http.StatusBadRequest)
		return
	}

	quotations, err := h.service.ListQuotations(r.Context(), status)
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeJSON(r, w, quotations)
}

func (h *Handler) GetQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quotationID(w, r)
	if !ok {
		return
	}

	q, err := h.service.GetQuotation(r.Context(), id)
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeJSON(r, w, q)
}

func (h *Handler) DeleteQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quotationID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteQuotation(r.Context(), id); err != nil {
		h.writeError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DuplicateQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quotationID(w, r)
	if !ok {
		return
	}

	copied, err := h.service.DuplicateQuotation(r.Context(), id)
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeJSON(r, w, copied)
}

func (h *Handler) UpdateQuotationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quotationID(w, r)
	if !ok {
		return
	}

	var body statusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid status body", http.StatusBadRequest)
		return
	}

	next := domain.Status(body.Status)
	if !next.Valid() {
		http.Error(w, fmt.Sprintf("unknown status %q", body.Status), http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), id, next)
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeJSON(r, w, updated)
}

func (h *Handler) GetQuotationPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quotationID(w, r)
	if !ok {
		return
	}

	pdf, err := h.service.GenerateQuotationPDF(r.Context(), id)
	if err != nil {
		h.writeError(r, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quotation-%d.pdf"`, id))
	if _, err := w.Write(pdf); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write pdf response")
	}
}

func (h *Handler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.ListMaterials(r.Context())
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeJSON(r, w, materials)
}

func (h *Handler) RefreshMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.RefreshMaterials(r.Context())
	if err != nil {
		h.writeError(r, w, err)
		return
	}
	h.writeJSON(r, w, materials)
}

func (h *Handler) quotationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid quotation id %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(r *http.Request, w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps controller failures onto HTTP statuses: field errors are
// 422 with the error map as the body, remote API failures keep their
// status, forbidden lifecycle moves and edits to issued quotations are 409.
func (h *Handler) writeError(r *http.Request, w http.ResponseWriter, err error) {
	var vErr *quotation.ValidationError
	if errors.As(err, &vErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		if encErr := json.NewEncoder(w).Encode(validationResponse{
			IsValid: false,
			Errors:  vErr.Result.Errors,
		}); encErr != nil {
			zerolog.Ctx(r.Context()).Error().Err(encErr).Msg("failed to encode validation errors")
		}
		return
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		http.Error(w, apiErr.Message, apiErr.StatusCode)
		return
	}

	if errors.Is(err, quotation.ErrInvalidTransition) || errors.Is(err, quotation.ErrImmutableQuotation) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
