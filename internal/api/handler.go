// Package api exposes the group service over HTTP with JSON bodies. It is
// presentation glue: every route decodes input, invokes one service command,
// and renders the resulting snapshot or a typed failure.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/tanda/internal/cycle"
	"github.com/mmynk/tanda/internal/export"
	"github.com/mmynk/tanda/internal/models"
	"github.com/mmynk/tanda/internal/service"
	"github.com/mmynk/tanda/internal/tips"
)

// Handler carries the dependencies for all API routes.
type Handler struct {
	svc  *service.GroupService
	tips *tips.Fetcher
}

// NewHandler creates a Handler over the given service and tip fetcher.
func NewHandler(svc *service.GroupService, tipFetcher *tips.Fetcher) *Handler {
	return &Handler{svc: svc, tips: tipFetcher}
}

type createGroupRequest struct {
	Name               string          `json:"name"`
	ContributionAmount float64         `json:"contributionAmount"`
	Members            []models.Member `json:"members"`
	PayoutOrder        []string        `json:"payoutOrder,omitempty"`
}

type recordPaymentRequest struct {
	MemberID string `json:"memberId"`
}

type payoutOrderRequest struct {
	Order []string `json:"order"`
}

type addMemberRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	g, err := h.svc.CreateGroup(r.Context(), req.Name, req.ContributionAmount, req.Members, req.PayoutOrder)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListGroups(r.Context()))
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	g, err := h.svc.RecordPayment(r.Context(), chi.URLParam(r, "id"), req.MemberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) completePayout(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.CompletePayout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) advanceRound(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.AdvanceRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) setPayoutOrder(w http.ResponseWriter, r *http.Request) {
	var req payoutOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	g, err := h.svc.SetPayoutOrder(r.Context(), chi.URLParam(r, "id"), req.Order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	member := models.Member{Name: req.Name, Phone: req.Phone}
	g, err := h.svc.AddMember(r.Context(), chi.URLParam(r, "id"), member)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "memberId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) resetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.ResetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) exportGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", g.Name+".csv"))
	if err := export.WriteCSV(w, &g); err != nil {
		// Headers are gone; all that is left is to log it.
		slog.Error("CSV export failed", "group_id", g.ID, "error", err)
	}
}

func (h *Handler) tip(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"tip": h.tips.Tip(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps the engine's error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation   *cycle.ValidationError
		invalidState *cycle.InvalidStateError
		prerequisite *cycle.PrerequisiteNotMetError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &invalidState):
		status = http.StatusConflict
	case errors.As(err, &prerequisite):
		status = http.StatusPreconditionFailed
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		slog.Error("Unhandled command error", "error", err)
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
