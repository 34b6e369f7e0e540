package catering_api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-catering/internal/auth"
	"ms-catering/internal/catering/badge"
	"ms-catering/internal/catering/service"
	"ms-catering/internal/logger"
	"ms-catering/internal/schedule"
	"ms-catering/internal/utils"
)

type Handler struct {
	Catering *service.CateringService
	Badges   *badge.Generator
	Logger   *logger.Logger
}

func NewHandler(catering *service.CateringService, badges *badge.Generator, log *logger.Logger) *Handler {
	return &Handler{Catering: catering, Badges: badges, Logger: log}
}

// writeError maps the service taxonomy onto HTTP statuses. Business-rule
// rejections are normal scan-station feedback, not system errors.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNotEligible):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrAlreadyValidated):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidPeriod):
		status = http.StatusUnprocessableEntity
	default:
		if h.Logger != nil {
			h.Logger.Error("API", err.Error())
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(utils.ErrorResponse(http.StatusText(status), err.Error()))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(utils.SuccessResponse(message, data))
}

// ListVolunteerMeals synchronizes and returns the volunteer's entitlements.
// Volunteers may read their own list; staff may read anyone's.
func (h *Handler) ListVolunteerMeals(w http.ResponseWriter, r *http.Request) {
	volunteerID := chi.URLParam(r, "volunteerID")
	if !auth.IsStaff(r.Context()) && auth.UserID(r.Context()) != volunteerID {
		http.Error(w, "not your meal list", http.StatusForbidden)
		return
	}

	views, err := h.Catering.SyncVolunteerSelections(r.Context(), volunteerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "meal selections synchronized", views)
}

func (h *Handler) ListArtistMeals(w http.ResponseWriter, r *http.Request) {
	artistID := chi.URLParam(r, "artistID")
	if !auth.IsStaff(r.Context()) && auth.UserID(r.Context()) != artistID {
		http.Error(w, "not your meal list", http.StatusForbidden)
		return
	}

	views, err := h.Catering.SyncArtistSelections(r.Context(), artistID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "meal selections synchronized", views)
}

// UpdateSelection toggles the accepted flag (participant opt-out).
func (h *Handler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	kind := service.EntitlementKind(chi.URLParam(r, "kind"))
	selectionID := chi.URLParam(r, "selectionID")

	var body struct {
		Accepted *bool `json:"accepted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Accepted == nil {
		http.Error(w, "accepted is required", http.StatusBadRequest)
		return
	}

	if !auth.IsStaff(r.Context()) {
		owner, err := h.Catering.SelectionOwner(r.Context(), kind, selectionID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if owner != auth.UserID(r.Context()) {
			http.Error(w, "not your selection", http.StatusForbidden)
			return
		}
	}

	if err := h.Catering.SetSelectionAccepted(r.Context(), kind, selectionID, *body.Accepted); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "selection updated", nil)
}

// ListEventSlots reconciles and returns the event's meal slots.
func (h *Handler) ListEventSlots(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	slots, err := h.Catering.ReconcileSlots(r.Context(), eventID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "meal slots reconciled", slots)
}

// UpdateSlot applies a staff edit to enabled/phases.
func (h *Handler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	mealID := chi.URLParam(r, "mealID")

	var body struct {
		Enabled *bool            `json:"enabled"`
		Phases  []schedule.Phase `json:"phases"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	slot, err := h.Catering.UpdateSlot(r.Context(), mealID, service.UpdateSlotParams{
		Enabled: body.Enabled,
		Phases:  body.Phases,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "meal slot updated", slot)
}

// ValidateEntitlement marks one entitlement consumed.
// Expected POST body: {"kind": "volunteer|artist|participant", "id": "...", "meal_id": "..."}
func (h *Handler) ValidateEntitlement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind   service.EntitlementKind `json:"kind"`
		ID     string                  `json:"id"`
		MealID string                  `json:"meal_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !service.ValidKind(body.Kind) || body.ID == "" {
		http.Error(w, "kind and id are required", http.StatusBadRequest)
		return
	}

	consumedAt, err := h.Catering.Validate(r.Context(), body.Kind, body.ID, body.MealID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "entitlement validated", map[string]time.Time{"consumed_at": consumedAt})
}

// ValidateBadge decrypts a scanned badge QR and validates the entitlement it
// names.
// Expected POST body: {"encrypted_badge": "base64_string"}
func (h *Handler) ValidateBadge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EncryptedBadge string `json:"encrypted_badge"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.EncryptedBadge == "" {
		http.Error(w, "encrypted_badge is required", http.StatusBadRequest)
		return
	}

	payload, err := h.Badges.Decrypt(body.EncryptedBadge)
	if err != nil {
		http.Error(w, "Invalid badge: "+err.Error(), http.StatusBadRequest)
		return
	}

	consumedAt, err := h.Catering.Validate(r.Context(), payload.Kind, payload.EntitlementID, payload.MealID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "entitlement validated", map[string]time.Time{"consumed_at": consumedAt})
}

// UnvalidateEntitlement is the staff-only administrative reversal.
func (h *Handler) UnvalidateEntitlement(w http.ResponseWriter, r *http.Request) {
	kind := service.EntitlementKind(chi.URLParam(r, "kind"))
	id := chi.URLParam(r, "id")
	mealID := r.URL.Query().Get("meal_id")

	if err := h.Catering.Unvalidate(r.Context(), kind, id, mealID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "entitlement unvalidated", nil)
}

// MealStats returns the aggregate for one meal slot.
func (h *Handler) MealStats(w http.ResponseWriter, r *http.Request) {
	mealID := chi.URLParam(r, "mealID")
	stats, err := h.Catering.MealStats(r.Context(), mealID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "meal stats", stats)
}

// DayReport returns the kitchen planning report for one day.
func (h *Handler) DayReport(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	report, err := h.Catering.DayReport(r.Context(), eventID, date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "catering report", report)
}

// EntitlementBadge renders the QR badge for one entitlement.
func (h *Handler) EntitlementBadge(w http.ResponseWriter, r *http.Request) {
	kind := service.EntitlementKind(chi.URLParam(r, "kind"))
	id := chi.URLParam(r, "id")
	if !service.ValidKind(kind) {
		http.Error(w, "unknown entitlement kind", http.StatusBadRequest)
		return
	}

	png, err := h.Badges.GenerateQR(badge.Payload{
		Kind:          kind,
		EntitlementID: id,
		MealID:        r.URL.Query().Get("meal_id"),
	})
	if err != nil {
		http.Error(w, "Failed to generate badge: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
