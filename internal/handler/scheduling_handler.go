package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/relayline/callback-service/internal/services/callback"
)

// SchedulingHandler exposes prediction and scheduling introspection
// endpoints for operators and the external dispatcher.
type SchedulingHandler struct {
	service *callback.Service
}

// NewSchedulingHandler creates a new scheduling handler
func NewSchedulingHandler(service *callback.Service) *SchedulingHandler {
	return &SchedulingHandler{service: service}
}

// GetPredictions returns ranked per-day slot bundles for a contact.
// horizon_days defaults to the engine's prediction horizon and is capped
// at the configured maximum.
func (h *SchedulingHandler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	contactID := mux.Vars(r)["id"]

	horizonDays := 0
	if v := r.URL.Query().Get("horizon_days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "horizon_days must be an integer", http.StatusBadRequest)
			return
		}
		horizonDays = parsed
	}

	predictions, err := h.service.Predict(r.Context(), contactID, horizonDays)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contact_id":  contactID,
		"predictions": predictions,
	})
}

// ScheduleRequest carries the optional overrides for a manual run.
type ScheduleRequest struct {
	MaxPerDay   int `json:"max_per_day,omitempty"`
	HorizonDays int `json:"horizon_days,omitempty"`
}

// TriggerSchedule runs a manual scheduling pass for a contact.
func (h *SchedulingHandler) TriggerSchedule(w http.ResponseWriter, r *http.Request) {
	contactID := mux.Vars(r)["id"]

	var req ScheduleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	result, err := h.service.Schedule(r.Context(), contactID, req.MaxPerDay, req.HorizonDays)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetAttempts returns a contact's attempt history, newest first.
func (h *SchedulingHandler) GetAttempts(w http.ResponseWriter, r *http.Request) {
	contactID := mux.Vars(r)["id"]

	attempts, err := h.service.Repos().ContactAttempt().GetByContactID(r.Context(), contactID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contact_id": contactID,
		"attempts":   attempts,
		"total":      len(attempts),
	})
}

// GetCallback returns one scheduled callback by ID.
func (h *SchedulingHandler) GetCallback(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	cb, err := h.service.Repos().ScheduledCallback().GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cb)
}

// GetContactCallbacks returns all callbacks for a contact, soonest first.
func (h *SchedulingHandler) GetContactCallbacks(w http.ResponseWriter, r *http.Request) {
	contactID := mux.Vars(r)["id"]

	callbacks, err := h.service.Repos().ScheduledCallback().GetByContactID(r.Context(), contactID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contact_id": contactID,
		"callbacks":  callbacks,
		"total":      len(callbacks),
	})
}

// GetDueCallbacks lists pending callbacks due at or before now (or the
// until query parameter). The external dispatcher polls this; the
// service itself never places calls.
func (h *SchedulingHandler) GetDueCallbacks(w http.ResponseWriter, r *http.Request) {
	until := time.Now()
	if v := r.URL.Query().Get("until"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "until must be RFC3339", http.StatusBadRequest)
			return
		}
		until = parsed
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	callbacks, err := h.service.Repos().ScheduledCallback().ListDue(r.Context(), until, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"callbacks": callbacks,
		"total":     len(callbacks),
	})
}
