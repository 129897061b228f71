package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/relayline/callback-service/internal/domain"
	"github.com/relayline/callback-service/internal/repository"
	"github.com/relayline/callback-service/internal/scheduling"
	"github.com/relayline/callback-service/internal/services/callback"
	"github.com/relayline/callback-service/pkg/logger"
	"go.uber.org/zap"
)

// OutcomeWebhookHandler receives call-outcome events from the voice
// provider's webhook and drives the record-and-maybe-schedule flow.
type OutcomeWebhookHandler struct {
	service *callback.Service
}

// NewOutcomeWebhookHandler creates a new outcome webhook handler
func NewOutcomeWebhookHandler(service *callback.Service) *OutcomeWebhookHandler {
	return &OutcomeWebhookHandler{service: service}
}

// CallOutcomeRequest is the webhook payload for a concluded call attempt.
type CallOutcomeRequest struct {
	ContactID       string         `json:"contact_id"`
	Outcome         domain.Outcome `json:"outcome"`
	AttemptedAt     time.Time      `json:"attempted_at,omitempty"`
	DurationSeconds int            `json:"duration_seconds,omitempty"`
	Notes           string         `json:"notes,omitempty"`
}

// CallOutcomeResponse reports what the webhook did.
type CallOutcomeResponse struct {
	AttemptRecorded  bool                        `json:"attempt_recorded"`
	Eligible         bool                        `json:"eligible"`
	CallbacksCreated int                         `json:"callbacks_created"`
	Callbacks        []*domain.ScheduledCallback `json:"callbacks,omitempty"`
}

// CallbackResultRequest is the webhook payload for a dispatched callback's
// real outcome.
type CallbackResultRequest struct {
	CallbackID string         `json:"callback_id"`
	Outcome    domain.Outcome `json:"outcome"`
}

// CallbackResultResponse reports the reconciled prediction accuracy.
type CallbackResultResponse struct {
	Callback    *domain.ScheduledCallback `json:"callback"`
	ActualScore float64                   `json:"actual_score"`
	Accuracy    float64                   `json:"accuracy"`
}

// HandleCallOutcome records an attempt outcome and schedules callbacks
// for retry-eligible outcomes. A non-eligible outcome is success with
// zero callbacks created, not an error.
func (h *OutcomeWebhookHandler) HandleCallOutcome(w http.ResponseWriter, r *http.Request) {
	var req CallOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContactID == "" {
		http.Error(w, "contact_id is required", http.StatusBadRequest)
		return
	}
	if !req.Outcome.IsKnown() {
		http.Error(w, "unknown outcome", http.StatusBadRequest)
		return
	}

	result, err := h.service.RecordAndMaybeSchedule(r.Context(), scheduling.RecordRequest{
		ContactID:       req.ContactID,
		Outcome:         req.Outcome,
		AttemptedAt:     req.AttemptedAt,
		DurationSeconds: req.DurationSeconds,
		Notes:           req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	logger.Base().Info("processed call outcome",
		zap.String("contact_id", req.ContactID),
		zap.String("outcome", string(req.Outcome)),
		zap.Int("callbacks_created", result.Created))

	writeJSON(w, http.StatusOK, CallOutcomeResponse{
		AttemptRecorded:  true,
		Eligible:         result.Eligible,
		CallbacksCreated: result.Created,
		Callbacks:        result.Callbacks,
	})
}

// HandleCallbackResult reconciles a scheduled callback against its real
// outcome. Duplicate deliveries surface as 409 so the caller can decide
// to ignore them.
func (h *OutcomeWebhookHandler) HandleCallbackResult(w http.ResponseWriter, r *http.Request) {
	var req CallbackResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CallbackID == "" {
		http.Error(w, "callback_id is required", http.StatusBadRequest)
		return
	}
	if !req.Outcome.IsKnown() {
		http.Error(w, "unknown outcome", http.StatusBadRequest)
		return
	}

	result, err := h.service.Reconcile(r.Context(), req.CallbackID, req.Outcome)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CallbackResultResponse{
		Callback:    result.Callback,
		ActualScore: result.ActualScore,
		Accuracy:    result.Accuracy,
	})
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeDomainError maps repository sentinels onto HTTP statuses; anything
// else is a storage failure and reports 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrContactNotFound),
		errors.Is(err, repository.ErrCallbackNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, repository.ErrCallbackCompleted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
