package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/relayline/callback-service/internal/services/callback"
	"github.com/relayline/callback-service/pkg/logger"
	"go.uber.org/zap"
)

// ContactHandler serves the local contact read model and CRM sync.
type ContactHandler struct {
	service *callback.Service
}

// NewContactHandler creates a new contact handler
func NewContactHandler(service *callback.Service) *ContactHandler {
	return &ContactHandler{service: service}
}

// SyncContactRequest identifies the CRM lead to pull.
type SyncContactRequest struct {
	ExternalID string `json:"external_id"`
}

// SyncContact pulls a lead from the CRM and upserts it locally.
func (h *ContactHandler) SyncContact(w http.ResponseWriter, r *http.Request) {
	var req SyncContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ExternalID == "" {
		http.Error(w, "external_id is required", http.StatusBadRequest)
		return
	}

	contact, err := h.service.SyncContact(r.Context(), req.ExternalID)
	if err != nil {
		logger.Base().Error("contact sync failed",
			zap.String("external_id", req.ExternalID), zap.Error(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// GetContact returns one contact from the local read model.
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	contact, err := h.service.Repos().Contact().GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}
