package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
	"github.com/Erdaulet0341/taxi-bots/internal/domain/services"
)

type NotifyHandler struct {
	notifyService services.NotifyService
}

func NewNotifyHandler(notifyService services.NotifyService) *NotifyHandler {
	return &NotifyHandler{notifyService: notifyService}
}

// SetupRoutes sets up all the HTTP routes for notification operations
func (h *NotifyHandler) SetupRoutes(mux *http.ServeMux) {
	// Note: Routes will be protected by AuthMiddleware in app layer
	mux.HandleFunc("POST /internal/notify", h.Notify)
	mux.HandleFunc("POST /internal/notify/broadcast", h.Broadcast)
}

func (h *NotifyHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req models.NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if req.RecipientID == "" || req.Type == "" {
		http.Error(w, "Recipient and notification type are required", http.StatusBadRequest)
		return
	}

	if req.Role != models.RoleDriver && req.Role != models.RolePassenger {
		http.Error(w, "Unknown recipient role", http.StatusBadRequest)
		return
	}

	delivered := h.notifyService.Dispatch(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]bool{"delivered": delivered}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

type broadcastRequest struct {
	RecipientIDs []string                `json:"recipient_ids"`
	Role         models.Role             `json:"role"`
	Type         models.NotificationType `json:"type"`
	Context      map[string]string       `json:"context,omitempty"`
}

func (h *NotifyHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if len(req.RecipientIDs) == 0 || req.Type == "" {
		http.Error(w, "Recipients and notification type are required", http.StatusBadRequest)
		return
	}

	if req.Role != models.RoleDriver && req.Role != models.RolePassenger {
		http.Error(w, "Unknown recipient role", http.StatusBadRequest)
		return
	}

	results := h.notifyService.Broadcast(r.Context(), req.RecipientIDs, req.Role, req.Type, req.Context)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"results": results}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Healthz reports process liveness, it is not wrapped by auth.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
