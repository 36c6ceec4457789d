package models

type NotificationType string

const (
	NotificationDocumentApproved   NotificationType = "document_approved"
	NotificationDocumentRejected   NotificationType = "document_rejected"
	NotificationDriverVerified     NotificationType = "driver_verified"
	NotificationNoDriversAvailable NotificationType = "no_drivers_available"
)

// NotificationRequest is one push request: constructed, consumed, discarded.
type NotificationRequest struct {
	RecipientID string            `json:"recipient_id"`
	Role        Role              `json:"role"`
	Type        NotificationType  `json:"type"`
	Context     map[string]string `json:"context,omitempty"`
}
