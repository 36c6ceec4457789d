package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
)

type fakeNotifier struct {
	dispatched []models.NotificationRequest
	delivered  bool
}

func (f *fakeNotifier) Dispatch(_ context.Context, req models.NotificationRequest) bool {
	f.dispatched = append(f.dispatched, req)
	return f.delivered
}

func (f *fakeNotifier) Broadcast(_ context.Context, recipients []string, role models.Role, typ models.NotificationType, payload map[string]string) map[string]bool {
	results := make(map[string]bool, len(recipients))
	for _, id := range recipients {
		results[id] = f.delivered
	}
	return results
}

func TestNotifyReturnsDeliveryOutcome(t *testing.T) {
	notifier := &fakeNotifier{delivered: true}
	handler := NewNotifyHandler(notifier)

	body := `{"recipient_id":"42","role":"driver","type":"document_approved","context":{"document_type":"License"}}`
	req := httptest.NewRequest(http.MethodPost, "/internal/notify", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Notify(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"delivered":true}`, rec.Body.String())
	require.Len(t, notifier.dispatched, 1)
	require.Equal(t, "42", notifier.dispatched[0].RecipientID)
	require.Equal(t, models.NotificationDocumentApproved, notifier.dispatched[0].Type)
	require.Equal(t, "License", notifier.dispatched[0].Context["document_type"])
}

func TestNotifyRejectsMissingFields(t *testing.T) {
	notifier := &fakeNotifier{delivered: true}
	handler := NewNotifyHandler(notifier)

	req := httptest.NewRequest(http.MethodPost, "/internal/notify",
		strings.NewReader(`{"role":"driver","type":"document_approved"}`))
	rec := httptest.NewRecorder()

	handler.Notify(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, notifier.dispatched)
}

func TestNotifyRejectsUnknownRole(t *testing.T) {
	notifier := &fakeNotifier{delivered: true}
	handler := NewNotifyHandler(notifier)

	req := httptest.NewRequest(http.MethodPost, "/internal/notify",
		strings.NewReader(`{"recipient_id":"42","role":"dispatcher","type":"document_approved"}`))
	rec := httptest.NewRecorder()

	handler.Notify(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, notifier.dispatched)
}

func TestBroadcastReportsPerRecipient(t *testing.T) {
	notifier := &fakeNotifier{delivered: true}
	handler := NewNotifyHandler(notifier)

	body := `{"recipient_ids":["1","2"],"role":"passenger","type":"no_drivers_available"}`
	req := httptest.NewRequest(http.MethodPost, "/internal/notify/broadcast", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Broadcast(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"results":{"1":true,"2":true}}`, rec.Body.String())
}
