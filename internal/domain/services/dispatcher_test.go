package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
	"github.com/Erdaulet0341/taxi-bots/internal/i18n"
	"github.com/Erdaulet0341/taxi-bots/internal/menu"
)

type notifyFixture struct {
	catalog         *i18n.Catalog
	users           *fakeUsers
	drivers         *fakeDrivers
	driverSender    *fakeSender
	passengerSender *fakeSender
	service         NotifyService
}

func newNotifyFixture(t *testing.T) *notifyFixture {
	t.Helper()
	catalog, err := i18n.Load()
	require.NoError(t, err)

	f := &notifyFixture{
		catalog:         catalog,
		users:           &fakeUsers{users: map[string]*models.User{}},
		drivers:         &fakeDrivers{drivers: map[string]*models.Driver{}},
		driverSender:    &fakeSender{},
		passengerSender: &fakeSender{},
	}
	f.service = NewNotifyService(
		catalog, menu.NewBuilder(catalog),
		f.users, f.drivers,
		f.driverSender, f.passengerSender, 4,
	)
	return f
}

func (f *notifyFixture) format(t *testing.T, key, lang string, vars map[string]string) string {
	t.Helper()
	s, err := f.catalog.Format(key, lang, vars)
	require.NoError(t, err)
	return s
}

func TestDispatchUnknownTypeNeverTouchesDelivery(t *testing.T) {
	f := newNotifyFixture(t)

	ok := f.service.Dispatch(context.Background(), models.NotificationRequest{
		RecipientID: "500",
		Role:        models.RoleDriver,
		Type:        models.NotificationType("mystery_event"),
	})

	require.False(t, ok)
	require.Empty(t, f.driverSender.messages())
	require.Empty(t, f.passengerSender.messages())
}

func TestDispatchDocumentApprovedUsesContext(t *testing.T) {
	f := newNotifyFixture(t)
	f.users.users["500"] = &models.User{TelegramID: "500", Language: "eng"}

	ok := f.service.Dispatch(context.Background(), models.NotificationRequest{
		RecipientID: "500",
		Role:        models.RoleDriver,
		Type:        models.NotificationDocumentApproved,
		Context:     map[string]string{"document_type": "License"},
	})

	require.True(t, ok)
	sent := f.driverSender.messages()
	require.Len(t, sent, 1)
	require.Equal(t,
		f.format(t, "driver.document_approved", "eng", map[string]string{"document_type": "License"}),
		sent[0].text,
	)
}

func TestDispatchDocumentRejectedDefaultsDocumentType(t *testing.T) {
	f := newNotifyFixture(t)

	ok := f.service.Dispatch(context.Background(), models.NotificationRequest{
		RecipientID: "500",
		Role:        models.RoleDriver,
		Type:        models.NotificationDocumentRejected,
	})

	require.True(t, ok)
	sent := f.driverSender.messages()
	require.Len(t, sent, 1)
	require.Contains(t, sent[0].text, "Document")
}

func TestDriverVerifiedSendsTextThenMenu(t *testing.T) {
	f := newNotifyFixture(t)
	f.users.users["500"] = &models.User{TelegramID: "500", Language: "kaz"}
	f.drivers.drivers["500"] = &models.Driver{TelegramID: "500", IsOnline: false, IsVerified: true}

	ok := f.service.Dispatch(context.Background(), models.NotificationRequest{
		RecipientID: "500",
		Role:        models.RoleDriver,
		Type:        models.NotificationDriverVerified,
	})

	require.True(t, ok)
	sent := f.driverSender.messages()
	require.Len(t, sent, 2)

	require.Equal(t, f.format(t, "driver.driver_fully_verified", "kaz", nil), sent[0].text)
	require.Nil(t, sent[0].layout)

	require.NotNil(t, sent[1].layout)
	goOnline, err := f.catalog.Resolve("button.go_online", "kaz")
	require.NoError(t, err)
	require.Equal(t, goOnline, sent[1].layout.Rows[0][0].Text)
}

func TestDriverVerifiedOnlineDriverGetsOfflineButton(t *testing.T) {
	f := newNotifyFixture(t)
	f.drivers.drivers["500"] = &models.Driver{TelegramID: "500", IsOnline: true}

	ok := f.service.Dispatch(context.Background(), models.NotificationRequest{
		RecipientID: "500",
		Role:        models.RoleDriver,
		Type:        models.NotificationDriverVerified,
	})

	require.True(t, ok)
	sent := f.driverSender.messages()
	require.Len(t, sent, 2)
	goOffline, err := f.catalog.Resolve("button.go_offline", "kaz")
	require.NoError(t, err)
	require.Equal(t, goOffline, sent[1].layout.Rows[0][0].Text)
}

func TestLanguageLookupFailureFallsBackToDefault(t *testing.T) {
	f := newNotifyFixture(t)
	f.users.err = fmt.Errorf("store unavailable")

	ok := f.service.Dispatch(context.Background(), models.NotificationRequest{
		RecipientID: "600",
		Role:        models.RolePassenger,
		Type:        models.NotificationNoDriversAvailable,
	})

	require.True(t, ok)
	sent := f.passengerSender.messages()
	require.Len(t, sent, 1)
	require.Equal(t, f.format(t, "passenger.no_drivers_available", "kaz", nil), sent[0].text)
}

func TestRoleTemplateFallback(t *testing.T) {
	f := newNotifyFixture(t)

	// There is no passenger.document_approved template; the driver set is the
	// documented degraded fallback.
	ok := f.service.Dispatch(context.Background(), models.NotificationRequest{
		RecipientID: "600",
		Role:        models.RolePassenger,
		Type:        models.NotificationDocumentApproved,
		Context:     map[string]string{"document_type": "ID"},
	})

	require.True(t, ok)
	sent := f.passengerSender.messages()
	require.Len(t, sent, 1)
	require.Equal(t,
		f.format(t, "driver.document_approved", "kaz", map[string]string{"document_type": "ID"}),
		sent[0].text,
	)
}

func TestNilPassengerSenderFallsBackToDriverBot(t *testing.T) {
	catalog, err := i18n.Load()
	require.NoError(t, err)
	driverSender := &fakeSender{}
	service := NewNotifyService(
		catalog, menu.NewBuilder(catalog),
		&fakeUsers{users: map[string]*models.User{}},
		&fakeDrivers{drivers: map[string]*models.Driver{}},
		driverSender, nil, 4,
	)

	ok := service.Dispatch(context.Background(), models.NotificationRequest{
		RecipientID: "600",
		Role:        models.RolePassenger,
		Type:        models.NotificationNoDriversAvailable,
	})

	require.True(t, ok)
	require.Len(t, driverSender.messages(), 1)
}

func TestDeliveryFailureReportedAsFalse(t *testing.T) {
	f := newNotifyFixture(t)
	f.driverSender.failFor = map[string]error{"500": fmt.Errorf("chat unreachable")}

	ok := f.service.Dispatch(context.Background(), models.NotificationRequest{
		RecipientID: "500",
		Role:        models.RoleDriver,
		Type:        models.NotificationDocumentApproved,
	})

	require.False(t, ok)
}

func TestBroadcastIsolatesFailures(t *testing.T) {
	f := newNotifyFixture(t)
	f.driverSender.failFor = map[string]error{"502": fmt.Errorf("chat unreachable")}

	results := f.service.Broadcast(context.Background(),
		[]string{"501", "502", "503"},
		models.RoleDriver,
		models.NotificationDocumentApproved,
		map[string]string{"document_type": "License"},
	)

	require.Len(t, results, 3)
	require.True(t, results["501"])
	require.False(t, results["502"])
	require.True(t, results["503"])
	require.Len(t, f.driverSender.messages(), 2)
}
