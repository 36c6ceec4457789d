package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
	"github.com/Erdaulet0341/taxi-bots/internal/domain/repo"
	"github.com/Erdaulet0341/taxi-bots/internal/i18n"
	"github.com/Erdaulet0341/taxi-bots/internal/menu"
)

// ErrUnknownType rejects notification types outside the supported set.
var ErrUnknownType = errors.New("unknown notification type")

// defaultDocumentType labels document notifications whose context omits one.
const defaultDocumentType = "Document"

// NotifyService pushes localized, state-dependent messages to drivers and
// passengers. Dispatch never propagates a failure: delivery is a best-effort
// side effect of the triggering domain operation.
type NotifyService interface {
	Dispatch(ctx context.Context, req models.NotificationRequest) bool
	Broadcast(ctx context.Context, recipients []string, role models.Role, typ models.NotificationType, payload map[string]string) map[string]bool
}

type notifyService struct {
	catalog         *i18n.Catalog
	menus           *menu.Builder
	users           repo.UserRepository
	drivers         repo.DriverRepository
	driverSender    ChatSender
	passengerSender ChatSender
	broadcastLimit  int
}

func NewNotifyService(
	catalog *i18n.Catalog,
	menus *menu.Builder,
	users repo.UserRepository,
	drivers repo.DriverRepository,
	driverSender ChatSender,
	passengerSender ChatSender,
	broadcastLimit int,
) NotifyService {
	if passengerSender == nil {
		// Single-bot deployments push passenger notifications through the
		// driver bot, mirroring the token fallback at startup.
		passengerSender = driverSender
	}
	if broadcastLimit <= 0 {
		broadcastLimit = 8
	}
	return &notifyService{
		catalog:         catalog,
		menus:           menus,
		users:           users,
		drivers:         drivers,
		driverSender:    driverSender,
		passengerSender: passengerSender,
		broadcastLimit:  broadcastLimit,
	}
}

// Dispatch formats and delivers one notification. All failures are caught,
// logged and reported as the boolean outcome; the caller's domain operation
// is never aborted by a push.
func (s *notifyService) Dispatch(ctx context.Context, req models.NotificationRequest) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic dispatching %s to %s: %v", req.Type, req.RecipientID, r)
			ok = false
		}
	}()

	lang := s.recipientLanguage(ctx, req.RecipientID)

	switch req.Type {
	case models.NotificationDocumentApproved, models.NotificationDocumentRejected:
		return s.sendDocumentDecision(ctx, req, lang)
	case models.NotificationDriverVerified:
		return s.sendDriverVerified(ctx, req, lang)
	case models.NotificationNoDriversAvailable:
		return s.sendSimple(ctx, req, lang, nil)
	default:
		log.Printf("Unknown notification type %q for %s: %v", req.Type, req.RecipientID, ErrUnknownType)
		return false
	}
}

// Broadcast dispatches the same notification to many recipients with a
// bounded worker pool. Each delivery is isolated: one recipient's failure
// never affects the others, and a stuck delivery only occupies one worker.
func (s *notifyService) Broadcast(ctx context.Context, recipients []string, role models.Role, typ models.NotificationType, payload map[string]string) map[string]bool {
	results := make(map[string]bool, len(recipients))
	var mu sync.Mutex

	g := &errgroup.Group{}
	g.SetLimit(s.broadcastLimit)
	for _, id := range recipients {
		id := id
		g.Go(func() error {
			delivered := s.Dispatch(ctx, models.NotificationRequest{
				RecipientID: id,
				Role:        role,
				Type:        typ,
				Context:     payload,
			})
			mu.Lock()
			results[id] = delivered
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return results
}

func (s *notifyService) sendDocumentDecision(ctx context.Context, req models.NotificationRequest, lang string) bool {
	docType := req.Context["document_type"]
	if docType == "" {
		docType = defaultDocumentType
	}
	text, err := s.formatForRole("document_"+decision(req.Type), req.Role, lang, map[string]string{
		"document_type": docType,
	})
	if err != nil {
		log.Printf("Failed to format %s for %s: %v", req.Type, req.RecipientID, err)
		return false
	}
	if err := s.senderFor(req.Role).SendMessage(ctx, req.RecipientID, text, nil); err != nil {
		log.Printf("Failed to deliver %s to %s: %v", req.Type, req.RecipientID, err)
		return false
	}
	log.Printf("Sent %s notification to %s %s", req.Type, req.Role, req.RecipientID)
	return true
}

// sendDriverVerified sends the verification text followed by a freshly built
// main menu. Ordering matters: the confirmation must arrive before the menu.
func (s *notifyService) sendDriverVerified(ctx context.Context, req models.NotificationRequest, lang string) bool {
	text, err := s.formatForRole("driver_fully_verified", req.Role, lang, nil)
	if err != nil {
		log.Printf("Failed to format %s for %s: %v", req.Type, req.RecipientID, err)
		return false
	}
	if err := s.senderFor(req.Role).SendMessage(ctx, req.RecipientID, text, nil); err != nil {
		log.Printf("Failed to deliver %s to %s: %v", req.Type, req.RecipientID, err)
		return false
	}

	snapshot := s.driverSnapshot(ctx, req.RecipientID)
	menuText, err := s.catalog.Resolve("main_menu", lang)
	if err != nil {
		log.Printf("Failed to resolve main menu for %s: %v", req.RecipientID, err)
		return false
	}
	layout := s.menus.MainMenu(models.RoleDriver, lang, snapshot)
	if err := s.senderFor(req.Role).SendMessage(ctx, req.RecipientID, menuText, &layout); err != nil {
		log.Printf("Failed to deliver menu refresh to %s: %v", req.RecipientID, err)
		return false
	}
	log.Printf("Sent %s notification and main menu to driver %s", req.Type, req.RecipientID)
	return true
}

func (s *notifyService) sendSimple(ctx context.Context, req models.NotificationRequest, lang string, vars map[string]string) bool {
	text, err := s.formatForRole(string(req.Type), req.Role, lang, vars)
	if err != nil {
		log.Printf("Failed to format %s for %s: %v", req.Type, req.RecipientID, err)
		return false
	}
	if err := s.senderFor(req.Role).SendMessage(ctx, req.RecipientID, text, nil); err != nil {
		log.Printf("Failed to deliver %s to %s: %v", req.Type, req.RecipientID, err)
		return false
	}
	log.Printf("Sent %s notification to %s %s", req.Type, req.Role, req.RecipientID)
	return true
}

// formatForRole resolves a role-prefixed template, falling back to the other
// role's set when the role has no template of its own.
func (s *notifyService) formatForRole(key string, role models.Role, lang string, vars map[string]string) (string, error) {
	text, err := s.catalog.Format(string(role)+"."+key, lang, vars)
	var missing *i18n.MissingKeyError
	if errors.As(err, &missing) {
		text, err = s.catalog.Format(string(otherRole(role))+"."+key, lang, vars)
	}
	return text, err
}

// recipientLanguage looks the recipient up in the user store. Notification
// delivery is never blocked on an unresolved language: any failure falls back
// to the default language. Missing rows and store outages behave identically
// but log differently so they can be told apart.
func (s *notifyService) recipientLanguage(ctx context.Context, recipientID string) string {
	user, err := s.users.GetByTelegramID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Printf("No user record for %s, using default language", recipientID)
		} else {
			log.Printf("Warning: language lookup failed for %s, using default language: %v", recipientID, err)
		}
		return s.catalog.DefaultLang()
	}
	return s.catalog.NormalizeLanguage(user.Language)
}

// driverSnapshot fetches the live driver state for menu rendering. It is
// fetched fresh on every dispatch; a lookup failure renders the offline menu.
func (s *notifyService) driverSnapshot(ctx context.Context, recipientID string) models.DomainSnapshot {
	driver, err := s.drivers.GetByTelegramID(ctx, recipientID)
	if err != nil {
		log.Printf("Driver snapshot lookup failed for %s: %v", recipientID, err)
		return models.DomainSnapshot{}
	}
	return models.DomainSnapshot{
		DriverOnline: driver.IsOnline,
		TotalRides:   driver.TotalRides,
	}
}

func (s *notifyService) senderFor(role models.Role) ChatSender {
	if role == models.RoleDriver {
		return s.driverSender
	}
	return s.passengerSender
}

func otherRole(role models.Role) models.Role {
	if role == models.RoleDriver {
		return models.RolePassenger
	}
	return models.RoleDriver
}

func decision(typ models.NotificationType) string {
	if typ == models.NotificationDocumentApproved {
		return "approved"
	}
	return "rejected"
}
