package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
	"github.com/Erdaulet0341/taxi-bots/internal/domain/repo"
	"github.com/Erdaulet0341/taxi-bots/internal/i18n"
	"github.com/Erdaulet0341/taxi-bots/internal/menu"
	"github.com/Erdaulet0341/taxi-bots/internal/session"
)

// minAddressLength is the shortest free-text input accepted as an address.
const minAddressLength = 5

// historyLimit is how many recent rides the history view renders.
const historyLimit = 10

// ChatSender pushes one message, optionally with a keyboard, to a chat. It
// is treated as unreliable: callers log failures and move on.
type ChatSender interface {
	SendMessage(ctx context.Context, chatID, text string, layout *menu.Layout) error
}

// AddressResolver turns free-text addresses into coordinates and never fails.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) (lat, lng float64)
}

// ConversationService drives the passenger booking conversation.
type ConversationService interface {
	HandleInbound(ctx context.Context, msg models.InboundMessage)
}

type conversationService struct {
	sessions   *session.Store
	catalog    *i18n.Catalog
	menus      *menu.Builder
	actions    *ActionClassifier
	geocoder   AddressResolver
	users      repo.UserRepository
	passengers repo.PassengerRepository
	rides      repo.RideRepository
	sender     ChatSender
}

func NewConversationService(
	sessions *session.Store,
	catalog *i18n.Catalog,
	menus *menu.Builder,
	geocoder AddressResolver,
	users repo.UserRepository,
	passengers repo.PassengerRepository,
	rides repo.RideRepository,
	sender ChatSender,
) ConversationService {
	return &conversationService{
		sessions:   sessions,
		catalog:    catalog,
		menus:      menus,
		actions:    NewActionClassifier(catalog),
		geocoder:   geocoder,
		users:      users,
		passengers: passengers,
		rides:      rides,
		sender:     sender,
	}
}

// HandleInbound advances the sender's session by one transition. The session
// lock is held for the whole transition, so concurrent messages from the same
// user are applied one at a time. No failure escapes: anything unexpected
// renders the generic error and resets the session to MAIN_MENU.
func (c *conversationService) HandleInbound(ctx context.Context, msg models.InboundMessage) {
	sess := c.sessions.Acquire(msg.ChatID)
	defer c.sessions.Release(msg.ChatID)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in conversation for %s: %v", msg.ChatID, r)
			c.recoverToMainMenu(ctx, sess)
		}
	}()

	if sess.State == models.StateMainMenu {
		c.refreshLanguage(ctx, sess)
	}

	var err error
	switch sess.State {
	case models.StateMainMenu:
		err = c.handleMainMenu(ctx, sess, msg)
	case models.StatePickupAddress:
		err = c.handlePickupAddress(ctx, sess, msg)
	case models.StateDestinationAddress:
		err = c.handleDestinationAddress(ctx, sess, msg)
	case models.StateConfirmRide:
		err = c.handleConfirmRide(ctx, sess, msg)
	default:
		// Unreachable with a well-formed session; treat as corruption.
		err = fmt.Errorf("session %s in undefined state %q", sess.TelegramID, sess.State)
	}
	if err != nil {
		log.Printf("Conversation error for %s in %s: %v", msg.ChatID, sess.State, err)
		c.recoverToMainMenu(ctx, sess)
	}
}

func (c *conversationService) handleMainMenu(ctx context.Context, sess *models.Session, msg models.InboundMessage) error {
	switch c.actions.Classify(msg.Text) {
	case ActionNewOrder:
		sess.ResetDraft()
		layout := c.menus.ShareLocation(sess.Language)
		if err := c.reply(ctx, sess, "enter_pickup_address", &layout); err != nil {
			return err
		}
		sess.State = models.StatePickupAddress
		return nil

	case ActionHistory:
		return c.renderHistory(ctx, sess)

	case ActionSettings:
		return c.renderSettings(ctx, sess)

	case ActionSupport:
		if err := c.reply(ctx, sess, "support_info", nil); err != nil {
			return err
		}
		return c.sendMainMenu(ctx, sess)

	default:
		if err := c.reply(ctx, sess, "unknown_command", nil); err != nil {
			return err
		}
		return c.sendMainMenu(ctx, sess)
	}
}

func (c *conversationService) handlePickupAddress(ctx context.Context, sess *models.Session, msg models.InboundMessage) error {
	// A shared location skips geocoding entirely: the coordinates are
	// already exact, only a display address has to be synthesized.
	if msg.Location != nil {
		address, err := c.catalog.Format("location_point", sess.Language, map[string]string{
			"latitude":  fmt.Sprintf("%.6f", msg.Location.Latitude),
			"longitude": fmt.Sprintf("%.6f", msg.Location.Longitude),
		})
		if err != nil {
			return err
		}
		sess.Draft.PickupAddress = address
		sess.Draft.PickupLatitude = msg.Location.Latitude
		sess.Draft.PickupLongitude = msg.Location.Longitude
		if err := c.reply(ctx, sess, "enter_destination", nil); err != nil {
			return err
		}
		sess.State = models.StateDestinationAddress
		return nil
	}

	address := strings.TrimSpace(msg.Text)
	if utf8.RuneCountInString(address) < minAddressLength {
		layout := c.menus.ShareLocation(sess.Language)
		return c.reply(ctx, sess, "invalid_address", &layout)
	}

	lat, lng := c.geocoder.Resolve(ctx, address)
	sess.Draft.PickupAddress = address
	sess.Draft.PickupLatitude = lat
	sess.Draft.PickupLongitude = lng

	if err := c.reply(ctx, sess, "enter_destination", nil); err != nil {
		return err
	}
	sess.State = models.StateDestinationAddress
	return nil
}

func (c *conversationService) handleDestinationAddress(ctx context.Context, sess *models.Session, msg models.InboundMessage) error {
	address := strings.TrimSpace(msg.Text)
	if utf8.RuneCountInString(address) < minAddressLength {
		return c.reply(ctx, sess, "invalid_address", nil)
	}

	lat, lng := c.geocoder.Resolve(ctx, address)
	sess.Draft.DestinationAddress = address
	sess.Draft.DestinationLatitude = lat
	sess.Draft.DestinationLongitude = lng

	summary, err := c.catalog.Format("ride_summary", sess.Language, map[string]string{
		"pickup":      sess.Draft.PickupAddress,
		"destination": sess.Draft.DestinationAddress,
	})
	if err != nil {
		return err
	}
	layout := c.menus.Confirmation(sess.Language)
	if err := c.sender.SendMessage(ctx, sess.TelegramID, summary, &layout); err != nil {
		return err
	}
	sess.State = models.StateConfirmRide
	return nil
}

func (c *conversationService) handleConfirmRide(ctx context.Context, sess *models.Session, msg models.InboundMessage) error {
	switch c.actions.Classify(msg.Text) {
	case ActionConfirm:
		if err := c.createRide(ctx, sess); err != nil {
			return err
		}
		if err := c.reply(ctx, sess, "ride_confirmed", nil); err != nil {
			return err
		}
		sess.ResetDraft()
		sess.State = models.StateMainMenu
		return c.sendMainMenu(ctx, sess)

	case ActionCancel:
		sess.ResetDraft()
		sess.State = models.StateMainMenu
		if err := c.reply(ctx, sess, "ride_cancelled", nil); err != nil {
			return err
		}
		return c.sendMainMenu(ctx, sess)

	default:
		summary, err := c.catalog.Format("ride_summary", sess.Language, map[string]string{
			"pickup":      sess.Draft.PickupAddress,
			"destination": sess.Draft.DestinationAddress,
		})
		if err != nil {
			return err
		}
		layout := c.menus.Confirmation(sess.Language)
		return c.sender.SendMessage(ctx, sess.TelegramID, summary, &layout)
	}
}

func (c *conversationService) renderHistory(ctx context.Context, sess *models.Session) error {
	rides, err := c.rides.ListRecent(ctx, sess.TelegramID, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list rides: %w", err)
	}

	if len(rides) == 0 {
		if err := c.reply(ctx, sess, "no_rides", nil); err != nil {
			return err
		}
		return c.sendMainMenu(ctx, sess)
	}

	title, err := c.catalog.Resolve("ride_history", sess.Language)
	if err != nil {
		return err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 %s\n\n", title)
	for i, ride := range rides {
		fmt.Fprintf(&sb, "%d. %s - %s\n",
			i+1,
			ride.CreatedAt.Format("02.01.2006 15:04"),
			c.catalog.StatusLabel(ride.Status, sess.Language),
		)
	}
	if err := c.sender.SendMessage(ctx, sess.TelegramID, sb.String(), nil); err != nil {
		return err
	}
	return c.sendMainMenu(ctx, sess)
}

func (c *conversationService) renderSettings(ctx context.Context, sess *models.Session) error {
	// Both records are required; partial profile data is never rendered.
	passenger, perr := c.passengers.GetByTelegramID(ctx, sess.TelegramID)
	user, uerr := c.users.GetByTelegramID(ctx, sess.TelegramID)
	if perr != nil || uerr != nil {
		log.Printf("Settings lookup failed for %s: passenger=%v user=%v", sess.TelegramID, perr, uerr)
		if err := c.reply(ctx, sess, "settings_error", nil); err != nil {
			return err
		}
		return c.sendMainMenu(ctx, sess)
	}

	phone := user.PhoneNumber
	if phone == "" {
		phone = "-"
	}
	text, err := c.catalog.Format("passenger_settings", sess.Language, map[string]string{
		"name":              user.FullName,
		"phone":             phone,
		"language":          strings.ToUpper(sess.Language),
		"total_rides":       fmt.Sprintf("%d", passenger.TotalRides),
		"balance":           fmt.Sprintf("%.2f", passenger.Balance),
		"registration_date": passenger.CreatedAt.Format("02.01.2006"),
	})
	if err != nil {
		return err
	}
	if err := c.sender.SendMessage(ctx, sess.TelegramID, text, nil); err != nil {
		return err
	}
	return c.sendMainMenu(ctx, sess)
}

func (c *conversationService) createRide(ctx context.Context, sess *models.Session) error {
	passenger, err := c.passengers.GetByTelegramID(ctx, sess.TelegramID)
	if err != nil {
		return fmt.Errorf("failed to resolve passenger: %w", err)
	}
	ride := &models.Ride{
		ID:                   uuid.NewString(),
		RideNumber:           generateRideNumber(),
		PassengerID:          passenger.ID,
		Status:               models.StatusRequested,
		PickupAddress:        sess.Draft.PickupAddress,
		PickupLatitude:       sess.Draft.PickupLatitude,
		PickupLongitude:      sess.Draft.PickupLongitude,
		DestinationAddress:   sess.Draft.DestinationAddress,
		DestinationLatitude:  sess.Draft.DestinationLatitude,
		DestinationLongitude: sess.Draft.DestinationLongitude,
	}
	if err := c.rides.CreateRide(ctx, ride); err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}
	return nil
}

// refreshLanguage re-reads the user's language at the start of a conversation
// cycle so a changed profile setting takes effect on the next interaction.
func (c *conversationService) refreshLanguage(ctx context.Context, sess *models.Session) {
	user, err := c.users.GetByTelegramID(ctx, sess.TelegramID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Printf("Language lookup failed for %s: %v", sess.TelegramID, err)
		}
		return
	}
	if user.Language != "" {
		sess.Language = c.catalog.NormalizeLanguage(user.Language)
	}
}

func (c *conversationService) reply(ctx context.Context, sess *models.Session, key string, layout *menu.Layout) error {
	text, err := c.catalog.Resolve(key, sess.Language)
	if err != nil {
		return err
	}
	return c.sender.SendMessage(ctx, sess.TelegramID, text, layout)
}

func (c *conversationService) sendMainMenu(ctx context.Context, sess *models.Session) error {
	text, err := c.catalog.Resolve("main_menu", sess.Language)
	if err != nil {
		return err
	}
	layout := c.menus.MainMenu(models.RolePassenger, sess.Language, models.DomainSnapshot{})
	return c.sender.SendMessage(ctx, sess.TelegramID, text, &layout)
}

// recoverToMainMenu renders the generic failure message and resets the
// session to the main menu, discarding any draft in progress.
func (c *conversationService) recoverToMainMenu(ctx context.Context, sess *models.Session) {
	sess.ResetDraft()
	sess.State = models.StateMainMenu

	text, err := c.catalog.Resolve("generic_error", sess.Language)
	if err != nil {
		log.Printf("Failed to resolve generic error message: %v", err)
		return
	}
	layout := c.menus.MainMenu(models.RolePassenger, sess.Language, models.DomainSnapshot{})
	if err := c.sender.SendMessage(ctx, sess.TelegramID, text, &layout); err != nil {
		log.Printf("Failed to deliver error message to %s: %v", sess.TelegramID, err)
	}
}

func generateRideNumber() string {
	return fmt.Sprintf("RIDE_%s", time.Now().Format("20060102_150405"))
}
