package models

import "time"

// SessionState is the passenger's position in the booking conversation.
type SessionState string

const (
	StateMainMenu           SessionState = "MAIN_MENU"
	StatePickupAddress      SessionState = "PICKUP_ADDRESS"
	StateDestinationAddress SessionState = "DESTINATION_ADDRESS"
	StateConfirmRide        SessionState = "CONFIRM_RIDE"
)

// DraftRide is the partial ride a passenger is assembling. Fields are filled
// pickup-first: destination fields are never read before pickup is written.
type DraftRide struct {
	PickupAddress        string
	PickupLatitude       float64
	PickupLongitude      float64
	DestinationAddress   string
	DestinationLatitude  float64
	DestinationLongitude float64
}

// Session is per-user volatile conversational state. It lives only in the
// session store, never in the database.
type Session struct {
	TelegramID string
	State      SessionState
	Language   string
	Draft      DraftRide
	UpdatedAt  time.Time
}

// ResetDraft clears the draft after a terminal transition.
func (s *Session) ResetDraft() {
	s.Draft = DraftRide{}
}

// Location is a raw coordinate pair attached to an inbound message.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// InboundMessage is one chat message entering the conversation flow.
type InboundMessage struct {
	ChatID   string    `json:"chat_id"`
	Text     string    `json:"text"`
	Location *Location `json:"location,omitempty"`
}
