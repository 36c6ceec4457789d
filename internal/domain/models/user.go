package models

import "time"

type Role string

const (
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
)

// User struct
type User struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	TelegramID  string    `json:"telegram_id"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Language    string    `json:"language"` // kaz, rus, eng
	Role        Role      `json:"role"`
}
