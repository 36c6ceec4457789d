package models

import "time"

type Driver struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	TelegramID string    `json:"telegram_id"`
	IsOnline   bool      `json:"is_online"`
	IsVerified bool      `json:"is_verified"`
	Rating     float64   `json:"rating"`
	TotalRides int       `json:"total_rides"`
}

type Passenger struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	TelegramID string    `json:"telegram_id"`
	TotalRides int       `json:"total_rides"`
	Balance    float64   `json:"balance"`
}

// DomainSnapshot is the minimal read view fetched fresh at render time.
// It is never cached: the online flag gates the "go online/offline" button
// label and changes between interactions.
type DomainSnapshot struct {
	DriverOnline bool
	TotalRides   int
	Balance      float64
}
