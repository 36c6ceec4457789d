package models

import "time"

type RideStatus string

const (
	StatusRequested  RideStatus = "REQUESTED"
	StatusMatched    RideStatus = "MATCHED"
	StatusEnRoute    RideStatus = "EN_ROUTE"
	StatusArrived    RideStatus = "ARRIVED"
	StatusInProgress RideStatus = "IN_PROGRESS"
	StatusCompleted  RideStatus = "COMPLETED"
	StatusCancelled  RideStatus = "CANCELLED"
)

type Ride struct {
	ID                   string     `json:"id"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	RideNumber           string     `json:"ride_number"`
	PassengerID          string     `json:"passenger_id"`
	Status               RideStatus `json:"status"`
	PickupAddress        string     `json:"pickup_address"`
	PickupLatitude       float64    `json:"pickup_latitude"`
	PickupLongitude      float64    `json:"pickup_longitude"`
	DestinationAddress   string     `json:"destination_address"`
	DestinationLatitude  float64    `json:"destination_latitude"`
	DestinationLongitude float64    `json:"destination_longitude"`
}
