package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
)

type RideRepository interface {
	CreateRide(ctx context.Context, ride *models.Ride) error
	ListRecent(ctx context.Context, telegramID string, limit int) ([]models.Ride, error)
}

type rideRepository struct {
	db *pgxpool.Pool
}

func NewRideRepository(db *pgxpool.Pool) RideRepository {
	return &rideRepository{db: db}
}

func (r *rideRepository) CreateRide(ctx context.Context, ride *models.Ride) error {
	query := `
		INSERT INTO rides (
			id, ride_number, passenger_id, status,
			pickup_address, pickup_latitude, pickup_longitude,
			destination_address, destination_latitude, destination_longitude
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		ride.ID,
		ride.RideNumber,
		ride.PassengerID,
		ride.Status,
		ride.PickupAddress,
		ride.PickupLatitude,
		ride.PickupLongitude,
		ride.DestinationAddress,
		ride.DestinationLatitude,
		ride.DestinationLongitude,
	)
	return err
}

func (r *rideRepository) ListRecent(ctx context.Context, telegramID string, limit int) ([]models.Ride, error) {
	query := `
		SELECT r.id, r.created_at, r.updated_at, r.ride_number, r.passenger_id, r.status,
			   r.pickup_address, r.pickup_latitude, r.pickup_longitude,
			   r.destination_address, r.destination_latitude, r.destination_longitude
		FROM rides r
		JOIN passengers p ON p.id = r.passenger_id
		WHERE p.telegram_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, telegramID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []models.Ride
	for rows.Next() {
		var ride models.Ride
		err := rows.Scan(
			&ride.ID, &ride.CreatedAt, &ride.UpdatedAt, &ride.RideNumber,
			&ride.PassengerID, &ride.Status,
			&ride.PickupAddress, &ride.PickupLatitude, &ride.PickupLongitude,
			&ride.DestinationAddress, &ride.DestinationLatitude, &ride.DestinationLongitude,
		)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}
