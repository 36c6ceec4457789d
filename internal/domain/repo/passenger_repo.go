package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
)

type PassengerRepository interface {
	GetByTelegramID(ctx context.Context, telegramID string) (*models.Passenger, error)
}

type passengerRepository struct {
	db *pgxpool.Pool
}

func NewPassengerRepository(db *pgxpool.Pool) PassengerRepository {
	return &passengerRepository{db: db}
}

func (r *passengerRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.Passenger, error) {
	query := `
		SELECT id, created_at, telegram_id, total_rides, balance
		FROM passengers WHERE telegram_id = $1
	`

	var passenger models.Passenger
	err := r.db.QueryRow(ctx, query, telegramID).Scan(
		&passenger.ID, &passenger.CreatedAt, &passenger.TelegramID,
		&passenger.TotalRides, &passenger.Balance,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &passenger, nil
}
