package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
)

type DriverRepository interface {
	GetByTelegramID(ctx context.Context, telegramID string) (*models.Driver, error)
}

type driverRepository struct {
	db *pgxpool.Pool
}

func NewDriverRepository(db *pgxpool.Pool) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.Driver, error) {
	query := `
		SELECT id, created_at, updated_at, telegram_id, is_online, is_verified, rating, total_rides
		FROM drivers WHERE telegram_id = $1
	`

	var driver models.Driver
	err := r.db.QueryRow(ctx, query, telegramID).Scan(
		&driver.ID, &driver.CreatedAt, &driver.UpdatedAt, &driver.TelegramID,
		&driver.IsOnline, &driver.IsVerified, &driver.Rating, &driver.TotalRides,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &driver, nil
}
