package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
)

type UserRepository interface {
	GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error)
}

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	query := `
		SELECT id, created_at, updated_at, telegram_id, full_name, phone_number, language, role
		FROM users WHERE telegram_id = $1
	`

	var user models.User
	err := r.db.QueryRow(ctx, query, telegramID).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.TelegramID,
		&user.FullName, &user.PhoneNumber, &user.Language, &user.Role,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}
