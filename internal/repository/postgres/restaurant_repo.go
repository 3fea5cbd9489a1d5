package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"winelist/internal/domain"
	"winelist/internal/port"
)

type restaurantRepo struct {
	db *sqlx.DB
}

// NewRestaurantRepo creates a PostgreSQL-backed RestaurantRepository over the
// platform's ristoranti table.
func NewRestaurantRepo(db *sqlx.DB) port.RestaurantRepository {
	return &restaurantRepo{db: db}
}

func (r *restaurantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	err := r.db.GetContext(ctx, &rest,
		`SELECT id, owner_id, name, subscription_plan, subscription_status FROM ristoranti WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("restaurantRepo.GetByID: %w", err)
	}
	return &rest, nil
}
