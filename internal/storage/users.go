package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldpay/dunning/internal/model"
)

// CreateUser inserts a new user identity.
func (db *DB) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO users (id, full_name, is_active, created_at)
		 VALUES ($1, $2, $3, $4)`,
		u.ID, u.FullName, u.Active, u.CreatedAt,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("storage: create user: %w", err)
	}
	return u, nil
}

// GetUserByID retrieves a single user.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var u model.User
	err := db.pool.QueryRow(ctx,
		`SELECT id, full_name, is_active, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.FullName, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, fmt.Errorf("storage: user %s: %w", id, ErrNotFound)
		}
		return model.User{}, fmt.Errorf("storage: get user: %w", err)
	}
	return u, nil
}

// UsersByIDs bulk-fetches users keyed by id. Ids that don't resolve are
// simply absent from the map; the caller decides how to degrade.
func (db *DB) UsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	result := make(map[uuid.UUID]model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, full_name, is_active, created_at FROM users WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: users by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Active, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan user: %w", err)
		}
		result[u.ID] = u
	}
	return result, rows.Err()
}
