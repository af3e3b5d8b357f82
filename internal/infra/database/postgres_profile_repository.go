package database

import (
	"context"
	"database/sql"
	"fmt"

	"quiet_hours_notifier/internal/domain/profile"
)

// Custom errors
var ErrProfileNotFound = fmt.Errorf("recipient profile not found")

type PostgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID string) (*profile.Profile, error) {
	query := `SELECT user_id, email, full_name FROM profiles WHERE user_id = $1`
	p := &profile.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.Email, &p.FullName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error getting profile by user ID: %w", err)
	}
	return p, nil
}
