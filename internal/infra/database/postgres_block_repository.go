// internal/infra/database/postgres_block_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quiet_hours_notifier/internal/domain/schedule"
)

// Custom errors specific to study block repository
var ErrBlockNotFound = fmt.Errorf("study block not found")

type PostgresBlockRepository struct {
	db *sql.DB
}

func NewPostgresBlockRepository(db *sql.DB) *PostgresBlockRepository {
	return &PostgresBlockRepository{db: db}
}

// ListDue returns unnotified blocks with start_time in the half-open window
// [from, until). Ordered by start_time so runs log in a stable order.
func (r *PostgresBlockRepository) ListDue(ctx context.Context, from, until time.Time) ([]*schedule.StudyBlock, error) {
	query := `SELECT id, user_id, title, description, start_time, end_time, notified, created_at
               FROM study_blocks
               WHERE start_time >= $1 AND start_time < $2 AND notified = FALSE
               ORDER BY start_time ASC`

	rows, err := r.db.QueryContext(ctx, query, from, until)
	if err != nil {
		return nil, fmt.Errorf("error querying due study blocks: %w", err)
	}
	defer rows.Close()

	blocks := make([]*schedule.StudyBlock, 0)
	for rows.Next() {
		b := &schedule.StudyBlock{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.Description, &b.StartTime, &b.EndTime, &b.Notified, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning due study block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due study blocks: %w", err)
	}
	return blocks, nil
}

// MarkNotified flips the notified flag for the given block. Setting TRUE over
// TRUE is a plain row update, so a retried mark for the same id succeeds; only
// a deleted row reports ErrBlockNotFound.
func (r *PostgresBlockRepository) MarkNotified(ctx context.Context, id string) error {
	query := `UPDATE study_blocks SET notified = TRUE WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error marking study block %s notified: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for study block %s: %w", id, err)
	}
	if affected == 0 {
		return ErrBlockNotFound
	}
	return nil
}
