package schedule

import (
	"database/sql"
	"time"
)

// StudyBlock represents a time-boxed study session in the system.
// Corresponds to the 'study_blocks' table.
type StudyBlock struct {
	ID          string // UUID, assigned by the CRUD layer
	UserID      string
	Title       string
	Description sql.NullString // To handle optional description
	StartTime   time.Time
	EndTime     time.Time
	Notified    bool
	CreatedAt   time.Time
}
