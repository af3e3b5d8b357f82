package schedule

import (
	"context"
	"time"
)

// Repository defines the operations the reminder dispatch job needs against
// persisted study blocks. The CRUD layer owns creation and deletion; this
// side only reads blocks and flips their notified flag.
type Repository interface {
	// ListDue returns every block with start_time in [from, until) that has
	// not been notified yet. An empty result is success, not an error.
	ListDue(ctx context.Context, from, until time.Time) ([]*StudyBlock, error)
	// MarkNotified sets notified = TRUE for the given block. It must be safe
	// to call twice for the same id (setting TRUE over TRUE is a no-op
	// success) and returns ErrBlockNotFound if the row was deleted.
	MarkNotified(ctx context.Context, id string) error
}
