package profile

import (
	"database/sql"
)

// Profile holds the contact details for a block owner.
// Corresponds to the 'profiles' table, read-only from this service.
type Profile struct {
	UserID   string
	Email    string
	FullName sql.NullString // To handle optional display name
}
