package types

import "time"

// Permission levels assignable to a user. Levels are compared by exact
// equality; there is no hierarchy between them.
const (
	PermissionAdmin = "admin"
	PermissionUser  = "user"
)

// User represents an account in the system.
// It contains identity, permission level, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// Email is the user's email address, stored lowercase and unique.
	Email string `json:"email" db:"email"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// PermissionLevel indicates the user's authorization level
	// within the system ("admin" or "user").
	PermissionLevel string `json:"permission_level" db:"permission_level"`

	// ShelterAffiliation optionally names the shelter the user works with.
	ShelterAffiliation string `json:"shelter_affiliation,omitempty" db:"shelter_affiliation"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
