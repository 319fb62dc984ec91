package models

// User is the identity commands are executed for.
// Accounts are issued elsewhere; this service only needs what a token carries.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address.
	Email string

	// TimeZone is an IANA zone name (e.g., "Europe/Rome"). Empty means UTC.
	TimeZone string
}
