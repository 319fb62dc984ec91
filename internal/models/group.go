package models

import "strings"

// Group is a named collection of expenses belonging to one user.
// Within a single owner, group names are unique ignoring case and
// surrounding whitespace.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// OwnerID is the user who owns the group.
	OwnerID string `json:"owner_id"`

	// Name is the display name of the group (e.g., "Home", "Travel").
	Name string `json:"name"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}

// GroupKey returns the normalized form of a group name used for
// uniqueness checks and lookups.
func GroupKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
