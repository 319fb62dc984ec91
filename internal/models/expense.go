package models

import "time"

// DateLayout is the calendar-date format used to persist expense dates.
const DateLayout = "2006-01-02"

// Expense is a single amount logged against a group.
// Expenses are append-only from the command pipeline's point of view.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// OwnerID is the user who logged the expense.
	OwnerID string `json:"owner_id"`

	// GroupID references the group this expense belongs to.
	GroupID string `json:"group_id"`

	// Description is what the money was spent on (e.g., "rent").
	Description string `json:"description"`

	// AmountCents is the amount in minor units. Always positive.
	AmountCents int64 `json:"amount_cents"`

	// Date is the calendar date of the expense, at midnight UTC.
	Date time.Time `json:"date"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"created_at"`
}
