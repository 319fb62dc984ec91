// Package events publishes notifications about entities created by commands.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmynk/expensecmd/internal/models"
)

// Event types.
const (
	TypeGroupCreated   = "group.created"
	TypeExpenseCreated = "expense.created"
)

// Event is the message body published for each created entity.
type Event struct {
	Type       string          `json:"type"`
	OwnerID    string          `json:"owner_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Group      *models.Group   `json:"group,omitempty"`
	Expense    *models.Expense `json:"expense,omitempty"`
}

// GroupCreated builds the event for a newly created group.
func GroupCreated(group *models.Group, at time.Time) Event {
	return Event{Type: TypeGroupCreated, OwnerID: group.OwnerID, OccurredAt: at.UTC(), Group: group}
}

// ExpenseCreated builds the event for a newly created expense.
func ExpenseCreated(expense *models.Expense, at time.Time) Event {
	return Event{Type: TypeExpenseCreated, OwnerID: expense.OwnerID, OccurredAt: at.UTC(), Expense: expense}
}

// ToJSON encodes the event.
func (e Event) ToJSON() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return body, nil
}

// FromJSON decodes an event.
func FromJSON(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return e, nil
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
