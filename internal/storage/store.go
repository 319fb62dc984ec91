// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/expensecmd/internal/models"
)

var (
	// ErrNotFound is returned when a record addressed by ID does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrGroupExists is returned by CreateGroup and UpdateGroup when the owner
	// already has a group with the same name.
	ErrGroupExists = errors.New("group already exists for owner")
)

// Store defines the interface for group and expense storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the command layer.
type Store interface {
	// FindGroup looks up a group by owner and name (case-insensitive).
	// Returns nil and no error if the owner has no such group.
	FindGroup(ctx context.Context, ownerID, name string) (*models.Group, error)

	// GetGroup retrieves a group by its ID.
	// Returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns every group owned by ownerID, ordered by name.
	ListGroups(ctx context.Context, ownerID string) ([]*models.Group, error)

	// CreateGroup persists a new group.
	// The group.ID and group.CreatedAt fields will be populated by the store.
	// Returns ErrGroupExists if (owner, name) is already taken.
	CreateGroup(ctx context.Context, group *models.Group) error

	// UpdateGroup renames an existing group.
	// Returns ErrNotFound if the group does not exist.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and all of its expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists a new expense.
	// The expense.ID and expense.CreatedAt fields will be populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpenses returns the owner's expenses, newest date first.
	// An empty groupID lists across all groups.
	ListExpenses(ctx context.Context, ownerID, groupID string) ([]*models.Expense, error)

	// DeleteExpense removes a single expense.
	DeleteExpense(ctx context.Context, expenseID string) error

	// Close releases any resources held by the store.
	Close() error
}
