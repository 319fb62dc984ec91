package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/expensecmd/internal/models"
	"github.com/mmynk/expensecmd/internal/storage"
)

// EntityStore is the part of storage.Store the executor needs.
type EntityStore interface {
	FindGroup(ctx context.Context, ownerID, name string) (*models.Group, error)
	CreateGroup(ctx context.Context, group *models.Group) error
	CreateExpense(ctx context.Context, expense *models.Expense) error
}

// Actor is the user a command runs on behalf of.
type Actor struct {
	UserID string
	// Location resolves "today" for expenses without a date. Nil means UTC.
	Location *time.Location
}

// Outcome is what an executed intent produced.
type Outcome struct {
	Group        *models.Group
	Expense      *models.Expense
	GroupCreated bool
}

// Executor applies validated intents to an EntityStore.
type Executor struct {
	store EntityStore
	now   func() time.Time
}

// NewExecutor creates an Executor backed by store.
func NewExecutor(store EntityStore) *Executor {
	return &Executor{store: store, now: time.Now}
}

// Execute runs intent for actor. Store failures come back as *ExecutionError.
func (e *Executor) Execute(ctx context.Context, intent Intent, actor Actor) (Outcome, error) {
	switch in := intent.(type) {
	case CreateGroup:
		group, created, err := e.findOrCreateGroup(ctx, actor.UserID, in.Name)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Group: group, GroupCreated: created}, nil

	case AddExpense:
		group, created, err := e.findOrCreateGroup(ctx, actor.UserID, in.GroupName)
		if err != nil {
			return Outcome{}, err
		}

		date := Today(e.now(), actor.Location)
		if in.Date != nil {
			date = *in.Date
		}
		expense := &models.Expense{
			OwnerID:     actor.UserID,
			GroupID:     group.ID,
			Description: in.Description,
			AmountCents: in.AmountCents,
			Date:        date,
		}
		if err := e.store.CreateExpense(ctx, expense); err != nil {
			return Outcome{}, storeFailure("create expense", err)
		}
		return Outcome{Group: group, Expense: expense, GroupCreated: created}, nil
	}

	return Outcome{}, fmt.Errorf("unsupported intent %T", intent)
}

// findOrCreateGroup returns the owner's group with the given name, creating
// it if absent. Losing a create race to a concurrent caller is not an error:
// the winner's group is re-fetched and returned.
func (e *Executor) findOrCreateGroup(ctx context.Context, ownerID, name string) (*models.Group, bool, error) {
	group, err := e.store.FindGroup(ctx, ownerID, name)
	if err != nil {
		return nil, false, storeFailure("find group", err)
	}
	if group != nil {
		return group, false, nil
	}

	group = &models.Group{OwnerID: ownerID, Name: name}
	err = e.store.CreateGroup(ctx, group)
	if err == nil {
		return group, true, nil
	}
	if !errors.Is(err, storage.ErrGroupExists) {
		return nil, false, storeFailure("create group", err)
	}

	existing, ferr := e.store.FindGroup(ctx, ownerID, name)
	if ferr != nil {
		return nil, false, storeFailure("find group after conflict", ferr)
	}
	if existing == nil {
		return nil, false, storeFailure("find group after conflict", err)
	}
	return existing, false, nil
}
