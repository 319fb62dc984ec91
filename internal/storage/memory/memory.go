// Package memory provides an in-process implementation of storage.Store.
// It is the backend used by tests and by DATA_BACKEND=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/expensecmd/internal/models"
	"github.com/mmynk/expensecmd/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps groups and expenses in maps guarded by a single mutex.
// Returned records are copies; callers cannot mutate stored state.
type Store struct {
	mu       sync.RWMutex
	groups   map[string]models.Group
	byName   map[string]string // owner + "\x00" + name key -> group ID
	expenses map[string]models.Expense
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		groups:   make(map[string]models.Group),
		byName:   make(map[string]string),
		expenses: make(map[string]models.Expense),
	}
}

func nameIndex(ownerID, name string) string {
	return ownerID + "\x00" + models.GroupKey(name)
}

// FindGroup looks up a group by owner and normalized name.
func (s *Store) FindGroup(_ context.Context, ownerID, name string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[nameIndex(ownerID, name)]
	if !ok {
		return nil, nil
	}
	g := s.groups[id]
	return &g, nil
}

// GetGroup retrieves a group by ID.
func (s *Store) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return &g, nil
}

// ListGroups returns the owner's groups ordered by name.
func (s *Store) ListGroups(_ context.Context, ownerID string) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []*models.Group
	for _, g := range s.groups {
		if g.OwnerID == ownerID {
			g := g
			groups = append(groups, &g)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return models.GroupKey(groups[i].Name) < models.GroupKey(groups[j].Name)
	})
	return groups, nil
}

// CreateGroup stores a new group, enforcing (owner, name) uniqueness.
func (s *Store) CreateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := nameIndex(group.OwnerID, group.Name)
	if _, taken := s.byName[key]; taken {
		return fmt.Errorf("group %q: %w", group.Name, storage.ErrGroupExists)
	}
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	s.groups[group.ID] = *group
	s.byName[key] = group.ID
	return nil
}

// UpdateGroup renames a group.
func (s *Store) UpdateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.groups[group.ID]
	if !ok {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
	}
	oldKey := nameIndex(current.OwnerID, current.Name)
	newKey := nameIndex(current.OwnerID, group.Name)
	if id, taken := s.byName[newKey]; taken && id != group.ID {
		return fmt.Errorf("group %q: %w", group.Name, storage.ErrGroupExists)
	}
	delete(s.byName, oldKey)
	current.Name = group.Name
	s.groups[group.ID] = current
	s.byName[newKey] = group.ID
	return nil
}

// DeleteGroup removes a group and its expenses.
func (s *Store) DeleteGroup(_ context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	delete(s.groups, groupID)
	delete(s.byName, nameIndex(g.OwnerID, g.Name))
	for id, e := range s.expenses {
		if e.GroupID == groupID {
			delete(s.expenses, id)
		}
	}
	return nil
}

// CreateExpense stores a new expense. The referenced group must exist.
func (s *Store) CreateExpense(_ context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[expense.GroupID]; !ok {
		return fmt.Errorf("group %s: %w", expense.GroupID, storage.ErrNotFound)
	}
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	s.expenses[expense.ID] = *expense
	return nil
}

// ListExpenses returns the owner's expenses, newest date first.
func (s *Store) ListExpenses(_ context.Context, ownerID, groupID string) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expenses []*models.Expense
	for _, e := range s.expenses {
		if e.OwnerID != ownerID || (groupID != "" && e.GroupID != groupID) {
			continue
		}
		e := e
		expenses = append(expenses, &e)
	}
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.After(expenses[j].Date)
		}
		return expenses[i].CreatedAt > expenses[j].CreatedAt
	})
	return expenses, nil
}

// DeleteExpense removes an expense by ID.
func (s *Store) DeleteExpense(_ context.Context, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[expenseID]; !ok {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	delete(s.expenses, expenseID)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
