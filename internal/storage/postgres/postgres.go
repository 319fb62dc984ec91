// Package postgres provides a PostgreSQL-backed implementation of storage.Store
// built on pgx connection pooling.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/expensecmd/internal/models"
	"github.com/mmynk/expensecmd/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store implements storage.Store on a pgx pool.
type Store struct {
	db *pgxpool.Pool
}

// New runs migrations against dsn, then connects and verifies the connection.
func New(ctx context.Context, dsn string) (*Store, error) {
	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: pool}, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

func (s *Store) FindGroup(ctx context.Context, ownerID, name string) (*models.Group, error) {
	const q = `
select id, owner_id, name, created_at
from groups
where owner_id = $1 and name_key = $2;
`
	var g models.Group
	err := s.db.QueryRow(ctx, q, ownerID, models.GroupKey(name)).
		Scan(&g.ID, &g.OwnerID, &g.Name, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	return &g, nil
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	const q = `
select id, owner_id, name, created_at
from groups
where id = $1;
`
	var g models.Group
	err := s.db.QueryRow(ctx, q, groupID).Scan(&g.ID, &g.OwnerID, &g.Name, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &g, nil
}

func (s *Store) ListGroups(ctx context.Context, ownerID string) ([]*models.Group, error) {
	const q = `
select id, owner_id, name, created_at
from groups
where owner_id = $1
order by name_key;
`
	rows, err := s.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var out []*models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		out = append(out, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return out, nil
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	const q = `
insert into groups (id, owner_id, name, name_key, created_at)
values ($1, $2, $3, $4, $5);
`
	_, err := s.db.Exec(ctx, q, group.ID, group.OwnerID, group.Name, models.GroupKey(group.Name), group.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("group %q: %w", group.Name, storage.ErrGroupExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

func (s *Store) UpdateGroup(ctx context.Context, group *models.Group) error {
	const q = `
update groups set name = $2, name_key = $3
where id = $1;
`
	tag, err := s.db.Exec(ctx, q, group.ID, group.Name, models.GroupKey(group.Name))
	if isUniqueViolation(err) {
		return fmt.Errorf("group %q: %w", group.Name, storage.ErrGroupExists)
	}
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	tag, err := s.db.Exec(ctx, `delete from groups where id = $1;`, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	const q = `
insert into expenses (id, owner_id, group_id, description, amount_cents, date, created_at)
values ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := s.db.Exec(ctx, q, expense.ID, expense.OwnerID, expense.GroupID,
		expense.Description, expense.AmountCents, expense.Date, expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, ownerID, groupID string) ([]*models.Expense, error) {
	const q = `
select id, owner_id, group_id, description, amount_cents, date, created_at
from expenses
where owner_id = $1 and ($2 = '' or group_id = $2)
order by date desc, created_at desc;
`
	rows, err := s.db.Query(ctx, q, ownerID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var out []*models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.GroupID, &e.Description,
			&e.AmountCents, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Date = e.Date.UTC()
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	tag, err := s.db.Exec(ctx, `delete from expenses where id = $1;`, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
