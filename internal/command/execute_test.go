package command

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/expensecmd/internal/models"
	"github.com/mmynk/expensecmd/internal/storage"
	"github.com/mmynk/expensecmd/internal/storage/memory"
)

// countingStore records how often each EntityStore method is called.
type countingStore struct {
	EntityStore
	finds, groupCreates, expenseCreates atomic.Int32
}

func (s *countingStore) FindGroup(ctx context.Context, ownerID, name string) (*models.Group, error) {
	s.finds.Add(1)
	return s.EntityStore.FindGroup(ctx, ownerID, name)
}

func (s *countingStore) CreateGroup(ctx context.Context, g *models.Group) error {
	s.groupCreates.Add(1)
	return s.EntityStore.CreateGroup(ctx, g)
}

func (s *countingStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	s.expenseCreates.Add(1)
	return s.EntityStore.CreateExpense(ctx, e)
}

func (s *countingStore) touches() int32 {
	return s.finds.Load() + s.groupCreates.Load() + s.expenseCreates.Load()
}

// failingStore returns err from the named operation.
type failingStore struct {
	EntityStore
	op  string
	err error
}

func (s *failingStore) FindGroup(ctx context.Context, ownerID, name string) (*models.Group, error) {
	if s.op == "find" {
		return nil, s.err
	}
	return s.EntityStore.FindGroup(ctx, ownerID, name)
}

func (s *failingStore) CreateGroup(ctx context.Context, g *models.Group) error {
	if s.op == "create-group" {
		return s.err
	}
	return s.EntityStore.CreateGroup(ctx, g)
}

func (s *failingStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	if s.op == "create-expense" {
		return s.err
	}
	return s.EntityStore.CreateExpense(ctx, e)
}

// barrierStore holds the first n FindGroup calls until all of them have
// missed, so every caller goes on to create the group.
type barrierStore struct {
	EntityStore
	calls   atomic.Int32
	n       int32
	arrived sync.WaitGroup
}

func newBarrierStore(base EntityStore, n int) *barrierStore {
	s := &barrierStore{EntityStore: base, n: int32(n)}
	s.arrived.Add(n)
	return s
}

func (s *barrierStore) FindGroup(ctx context.Context, ownerID, name string) (*models.Group, error) {
	g, err := s.EntityStore.FindGroup(ctx, ownerID, name)
	if s.calls.Add(1) <= s.n {
		s.arrived.Done()
		s.arrived.Wait()
	}
	return g, err
}

func TestExecute_CreateGroupIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{EntityStore: memory.New()}
	exec := NewExecutor(store)
	actor := Actor{UserID: "user-1"}

	first, err := exec.Execute(ctx, CreateGroup{Name: "Home"}, actor)
	require.NoError(t, err)
	assert.True(t, first.GroupCreated)

	second, err := exec.Execute(ctx, CreateGroup{Name: "home"}, actor)
	require.NoError(t, err)
	assert.False(t, second.GroupCreated)
	assert.Equal(t, first.Group.ID, second.Group.ID)
	assert.Equal(t, "Home", second.Group.Name)
	assert.Equal(t, int32(1), store.groupCreates.Load())
}

func TestExecute_AddExpense(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{EntityStore: memory.New()}
	exec := NewExecutor(store)
	actor := Actor{UserID: "user-1"}

	first, err := exec.Execute(ctx, AddExpense{GroupName: "Home", AmountCents: 5000000, Description: "rent"}, actor)
	require.NoError(t, err)
	assert.True(t, first.GroupCreated)
	require.NotNil(t, first.Expense)
	assert.Equal(t, first.Group.ID, first.Expense.GroupID)
	assert.Equal(t, "user-1", first.Expense.OwnerID)

	second, err := exec.Execute(ctx, AddExpense{GroupName: "Home", AmountCents: 5000000, Description: "rent"}, actor)
	require.NoError(t, err)
	assert.False(t, second.GroupCreated)
	assert.NotEqual(t, first.Expense.ID, second.Expense.ID)

	assert.Equal(t, int32(1), store.groupCreates.Load())
	assert.Equal(t, int32(2), store.expenseCreates.Load())
}

func TestExecute_DefaultDateUsesActorLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata not available")
	}

	exec := NewExecutor(memory.New())
	// 20:00 UTC on March 1 is already March 2 in Tokyo.
	exec.now = func() time.Time { return time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC) }

	out, err := exec.Execute(context.Background(), AddExpense{GroupName: "Trip", AmountCents: 100, Description: "tea"}, Actor{UserID: "u", Location: tokyo})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", out.Expense.Date.Format(models.DateLayout))

	out, err = exec.Execute(context.Background(), AddExpense{GroupName: "Trip", AmountCents: 100, Description: "tea"}, Actor{UserID: "u"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", out.Expense.Date.Format(models.DateLayout))
}

func TestExecute_ExplicitDate(t *testing.T) {
	date := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	out, err := NewExecutor(memory.New()).Execute(context.Background(),
		AddExpense{GroupName: "Home", AmountCents: 100, Description: "x", Date: &date}, Actor{UserID: "u"})
	require.NoError(t, err)
	assert.True(t, out.Expense.Date.Equal(date))
}

func TestExecute_StoreFailures(t *testing.T) {
	boom := errors.New("disk full")
	for _, op := range []string{"find", "create-group", "create-expense"} {
		t.Run(op, func(t *testing.T) {
			store := &failingStore{EntityStore: memory.New(), op: op, err: boom}
			_, err := NewExecutor(store).Execute(context.Background(),
				AddExpense{GroupName: "Home", AmountCents: 100, Description: "x"}, Actor{UserID: "u"})

			var ee *ExecutionError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, KindStoreFailure, ee.Kind)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestExecute_ConflictWithoutGroupIsStoreFailure(t *testing.T) {
	// The store claims the group exists but can never find it.
	store := &failingStore{EntityStore: memory.New(), op: "create-group", err: storage.ErrGroupExists}
	_, err := NewExecutor(store).Execute(context.Background(), CreateGroup{Name: "Ghost"}, Actor{UserID: "u"})
	assert.Equal(t, KindStoreFailure, KindOf(err))
}

func TestExecute_ConcurrentFirstUse(t *testing.T) {
	base := memory.New()
	store := newBarrierStore(base, 2)
	exec := NewExecutor(store)
	actor := Actor{UserID: "user-1"}

	outcomes := make([]Outcome, 2)
	var g errgroup.Group
	for i := range outcomes {
		g.Go(func() error {
			out, err := exec.Execute(context.Background(),
				AddExpense{GroupName: "Travel", AmountCents: 1000, Description: "taxi"}, actor)
			outcomes[i] = out
			return err
		})
	}
	require.NoError(t, g.Wait())

	groups, err := base.ListGroups(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)

	expenses, err := base.ListExpenses(context.Background(), "user-1", groups[0].ID)
	require.NoError(t, err)
	assert.Len(t, expenses, 2)
	assert.Equal(t, outcomes[0].Group.ID, outcomes[1].Group.ID)
	assert.NotEqual(t, outcomes[0].GroupCreated, outcomes[1].GroupCreated)
}
