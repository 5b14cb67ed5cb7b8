package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitify/internal/models"
	"github.com/mmynk/splitify/internal/storage"
	"github.com/mmynk/splitify/internal/storage/memory"
)

var (
	alice = models.Identity{Phone: "5551110000", Name: "Alice", UID: "uid-alice"}
	bob   = models.Identity{Phone: "5552220000", Name: "Bob", UID: "uid-bob"}
	carol = models.Identity{Phone: "5553330000", Name: "Carol", UID: "uid-carol"}
	dave  = models.Identity{Phone: "5554440000", Name: "Dave", UID: "uid-dave"}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// approx compares within 1e-6.
func approx(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(decimal.New(1, -6))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService returns a service over store with all test users registered.
func newTestService(t *testing.T, store storage.Store) *Service {
	t.Helper()
	svc := New(store, WithLogger(quietLogger()), WithActivityRetry(3, time.Millisecond))
	for _, id := range []models.Identity{alice, bob, carol, dave} {
		if _, err := svc.RegisterUser(context.Background(), id); err != nil {
			t.Fatalf("RegisterUser(%s) failed: %v", id.Name, err)
		}
	}
	return svc
}

func newMemoryStore() *memory.Store {
	return memory.New()
}

func setup(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := newMemoryStore()
	return newTestService(t, store), store
}

func mustGroup(t *testing.T, svc *Service, creator models.Identity, name string, members ...models.Identity) *models.Group {
	t.Helper()
	list := make([]models.Member, len(members))
	for i, m := range members {
		list[i] = m.Member()
	}
	g, err := svc.CreateGroup(context.Background(), creator, name, list)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return g
}

func balanceOf(detail *GroupDetail, phone string) decimal.Decimal {
	for _, b := range detail.Balances {
		if b.Phone == phone {
			return b.Amount
		}
	}
	return decimal.Zero
}

// faultyStore wraps the memory store and injects failures.
type faultyStore struct {
	*memory.Store
	appendActivityErr error
	listActivityErr   error
	addExpenseErr     error
}

func (f *faultyStore) AppendActivity(ctx context.Context, e *models.ActivityEntry) error {
	if f.appendActivityErr != nil {
		return f.appendActivityErr
	}
	return f.Store.AppendActivity(ctx, e)
}

func (f *faultyStore) ListActivityFor(ctx context.Context, user string) ([]models.ActivityEntry, error) {
	if f.listActivityErr != nil {
		return nil, f.listActivityErr
	}
	return f.Store.ListActivityFor(ctx, user)
}

func (f *faultyStore) AddExpense(ctx context.Context, e *models.Expense) error {
	if f.addExpenseErr != nil {
		return f.addExpenseErr
	}
	return f.Store.AddExpense(ctx, e)
}
