// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitify/internal/models"
)

// Store defines the persistence operations of the ledger.
// This abstraction allows swapping storage backends (memory, SQLite, MongoDB)
// without changing the ledger service.
//
// Implementations return errors wrapping the sentinels in package errs:
// ErrNotFound for missing records, ErrDuplicateFriendship for a second
// friendship on the same pair, and ErrStoreUnavailable for I/O failures.
// Ledger entries (expenses, group expenses, settlements, activity) are
// insert-only apart from DeleteExpense and the DeleteGroup cascade.
type Store interface {
	// CreateUser registers a user. Registering an existing phone updates the name.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by phone. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, phone string) (*models.User, error)

	// GetUsersByPhones returns the registered users among phones, keyed by phone.
	GetUsersByPhones(ctx context.Context, phones []string) (map[string]*models.User, error)

	// AddFriendship inserts a friendship keyed by models.FriendshipKey.
	// The uniqueness check and the insert are a single atomic operation.
	AddFriendship(ctx context.Context, f *models.Friendship) error

	// RemoveFriendship deletes the friendship between a and b in either stored order.
	RemoveFriendship(ctx context.Context, a, b string) error

	// ListFriendsOf returns the other party of every friendship involving user,
	// with the name snapshot stored in the friendship.
	ListFriendsOf(ctx context.Context, user string) ([]models.Friend, error)

	// AddExpense persists a direct expense. ID and CreatedAt are filled if empty.
	AddExpense(ctx context.Context, e *models.Expense) error

	// GetExpense retrieves a direct expense by ID.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// DeleteExpense removes a direct expense. Returns ErrNotFound if absent.
	DeleteExpense(ctx context.Context, id string) error

	// ListExpensesInvolving returns direct expenses listing user as a participant.
	ListExpensesInvolving(ctx context.Context, user string) ([]models.Expense, error)

	// ListExpensesInvolvingPair returns direct expenses listing both a and b.
	ListExpensesInvolvingPair(ctx context.Context, a, b string) ([]models.Expense, error)

	// CreateGroup persists a new group. ID and CreatedAt are filled if empty.
	CreateGroup(ctx context.Context, g *models.Group) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// UpdateGroupMembers replaces a group's current and former member lists.
	UpdateGroupMembers(ctx context.Context, id string, members, former []models.Member) error

	// DeleteGroup removes a group and its expenses.
	DeleteGroup(ctx context.Context, id string) error

	// ListGroupsOf returns groups where user is the creator or a member.
	ListGroupsOf(ctx context.Context, user string) ([]models.Group, error)

	// AddGroupExpense persists an expense inside a group.
	AddGroupExpense(ctx context.Context, groupID string, e *models.GroupExpense) error

	// ListGroupExpenses returns a group's expenses, newest first.
	ListGroupExpenses(ctx context.Context, groupID string) ([]models.GroupExpense, error)

	// AddSettlement persists a settlement.
	AddSettlement(ctx context.Context, s *models.Settlement) error

	// ListSettlementsInvolving returns settlements where user is payer or receiver.
	ListSettlementsInvolving(ctx context.Context, user string) ([]models.Settlement, error)

	// ListSettlementsBetween returns settlements between a and b in either direction.
	ListSettlementsBetween(ctx context.Context, a, b string) ([]models.Settlement, error)

	// ListSettlementsByGroup returns settlements scoped to a group.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error)

	// AppendActivity appends an entry to the activity log and assigns its Seq.
	AppendActivity(ctx context.Context, entry *models.ActivityEntry) error

	// ListActivityFor returns entries visible to user, newest first by
	// timestamp with ties broken by insertion order.
	ListActivityFor(ctx context.Context, user string) ([]models.ActivityEntry, error)

	// Close releases any resources held by the store.
	Close() error
}
