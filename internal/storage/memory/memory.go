// Package memory provides the reference in-memory implementation of storage.Store.
// It is used for development and tests and mirrors the semantics of the
// persistent backends, including the atomic friendship uniqueness check.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
	"github.com/mmynk/splitify/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store is guarded by an RWMutex for concurrent reads/writes.
// Records are copied in and out so callers never share memory with the store.
type Store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	friendships map[string]models.Friendship
	expenses    []models.Expense
	groups      map[string]models.Group
	groupOrder  []string
	groupExp    map[string][]models.GroupExpense
	settlements []models.Settlement
	activity    []models.ActivityEntry
	seq         int64
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		users:       make(map[string]models.User),
		friendships: make(map[string]models.Friendship),
		groups:      make(map[string]models.Group),
		groupExp:    make(map[string][]models.GroupExpense),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// CreateUser implements storage.Store.
func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[user.Phone]; ok {
		existing.Name = user.Name
		s.users[user.Phone] = existing
		return nil
	}
	s.users[user.Phone] = *user
	return nil
}

// GetUser implements storage.Store.
func (s *Store) GetUser(_ context.Context, phone string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[phone]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", errs.ErrNotFound, phone)
	}
	return &u, nil
}

// GetUsersByPhones implements storage.Store.
func (s *Store) GetUsersByPhones(_ context.Context, phones []string) (map[string]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*models.User, len(phones))
	for _, p := range phones {
		if u, ok := s.users[p]; ok {
			out[p] = &u
		}
	}
	return out, nil
}

// AddFriendship implements storage.Store.
func (s *Store) AddFriendship(_ context.Context, f *models.Friendship) error {
	f.ID = models.FriendshipKey(f.UserA, f.UserB)
	if f.CreatedAt == 0 {
		f.CreatedAt = time.Now().Unix()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.friendships[f.ID]; ok {
		return fmt.Errorf("%w: %s and %s are already friends", errs.ErrDuplicateFriendship, f.UserA, f.UserB)
	}
	cp := *f
	cp.Metadata = cloneMap(f.Metadata)
	s.friendships[f.ID] = cp
	return nil
}

// RemoveFriendship implements storage.Store.
func (s *Store) RemoveFriendship(_ context.Context, a, b string) error {
	key := models.FriendshipKey(a, b)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.friendships[key]; !ok {
		return fmt.Errorf("%w: no friendship between %s and %s", errs.ErrNotFound, a, b)
	}
	delete(s.friendships, key)
	return nil
}

// ListFriendsOf implements storage.Store.
func (s *Store) ListFriendsOf(_ context.Context, user string) ([]models.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Friend
	for _, f := range s.friendships {
		if !f.Involves(user) {
			continue
		}
		other := f.Other(user)
		out = append(out, models.Friend{Phone: other, Name: f.Metadata[other]})
	}
	storage.SortFriends(out)
	return out, nil
}

// AddExpense implements storage.Store.
func (s *Store) AddExpense(_ context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	cp := *e
	cp.Participants = slices.Clone(e.Participants)
	s.mu.Lock()
	s.expenses = append(s.expenses, cp)
	s.mu.Unlock()
	return nil
}

// GetExpense implements storage.Store.
func (s *Store) GetExpense(_ context.Context, id string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.expenses {
		if e.ID == id {
			e.Participants = slices.Clone(e.Participants)
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%w: expense %s", errs.ErrNotFound, id)
}

// DeleteExpense implements storage.Store.
func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.expenses {
		if e.ID == id {
			s.expenses = slices.Delete(s.expenses, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: expense %s", errs.ErrNotFound, id)
}

// ListExpensesInvolving implements storage.Store.
func (s *Store) ListExpensesInvolving(_ context.Context, user string) ([]models.Expense, error) {
	return s.filterExpenses(func(e *models.Expense) bool { return e.Involves(user) }), nil
}

// ListExpensesInvolvingPair implements storage.Store.
func (s *Store) ListExpensesInvolvingPair(_ context.Context, a, b string) ([]models.Expense, error) {
	return s.filterExpenses(func(e *models.Expense) bool { return e.Involves(a) && e.Involves(b) }), nil
}

func (s *Store) filterExpenses(keep func(*models.Expense) bool) []models.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Expense
	for i := range s.expenses {
		if keep(&s.expenses[i]) {
			e := s.expenses[i]
			e.Participants = slices.Clone(e.Participants)
			out = append(out, e)
		}
	}
	storage.SortExpenses(out)
	return out
}

// CreateGroup implements storage.Store.
func (s *Store) CreateGroup(_ context.Context, g *models.Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	cp := *g
	cp.Members = slices.Clone(g.Members)
	cp.FormerMembers = slices.Clone(g.FormerMembers)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = cp
	s.groupOrder = append(s.groupOrder, g.ID)
	return nil
}

// GetGroup implements storage.Store.
func (s *Store) GetGroup(_ context.Context, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("%w: group %s", errs.ErrNotFound, id)
	}
	g.Members = slices.Clone(g.Members)
	g.FormerMembers = slices.Clone(g.FormerMembers)
	return &g, nil
}

// UpdateGroupMembers implements storage.Store.
func (s *Store) UpdateGroupMembers(_ context.Context, id string, members, former []models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return fmt.Errorf("%w: group %s", errs.ErrNotFound, id)
	}
	g.Members = slices.Clone(members)
	g.FormerMembers = slices.Clone(former)
	s.groups[id] = g
	return nil
}

// DeleteGroup implements storage.Store.
func (s *Store) DeleteGroup(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return fmt.Errorf("%w: group %s", errs.ErrNotFound, id)
	}
	delete(s.groups, id)
	delete(s.groupExp, id)
	s.groupOrder = slices.DeleteFunc(s.groupOrder, func(g string) bool { return g == id })
	return nil
}

// ListGroupsOf implements storage.Store.
func (s *Store) ListGroupsOf(_ context.Context, user string) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Group
	for _, id := range s.groupOrder {
		g := s.groups[id]
		if g.CreatedBy == user || g.HasMember(user) {
			g.Members = slices.Clone(g.Members)
			g.FormerMembers = slices.Clone(g.FormerMembers)
			out = append(out, g)
		}
	}
	return out, nil
}

// AddGroupExpense implements storage.Store.
func (s *Store) AddGroupExpense(_ context.Context, groupID string, e *models.GroupExpense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	e.GroupID = groupID
	cp := *e
	cp.Splits = slices.Clone(e.Splits)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[groupID]; !ok {
		return fmt.Errorf("%w: group %s", errs.ErrNotFound, groupID)
	}
	s.groupExp[groupID] = append(s.groupExp[groupID], cp)
	return nil
}

// ListGroupExpenses implements storage.Store.
func (s *Store) ListGroupExpenses(_ context.Context, groupID string) ([]models.GroupExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.groupExp[groupID]
	out := make([]models.GroupExpense, len(src))
	for i, e := range src {
		e.Splits = slices.Clone(e.Splits)
		out[i] = e
	}
	storage.SortGroupExpenses(out)
	return out, nil
}

// AddSettlement implements storage.Store.
func (s *Store) AddSettlement(_ context.Context, st *models.Settlement) error {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if st.CreatedAt == 0 {
		st.CreatedAt = time.Now().Unix()
	}
	s.mu.Lock()
	s.settlements = append(s.settlements, *st)
	s.mu.Unlock()
	return nil
}

// ListSettlementsInvolving implements storage.Store.
func (s *Store) ListSettlementsInvolving(_ context.Context, user string) ([]models.Settlement, error) {
	return s.filterSettlements(func(st *models.Settlement) bool { return st.From == user || st.To == user }), nil
}

// ListSettlementsBetween implements storage.Store.
func (s *Store) ListSettlementsBetween(_ context.Context, a, b string) ([]models.Settlement, error) {
	return s.filterSettlements(func(st *models.Settlement) bool { return st.Between(a, b) }), nil
}

// ListSettlementsByGroup implements storage.Store.
func (s *Store) ListSettlementsByGroup(_ context.Context, groupID string) ([]models.Settlement, error) {
	return s.filterSettlements(func(st *models.Settlement) bool { return st.GroupID == groupID }), nil
}

func (s *Store) filterSettlements(keep func(*models.Settlement) bool) []models.Settlement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Settlement
	for i := range s.settlements {
		if keep(&s.settlements[i]) {
			out = append(out, s.settlements[i])
		}
	}
	storage.SortSettlements(out)
	return out
}

// AppendActivity implements storage.Store.
func (s *Store) AppendActivity(_ context.Context, entry *models.ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().UnixNano()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	entry.Seq = s.seq
	cp := *entry
	cp.Participants = slices.Clone(entry.Participants)
	s.activity = append(s.activity, cp)
	return nil
}

// ListActivityFor implements storage.Store.
func (s *Store) ListActivityFor(_ context.Context, user string) ([]models.ActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ActivityEntry
	for i := range s.activity {
		if s.activity[i].VisibleTo(user) {
			e := s.activity[i]
			e.Participants = slices.Clone(e.Participants)
			out = append(out, e)
		}
	}
	storage.SortActivity(out)
	return out, nil
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
