// Package storetest holds the behaviour every storage.Store implementation must share.
// Backend packages call Run from their own tests with a constructor for a fresh store.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
	"github.com/mmynk/splitify/internal/storage"
)

// Run executes the shared store test-suite. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("users upsert and lookup", func(t *testing.T) {
		s := newStore(t)
		if err := s.CreateUser(ctx, models.NewUser("111", "Alice", "uid-a")); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if err := s.CreateUser(ctx, models.NewUser("111", "Alice B", "uid-a")); err != nil {
			t.Fatalf("CreateUser (again) failed: %v", err)
		}

		u, err := s.GetUser(ctx, "111")
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if u.Name != "Alice B" {
			t.Errorf("expected refreshed name, got %q", u.Name)
		}

		if _, err := s.GetUser(ctx, "999"); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		users, err := s.GetUsersByPhones(ctx, []string{"111", "999"})
		if err != nil {
			t.Fatalf("GetUsersByPhones failed: %v", err)
		}
		if len(users) != 1 || users["111"] == nil {
			t.Errorf("expected only 111 to be found, got %v", users)
		}
	})

	t.Run("friendship is unique per unordered pair", func(t *testing.T) {
		s := newStore(t)
		f := &models.Friendship{UserA: "111", UserB: "222", Metadata: map[string]string{"111": "Alice", "222": "Bob"}}
		if err := s.AddFriendship(ctx, f); err != nil {
			t.Fatalf("AddFriendship failed: %v", err)
		}
		if f.ID != "111_222" {
			t.Errorf("expected composite ID, got %q", f.ID)
		}

		reverse := &models.Friendship{UserA: "222", UserB: "111", Metadata: map[string]string{"111": "Alice", "222": "Bob"}}
		if err := s.AddFriendship(ctx, reverse); !errors.Is(err, errs.ErrDuplicateFriendship) {
			t.Errorf("expected ErrDuplicateFriendship, got %v", err)
		}

		friends, err := s.ListFriendsOf(ctx, "222")
		if err != nil {
			t.Fatalf("ListFriendsOf failed: %v", err)
		}
		if len(friends) != 1 || friends[0].Phone != "111" || friends[0].Name != "Alice" {
			t.Errorf("unexpected friends: %+v", friends)
		}

		// Removal works with either argument order
		if err := s.RemoveFriendship(ctx, "222", "111"); err != nil {
			t.Fatalf("RemoveFriendship failed: %v", err)
		}
		if err := s.RemoveFriendship(ctx, "111", "222"); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second removal, got %v", err)
		}
	})

	t.Run("concurrent friendship adds create one record", func(t *testing.T) {
		s := newStore(t)
		const workers = 8
		var wg sync.WaitGroup
		results := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				a, b := "111", "222"
				if i%2 == 1 {
					a, b = b, a
				}
				results <- s.AddFriendship(ctx, &models.Friendship{UserA: a, UserB: b, Metadata: map[string]string{a: "A", b: "B"}})
			}(i)
		}
		wg.Wait()
		close(results)

		ok := 0
		for err := range results {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, errs.ErrDuplicateFriendship):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		if ok != 1 {
			t.Errorf("expected exactly one successful add, got %d", ok)
		}
		friends, err := s.ListFriendsOf(ctx, "111")
		if err != nil {
			t.Fatalf("ListFriendsOf failed: %v", err)
		}
		if len(friends) != 1 {
			t.Errorf("expected one friend, got %d", len(friends))
		}
	})

	t.Run("expenses round trip and delete", func(t *testing.T) {
		s := newStore(t)
		day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		older := &models.Expense{PaidBy: "111", Participants: []string{"111", "222"}, Amount: decimal.RequireFromString("40.10"), Reason: "Lunch", Date: day}
		newer := &models.Expense{PaidBy: "222", Participants: []string{"222", "111", "333"}, Amount: decimal.RequireFromString("99.99"), Reason: "Cab", Date: day.AddDate(0, 0, 1)}
		other := &models.Expense{PaidBy: "333", Participants: []string{"333", "444"}, Amount: decimal.NewFromInt(5), Reason: "Tea", Date: day}
		for _, e := range []*models.Expense{older, newer, other} {
			if err := s.AddExpense(ctx, e); err != nil {
				t.Fatalf("AddExpense failed: %v", err)
			}
			if e.ID == "" || e.CreatedAt == 0 {
				t.Fatal("expected ID and CreatedAt to be generated")
			}
		}

		got, err := s.GetExpense(ctx, older.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(older.Amount) {
			t.Errorf("amount mismatch: got %s, want %s", got.Amount, older.Amount)
		}
		if !got.Date.Equal(day) {
			t.Errorf("date mismatch: got %v, want %v", got.Date, day)
		}
		if len(got.Participants) != 2 || got.Participants[0] != "111" {
			t.Errorf("participants mismatch: %v", got.Participants)
		}

		list, err := s.ListExpensesInvolving(ctx, "111")
		if err != nil {
			t.Fatalf("ListExpensesInvolving failed: %v", err)
		}
		if len(list) != 2 || list[0].ID != newer.ID {
			t.Errorf("expected 2 expenses newest first, got %+v", list)
		}

		pair, err := s.ListExpensesInvolvingPair(ctx, "333", "111")
		if err != nil {
			t.Fatalf("ListExpensesInvolvingPair failed: %v", err)
		}
		if len(pair) != 1 || pair[0].ID != newer.ID {
			t.Errorf("expected only the shared expense, got %+v", pair)
		}

		if err := s.DeleteExpense(ctx, older.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := s.GetExpense(ctx, older.ID); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := s.DeleteExpense(ctx, older.ID); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound deleting twice, got %v", err)
		}
	})

	t.Run("groups, members and group expenses", func(t *testing.T) {
		s := newStore(t)
		g := &models.Group{
			Name:      "Trip",
			CreatedBy: "111",
			Members:   []models.Member{{Phone: "111", Name: "Alice"}, {Phone: "222", Name: "Bob"}},
		}
		if err := s.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		e := &models.GroupExpense{
			Total:      decimal.NewFromInt(30),
			Reason:     "Fuel",
			Date:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			PaidBy:     "111",
			PaidByName: "Alice",
			SplitMode:  models.SplitCustom,
			Splits: []models.Split{
				{Phone: "111", Name: "Alice", Amount: decimal.RequireFromString("10.5")},
				{Phone: "222", Name: "Bob", Amount: decimal.RequireFromString("19.5")},
			},
		}
		if err := s.AddGroupExpense(ctx, g.ID, e); err != nil {
			t.Fatalf("AddGroupExpense failed: %v", err)
		}
		if err := s.AddGroupExpense(ctx, "missing", &models.GroupExpense{}); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound for missing group, got %v", err)
		}

		list, err := s.ListGroupExpenses(ctx, g.ID)
		if err != nil {
			t.Fatalf("ListGroupExpenses failed: %v", err)
		}
		if len(list) != 1 || len(list[0].Splits) != 2 {
			t.Fatalf("unexpected group expenses: %+v", list)
		}
		if !list[0].Splits[1].Amount.Equal(decimal.RequireFromString("19.5")) || list[0].SplitMode != models.SplitCustom {
			t.Errorf("split round trip mismatch: %+v", list[0])
		}

		if err := s.UpdateGroupMembers(ctx, g.ID,
			[]models.Member{{Phone: "111", Name: "Alice"}},
			[]models.Member{{Phone: "222", Name: "Bob"}},
		); err != nil {
			t.Fatalf("UpdateGroupMembers failed: %v", err)
		}
		groups, err := s.ListGroupsOf(ctx, "222")
		if err != nil {
			t.Fatalf("ListGroupsOf failed: %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("expected removed member to see no groups, got %d", len(groups))
		}
		got, err := s.GetGroup(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 1 {
			t.Errorf("expected 1 member, got %d", len(got.Members))
		}
		if len(got.FormerMembers) != 1 || got.FormerMembers[0] != (models.Member{Phone: "222", Name: "Bob"}) {
			t.Errorf("expected Bob as former member, got %+v", got.FormerMembers)
		}
		if owned, err := s.ListGroupsOf(ctx, "111"); err != nil || len(owned) != 1 || len(owned[0].FormerMembers) != 1 {
			t.Errorf("expected listed group to carry former members, got %+v (err %v)", owned, err)
		}

		// Splits survive membership changes
		list, _ = s.ListGroupExpenses(ctx, g.ID)
		if len(list) != 1 || len(list[0].Splits) != 2 {
			t.Errorf("expected splits to be unchanged after member removal")
		}

		if err := s.DeleteGroup(ctx, g.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := s.GetGroup(ctx, g.ID); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		list, err = s.ListGroupExpenses(ctx, g.ID)
		if err != nil {
			t.Fatalf("ListGroupExpenses after delete failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("expected group expenses to cascade, got %d", len(list))
		}
	})

	t.Run("settlements filter by pair and group", func(t *testing.T) {
		s := newStore(t)
		pairwise := &models.Settlement{From: "222", To: "111", Amount: decimal.NewFromInt(50), Method: models.MethodCard, Note: "thanks"}
		grouped := &models.Settlement{From: "111", To: "333", Amount: decimal.RequireFromString("12.34"), Method: models.MethodOther, GroupID: "g1"}
		for _, st := range []*models.Settlement{pairwise, grouped} {
			if err := s.AddSettlement(ctx, st); err != nil {
				t.Fatalf("AddSettlement failed: %v", err)
			}
		}

		between, err := s.ListSettlementsBetween(ctx, "111", "222")
		if err != nil {
			t.Fatalf("ListSettlementsBetween failed: %v", err)
		}
		if len(between) != 1 || between[0].Note != "thanks" || between[0].Method != models.MethodCard {
			t.Errorf("unexpected settlements between: %+v", between)
		}

		involving, err := s.ListSettlementsInvolving(ctx, "111")
		if err != nil {
			t.Fatalf("ListSettlementsInvolving failed: %v", err)
		}
		if len(involving) != 2 {
			t.Errorf("expected 2 settlements, got %d", len(involving))
		}

		byGroup, err := s.ListSettlementsByGroup(ctx, "g1")
		if err != nil {
			t.Fatalf("ListSettlementsByGroup failed: %v", err)
		}
		if len(byGroup) != 1 || !byGroup[0].Amount.Equal(decimal.RequireFromString("12.34")) {
			t.Errorf("unexpected group settlements: %+v", byGroup)
		}
	})

	t.Run("activity is visible to involved users newest first", func(t *testing.T) {
		s := newStore(t)
		entries := []*models.ActivityEntry{
			{Type: models.ActivityFriendAdded, Actor: "111", Target: "222", Description: "first", Timestamp: 100},
			{Type: models.ActivityGroupExpense, Actor: "333", Participants: []string{"111", "444"}, Description: "second", Timestamp: 200},
			{Type: models.ActivitySettlement, Actor: "222", Target: "111", Description: "tie-a", Timestamp: 300},
			{Type: models.ActivitySettlement, Actor: "222", Target: "111", Description: "tie-b", Timestamp: 300},
		}
		for _, e := range entries {
			if err := s.AppendActivity(ctx, e); err != nil {
				t.Fatalf("AppendActivity failed: %v", err)
			}
			if e.Seq == 0 {
				t.Error("expected Seq to be assigned")
			}
		}

		got, err := s.ListActivityFor(ctx, "111")
		if err != nil {
			t.Fatalf("ListActivityFor failed: %v", err)
		}
		want := []string{"tie-b", "tie-a", "second", "first"}
		if len(got) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(got))
		}
		for i, w := range want {
			if got[i].Description != w {
				t.Errorf("entry %d: got %q, want %q", i, got[i].Description, w)
			}
		}

		outsider, err := s.ListActivityFor(ctx, "555")
		if err != nil {
			t.Fatalf("ListActivityFor failed: %v", err)
		}
		if len(outsider) != 0 {
			t.Errorf("expected no entries for outsider, got %d", len(outsider))
		}

		participant, _ := s.ListActivityFor(ctx, "444")
		if len(participant) != 1 || len(participant[0].Participants) != 2 {
			t.Errorf("expected participant to see the group entry with participants, got %+v", participant)
		}
	})
}
