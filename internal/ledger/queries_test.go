package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/splitify/internal/calculator"
	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

func TestGetDashboardSummary(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	for _, f := range []models.Identity{bob, carol} {
		if _, err := svc.AddFriend(ctx, alice, f.Phone); err != nil {
			t.Fatalf("AddFriend failed: %v", err)
		}
	}
	if _, err := svc.RecordDirectExpense(ctx, alice, DirectExpenseInput{
		Payer:        alice.Phone,
		Participants: []string{alice.Phone, bob.Phone, carol.Phone},
		Amount:       dec("60"),
		Category:     "Food",
		Reason:       "Brunch",
	}); err != nil {
		t.Fatalf("RecordDirectExpense failed: %v", err)
	}
	// Dave is not a friend but shares an expense
	if _, err := svc.RecordDirectExpense(ctx, dave, DirectExpenseInput{
		Payer:        dave.Phone,
		Participants: []string{alice.Phone, dave.Phone},
		Amount:       dec("30"),
		Category:     "Transport",
		Reason:       "Cab",
	}); err != nil {
		t.Fatalf("RecordDirectExpense failed: %v", err)
	}
	g := mustGroup(t, svc, alice, "Trip", bob, carol)
	if _, err := svc.RecordGroupExpense(ctx, bob, GroupExpenseInput{
		GroupID: g.ID,
		Payer:   bob.Phone,
		Amount:  dec("90"),
		Reason:  "Fuel",
	}); err != nil {
		t.Fatalf("RecordGroupExpense failed: %v", err)
	}

	summary, err := svc.GetDashboardSummary(ctx, alice)
	if err != nil {
		t.Fatalf("GetDashboardSummary failed: %v", err)
	}

	wantFriends := map[string]struct {
		balance  string
		isFriend bool
		name     string
	}{
		bob.Phone:   {"20", true, "Bob"},
		carol.Phone: {"20", true, "Carol"},
		dave.Phone:  {"-15", false, "Dave"},
	}
	if len(summary.Friends) != len(wantFriends) {
		t.Fatalf("expected %d friend balances, got %+v", len(wantFriends), summary.Friends)
	}
	for _, f := range summary.Friends {
		want, ok := wantFriends[f.Phone]
		if !ok {
			t.Errorf("unexpected counterpart %s", f.Phone)
			continue
		}
		if !approx(f.Balance, dec(want.balance)) || f.IsFriend != want.isFriend || f.Name != want.name {
			t.Errorf("friend %s = %+v, want %+v", f.Phone, f, want)
		}
	}

	if len(summary.Groups) != 1 || !approx(summary.Groups[0].Balance, dec("-30")) {
		t.Errorf("expected one group with balance -30, got %+v", summary.Groups)
	}

	// Totals are derived from exactly the figures shown
	if !approx(summary.Totals.OwedToYou, dec("40")) {
		t.Errorf("OwedToYou = %s, want 40", summary.Totals.OwedToYou)
	}
	if !approx(summary.Totals.YouOwe, dec("45")) {
		t.Errorf("YouOwe = %s, want 45", summary.Totals.YouOwe)
	}
	if !approx(summary.Totals.Net, summary.Totals.OwedToYou.Sub(summary.Totals.YouOwe)) {
		t.Errorf("Net %s inconsistent with parts", summary.Totals.Net)
	}
}

func TestGetDashboardSummary_FormerFriend(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.AddFriend(ctx, alice, bob.Phone); err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}
	if _, err := svc.RecordDirectExpense(ctx, alice, DirectExpenseInput{
		Payer:        alice.Phone,
		Participants: []string{alice.Phone, bob.Phone},
		Amount:       dec("10"),
		Category:     "Food",
		Reason:       "Coffee",
	}); err != nil {
		t.Fatalf("RecordDirectExpense failed: %v", err)
	}
	if err := svc.RemoveFriend(ctx, alice, bob.Phone); err != nil {
		t.Fatalf("RemoveFriend failed: %v", err)
	}

	summary, err := svc.GetDashboardSummary(ctx, bob)
	if err != nil {
		t.Fatalf("GetDashboardSummary failed: %v", err)
	}
	if len(summary.Friends) != 1 {
		t.Fatalf("expected the former friend to remain listed, got %+v", summary.Friends)
	}
	f := summary.Friends[0]
	if f.IsFriend || f.Phone != alice.Phone || !approx(f.Balance, dec("-5")) {
		t.Errorf("unexpected entry %+v", f)
	}
	if !approx(summary.Totals.YouOwe, dec("5")) {
		t.Errorf("YouOwe = %s, want 5", summary.Totals.YouOwe)
	}
}

func TestGetFriendExpenseHistory(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.AddFriend(ctx, alice, bob.Phone); err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}
	for _, in := range []DirectExpenseInput{
		{Payer: alice.Phone, Participants: []string{alice.Phone, bob.Phone}, Amount: dec("40"), Category: "Food", Reason: "Tacos"},
		{Payer: bob.Phone, Participants: []string{alice.Phone, bob.Phone}, Amount: dec("10"), Category: "Food", Reason: "Ice cream"},
		{Payer: alice.Phone, Participants: []string{alice.Phone, carol.Phone}, Amount: dec("99"), Category: "Food", Reason: "Unrelated"},
	} {
		if _, err := svc.RecordDirectExpense(ctx, alice, in); err != nil {
			t.Fatalf("RecordDirectExpense failed: %v", err)
		}
	}
	if _, err := svc.RecordSettlement(ctx, bob, SettlementInput{From: bob.Phone, To: alice.Phone, Amount: dec("5")}); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}

	h, err := svc.GetFriendExpenseHistory(ctx, alice, bob.Phone)
	if err != nil {
		t.Fatalf("GetFriendExpenseHistory failed: %v", err)
	}
	if h.Friend.Name != "Bob" {
		t.Errorf("expected friend name Bob, got %q", h.Friend.Name)
	}
	if len(h.Expenses) != 2 || len(h.Settlements) != 1 {
		t.Errorf("expected 2 expenses and 1 settlement, got %d and %d", len(h.Expenses), len(h.Settlements))
	}
	// 20 - 5 - 5
	if !approx(h.Balance, dec("10")) {
		t.Errorf("balance = %s, want 10", h.Balance)
	}
}

// Every successful mutation appends exactly one entry, and later mutations
// never change earlier entries.
func TestActivityIsAppendOnly(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	mutations := []func() error{
		func() error { _, err := svc.AddFriend(ctx, alice, bob.Phone); return err },
		func() error {
			_, err := svc.RecordDirectExpense(ctx, alice, DirectExpenseInput{
				Payer: alice.Phone, Participants: []string{alice.Phone, bob.Phone},
				Amount: dec("12"), Category: "Food", Reason: "Bagels",
			})
			return err
		},
		func() error {
			_, err := svc.RecordSettlement(ctx, bob, SettlementInput{From: bob.Phone, To: alice.Phone, Amount: dec("6")})
			return err
		},
		func() error { _, err := svc.CreateGroup(ctx, carol, "Band", []models.Member{{Phone: dave.Phone}}); return err },
		func() error { return svc.RemoveFriend(ctx, bob, alice.Phone) },
	}

	collect := func() map[string]models.ActivityEntry {
		t.Helper()
		all := make(map[string]models.ActivityEntry)
		for _, u := range []models.Identity{alice, bob, carol, dave} {
			entries, err := svc.ListActivity(ctx, u)
			if err != nil {
				t.Fatalf("ListActivity failed: %v", err)
			}
			for i := 1; i < len(entries); i++ {
				prev, cur := entries[i-1], entries[i]
				if prev.Timestamp < cur.Timestamp || (prev.Timestamp == cur.Timestamp && prev.Seq < cur.Seq) {
					t.Errorf("%s: feed not newest first at %d", u.Name, i)
				}
			}
			for _, e := range entries {
				all[e.ID] = e
			}
		}
		return all
	}

	var previous map[string]models.ActivityEntry
	for i, m := range mutations {
		if err := m(); err != nil {
			t.Fatalf("mutation %d failed: %v", i, err)
		}
		current := collect()
		if len(current) != i+1 {
			t.Fatalf("after %d mutations expected %d entries, got %d", i+1, i+1, len(current))
		}
		for id, old := range previous {
			if current[id].Description != old.Description || current[id].Timestamp != old.Timestamp {
				t.Errorf("entry %s changed: %+v -> %+v", id, old, current[id])
			}
		}
		previous = current
	}

	// Failed mutations leave no trace
	if _, err := svc.AddFriend(ctx, alice, alice.Phone); err == nil {
		t.Fatal("expected self friendship to fail")
	}
	if got := collect(); len(got) != len(mutations) {
		t.Errorf("expected %d entries after a failed mutation, got %d", len(mutations), len(got))
	}
}

func TestActivityVisibility(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.RecordDirectExpense(ctx, alice, DirectExpenseInput{
		Payer:        alice.Phone,
		Participants: []string{alice.Phone, bob.Phone},
		Amount:       dec("100"),
		Category:     "Food",
		Reason:       "Dinner",
	}); err != nil {
		t.Fatalf("RecordDirectExpense failed: %v", err)
	}

	for _, tt := range []struct {
		user models.Identity
		want int
	}{{alice, 1}, {bob, 1}, {carol, 0}} {
		entries, err := svc.ListActivity(ctx, tt.user)
		if err != nil {
			t.Fatalf("ListActivity failed: %v", err)
		}
		if len(entries) != tt.want {
			t.Errorf("%s: expected %d entries, got %d", tt.user.Name, tt.want, len(entries))
		}
	}

	entries, _ := svc.ListActivity(ctx, bob)
	e := entries[0]
	if e.Type != models.ActivityExpense || e.Actor != alice.Phone || e.Target != bob.Phone {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Description != `Alice added "Dinner" ($100.00) with Bob` {
		t.Errorf("unexpected description %q", e.Description)
	}
}

func TestActivityFailuresDoNotFailMutations(t *testing.T) {
	store := &faultyStore{Store: newMemoryStore()}
	svc := newTestService(t, store)
	ctx := context.Background()

	store.appendActivityErr = errs.Unavailable("append activity", errors.New("timeout"))
	e, err := svc.RecordDirectExpense(ctx, alice, DirectExpenseInput{
		Payer:        alice.Phone,
		Participants: []string{alice.Phone, bob.Phone},
		Amount:       dec("8"),
		Category:     "Food",
		Reason:       "Tea",
	})
	if err != nil {
		t.Fatalf("RecordDirectExpense must succeed when activity append fails: %v", err)
	}
	if _, err := store.GetExpense(ctx, e.ID); err != nil {
		t.Errorf("expected expense persisted, got %v", err)
	}

	store.listActivityErr = errs.Unavailable("list activity", errors.New("timeout"))
	entries, err := svc.ListActivity(ctx, alice)
	if err != nil {
		t.Fatalf("ListActivity must degrade, got %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil feed, got %#v", entries)
	}
}

func TestWithClock(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := New(newMemoryStore(), WithLogger(quietLogger()), WithClock(func() time.Time { return now }))
	ctx := context.Background()
	for _, id := range []models.Identity{alice, bob} {
		if _, err := svc.RegisterUser(ctx, id); err != nil {
			t.Fatalf("RegisterUser failed: %v", err)
		}
	}

	e, err := svc.RecordDirectExpense(ctx, alice, DirectExpenseInput{
		Payer:        alice.Phone,
		Participants: []string{alice.Phone, bob.Phone},
		Amount:       dec("8"),
		Category:     "Food",
		Reason:       "Tea",
	})
	if err != nil {
		t.Fatalf("RecordDirectExpense failed: %v", err)
	}
	if !e.Date.Equal(now) {
		t.Errorf("expected default date %v, got %v", now, e.Date)
	}
	entries, _ := svc.ListActivity(ctx, bob)
	if len(entries) != 1 || entries[0].Timestamp != now.UnixNano() {
		t.Errorf("expected activity stamped with the clock, got %+v", entries)
	}
	if !calculator.Round(entries[0].Amount).Equal(dec("8")) {
		t.Errorf("expected amount 8, got %s", entries[0].Amount)
	}
}
