package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

func TestRecordDirectExpense_Validation(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	valid := func() DirectExpenseInput {
		return DirectExpenseInput{
			Payer:        alice.Phone,
			Participants: []string{alice.Phone, bob.Phone},
			Amount:       dec("40"),
			Category:     "Food",
			Reason:       "Lunch",
		}
	}

	tests := []struct {
		name    string
		caller  models.Identity
		modify  func(in *DirectExpenseInput)
		wantErr error
	}{
		{"zero amount", alice, func(in *DirectExpenseInput) { in.Amount = decimal.Zero }, errs.ErrValidation},
		{"negative amount", alice, func(in *DirectExpenseInput) { in.Amount = dec("-5") }, errs.ErrValidation},
		{"no participants", alice, func(in *DirectExpenseInput) { in.Participants = nil }, errs.ErrValidation},
		{"payer not participant", alice, func(in *DirectExpenseInput) { in.Payer = carol.Phone }, errs.ErrValidation},
		{"missing category", alice, func(in *DirectExpenseInput) { in.Category = "" }, errs.ErrValidation},
		{"markup only reason", alice, func(in *DirectExpenseInput) { in.Reason = "<b></b>" }, errs.ErrValidation},
		{"caller not participant", carol, func(in *DirectExpenseInput) {}, errs.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.modify(&in)
			if _, err := svc.RecordDirectExpense(ctx, tt.caller, in); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	expenses, err := store.ListExpensesInvolving(ctx, alice.Phone)
	if err != nil {
		t.Fatalf("ListExpensesInvolving failed: %v", err)
	}
	if len(expenses) != 0 {
		t.Errorf("rejected expenses must not be persisted, found %d", len(expenses))
	}
}

func TestRecordDirectExpense(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	e, err := svc.RecordDirectExpense(ctx, alice, DirectExpenseInput{
		Payer:        "(555) 111-0000",
		Participants: []string{"555-111-0000", "5552220000", "5552220000"},
		Amount:       dec("30"),
		Category:     "Food",
		Reason:       "Pizza <script>alert(1)</script>",
		Date:         date,
	})
	if err != nil {
		t.Fatalf("RecordDirectExpense failed: %v", err)
	}
	if e.ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if len(e.Participants) != 2 {
		t.Errorf("expected duplicate participants collapsed, got %v", e.Participants)
	}
	if e.Reason != "Pizza" {
		t.Errorf("expected markup stripped, got %q", e.Reason)
	}
	if !e.Date.Equal(date) {
		t.Errorf("expected date %v, got %v", date, e.Date)
	}

	// Direct expenses do not create friendships
	friends, _ := svc.ListFriends(ctx, alice)
	if len(friends) != 0 {
		t.Errorf("expected no friendships, got %v", friends)
	}
}

// B pays $100 shared with A: A owes 50; after A pays B 50 the balance is zero.
func TestDirectExpenseSettlementScenario(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.RecordDirectExpense(ctx, bob, DirectExpenseInput{
		Payer:        bob.Phone,
		Participants: []string{alice.Phone, bob.Phone},
		Amount:       dec("100"),
		Category:     "Food",
		Reason:       "Dinner",
	}); err != nil {
		t.Fatalf("RecordDirectExpense failed: %v", err)
	}

	assertBalance := func(want string) {
		t.Helper()
		ab, err := svc.GetOutstandingAmount(ctx, alice, bob.Phone)
		if err != nil {
			t.Fatalf("GetOutstandingAmount failed: %v", err)
		}
		ba, err := svc.GetOutstandingAmount(ctx, bob, alice.Phone)
		if err != nil {
			t.Fatalf("GetOutstandingAmount failed: %v", err)
		}
		if !approx(ab, dec(want)) {
			t.Errorf("balance(A, B) = %s, want %s", ab, want)
		}
		if !approx(ab, ba.Neg()) {
			t.Errorf("balances not symmetric: %s vs %s", ab, ba)
		}
	}

	assertBalance("-50")

	if _, err := svc.RecordSettlement(ctx, alice, SettlementInput{
		From:   alice.Phone,
		To:     bob.Phone,
		Amount: dec("50"),
		Method: models.MethodCard,
	}); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	assertBalance("0")

	// Overpaying flips the direction
	if _, err := svc.RecordSettlement(ctx, alice, SettlementInput{
		From:   alice.Phone,
		To:     bob.Phone,
		Amount: dec("10"),
	}); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	assertBalance("10")
}

func TestRecordSettlement_Validation(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	g := mustGroup(t, svc, alice, "Trip", bob)

	tests := []struct {
		name    string
		caller  models.Identity
		in      SettlementInput
		wantErr error
	}{
		{"zero amount", alice, SettlementInput{From: alice.Phone, To: bob.Phone, Amount: decimal.Zero}, errs.ErrValidation},
		{"self", alice, SettlementInput{From: alice.Phone, To: alice.Phone, Amount: dec("5")}, errs.ErrValidation},
		{"bad method", alice, SettlementInput{From: alice.Phone, To: bob.Phone, Amount: dec("5"), Method: "cash"}, errs.ErrValidation},
		{"not a party", carol, SettlementInput{From: alice.Phone, To: bob.Phone, Amount: dec("5")}, errs.ErrForbidden},
		{"unknown group", alice, SettlementInput{From: alice.Phone, To: bob.Phone, Amount: dec("5"), GroupID: "missing"}, errs.ErrNotFound},
		{"non-member in group", alice, SettlementInput{From: alice.Phone, To: carol.Phone, Amount: dec("5"), GroupID: g.ID}, errs.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.RecordSettlement(ctx, tt.caller, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	st, err := svc.RecordSettlement(ctx, bob, SettlementInput{From: bob.Phone, To: alice.Phone, Amount: dec("5")})
	if err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	if st.Method != models.MethodOther {
		t.Errorf("expected default method %q, got %q", models.MethodOther, st.Method)
	}
}

func TestDeleteExpense(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	e, err := svc.RecordDirectExpense(ctx, alice, DirectExpenseInput{
		Payer:        alice.Phone,
		Participants: []string{alice.Phone, bob.Phone},
		Amount:       dec("20"),
		Category:     "Transport",
		Reason:       "Taxi",
	})
	if err != nil {
		t.Fatalf("RecordDirectExpense failed: %v", err)
	}

	if err := svc.DeleteExpense(ctx, carol, e.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteExpense(ctx, bob, e.ID); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	if err := svc.DeleteExpense(ctx, bob, e.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	balance, err := svc.GetOutstandingAmount(ctx, alice, bob.Phone)
	if err != nil {
		t.Fatalf("GetOutstandingAmount failed: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("expected zero balance after delete, got %s", balance)
	}
}

func TestRecordGroupExpense_EqualSplit(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	g := mustGroup(t, svc, alice, "House", bob, carol, dave)

	tests := []struct {
		name     string
		amount   string
		selected []string
		want     []string
	}{
		{"all members", "100", nil, []string{"25", "25", "25", "25"}},
		{"remainder to first", "10", []string{alice.Phone, bob.Phone, carol.Phone}, []string{"3.34", "3.33", "3.33"}},
		{"subset", "9", []string{carol.Phone, dave.Phone}, []string{"4.5", "4.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := svc.RecordGroupExpense(ctx, alice, GroupExpenseInput{
				GroupID:         g.ID,
				Payer:           alice.Phone,
				SelectedMembers: tt.selected,
				Amount:          dec(tt.amount),
				Reason:          "Groceries",
			})
			if err != nil {
				t.Fatalf("RecordGroupExpense failed: %v", err)
			}
			if e.SplitMode != models.SplitEqual {
				t.Errorf("expected equal split mode, got %q", e.SplitMode)
			}
			if len(e.Splits) != len(tt.want) {
				t.Fatalf("expected %d splits, got %d", len(tt.want), len(e.Splits))
			}
			sum := decimal.Zero
			for i, sp := range e.Splits {
				if !sp.Amount.Equal(dec(tt.want[i])) {
					t.Errorf("split %d = %s, want %s", i, sp.Amount, tt.want[i])
				}
				if sp.Name == "" {
					t.Errorf("split %d has no name snapshot", i)
				}
				sum = sum.Add(sp.Amount)
			}
			if !sum.Equal(dec(tt.amount)) {
				t.Errorf("splits sum to %s, want %s", sum, tt.amount)
			}
		})
	}
}

func TestRecordGroupExpense_CustomSplit(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	g := mustGroup(t, svc, alice, "Trip", bob, carol)

	before, err := svc.ListActivity(ctx, alice)
	if err != nil {
		t.Fatalf("ListActivity failed: %v", err)
	}

	_, err = svc.RecordGroupExpense(ctx, alice, GroupExpenseInput{
		GroupID:   g.ID,
		Payer:     alice.Phone,
		Amount:    dec("100"),
		Reason:    "Hotel",
		SplitMode: models.SplitCustom,
		CustomSplits: []SplitInput{
			{Phone: alice.Phone, Amount: dec("30")},
			{Phone: bob.Phone, Amount: dec("30")},
			{Phone: carol.Phone, Amount: dec("30")},
		},
	})
	if !errors.Is(err, errs.ErrSplitMismatch) {
		t.Fatalf("expected ErrSplitMismatch, got %v", err)
	}
	if !errors.Is(err, errs.ErrValidation) {
		t.Errorf("expected split mismatch to be a validation error, got %v", err)
	}

	expenses, err := store.ListGroupExpenses(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListGroupExpenses failed: %v", err)
	}
	if len(expenses) != 0 {
		t.Errorf("rejected expense must not be persisted, found %d", len(expenses))
	}
	after, _ := svc.ListActivity(ctx, alice)
	if len(after) != len(before) {
		t.Errorf("rejected expense must not produce activity: %d -> %d", len(before), len(after))
	}

	// Within tolerance is accepted and stored as given
	e, err := svc.RecordGroupExpense(ctx, alice, GroupExpenseInput{
		GroupID:   g.ID,
		Payer:     bob.Phone,
		Amount:    dec("100"),
		Reason:    "Hotel",
		SplitMode: models.SplitCustom,
		CustomSplits: []SplitInput{
			{Phone: alice.Phone, Amount: dec("33.33")},
			{Phone: bob.Phone, Amount: dec("33.33")},
			{Phone: carol.Phone, Amount: dec("33.335")},
		},
	})
	if err != nil {
		t.Fatalf("RecordGroupExpense failed: %v", err)
	}
	if e.PaidByName != "Bob" {
		t.Errorf("expected payer name snapshot Bob, got %q", e.PaidByName)
	}
	if !e.Splits[2].Amount.Equal(dec("33.335")) {
		t.Errorf("expected custom amount kept, got %s", e.Splits[2].Amount)
	}

	invalid := []struct {
		name   string
		splits []SplitInput
	}{
		{"none", nil},
		{"non-member", []SplitInput{{Phone: dave.Phone, Amount: dec("100")}}},
		{"duplicate", []SplitInput{{Phone: bob.Phone, Amount: dec("50")}, {Phone: bob.Phone, Amount: dec("50")}}},
		{"negative", []SplitInput{{Phone: bob.Phone, Amount: dec("150")}, {Phone: carol.Phone, Amount: dec("-50")}}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordGroupExpense(ctx, alice, GroupExpenseInput{
				GroupID:      g.ID,
				Payer:        alice.Phone,
				Amount:       dec("100"),
				Reason:       "Hotel",
				SplitMode:    models.SplitCustom,
				CustomSplits: tt.splits,
			})
			if !errors.Is(err, errs.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestRecordGroupExpense_Access(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	g := mustGroup(t, svc, alice, "Trip", bob)

	tests := []struct {
		name    string
		caller  models.Identity
		in      GroupExpenseInput
		wantErr error
	}{
		{"unknown group", alice, GroupExpenseInput{GroupID: "missing", Payer: alice.Phone, Amount: dec("10"), Reason: "x"}, errs.ErrNotFound},
		{"caller not member", carol, GroupExpenseInput{GroupID: g.ID, Payer: alice.Phone, Amount: dec("10"), Reason: "x"}, errs.ErrForbidden},
		{"payer not member", alice, GroupExpenseInput{GroupID: g.ID, Payer: carol.Phone, Amount: dec("10"), Reason: "x"}, errs.ErrValidation},
		{"selected non-member", alice, GroupExpenseInput{GroupID: g.ID, Payer: alice.Phone, SelectedMembers: []string{carol.Phone}, Amount: dec("10"), Reason: "x"}, errs.ErrValidation},
		{"bad mode", alice, GroupExpenseInput{GroupID: g.ID, Payer: alice.Phone, Amount: dec("10"), Reason: "x", SplitMode: "weighted"}, errs.ErrValidation},
		{"missing reason", alice, GroupExpenseInput{GroupID: g.ID, Payer: alice.Phone, Amount: dec("10")}, errs.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.RecordGroupExpense(ctx, tt.caller, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStoreFailurePropagates(t *testing.T) {
	store := &faultyStore{Store: newMemoryStore(), addExpenseErr: errs.Unavailable("add expense", errors.New("disk full"))}
	svc := newTestService(t, store)

	_, err := svc.RecordDirectExpense(context.Background(), alice, DirectExpenseInput{
		Payer:        alice.Phone,
		Participants: []string{alice.Phone, bob.Phone},
		Amount:       dec("10"),
		Category:     "Food",
		Reason:       "Snacks",
	})
	if !errors.Is(err, errs.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
