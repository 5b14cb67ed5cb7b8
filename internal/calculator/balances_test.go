package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitify/internal/models"
)

var epsilon = decimal.New(1, -6)

func approx(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(epsilon)
}

func expense(id, payer, amount string, participants ...string) models.Expense {
	return models.Expense{ID: id, PaidBy: payer, Amount: dec(amount), Participants: participants}
}

func groupExpense(id, payer, total string, splits ...models.Split) models.GroupExpense {
	return models.GroupExpense{ID: id, PaidBy: payer, Total: dec(total), Splits: splits}
}

func split(phone, amount string) models.Split {
	return models.Split{Phone: phone, Amount: dec(amount)}
}

func TestPairwiseBalance(t *testing.T) {
	tests := []struct {
		name        string
		expenses    []models.Expense
		settlements []models.Settlement
		want        string
	}{
		{
			name:     "no shared entries",
			expenses: []models.Expense{expense("e1", "A", "30", "A", "C")},
			want:     "0",
		},
		{
			name:     "A paid for two",
			expenses: []models.Expense{expense("e1", "A", "100", "A", "B")},
			want:     "50",
		},
		{
			name:     "B paid for two",
			expenses: []models.Expense{expense("e1", "B", "100", "A", "B")},
			want:     "-50",
		},
		{
			name:     "three participants paid by A",
			expenses: []models.Expense{expense("e1", "A", "90", "A", "B", "C")},
			want:     "30",
		},
		{
			name:     "third party payer does not move value between A and B",
			expenses: []models.Expense{expense("e1", "C", "90", "A", "B", "C")},
			want:     "0",
		},
		{
			name: "expenses net against each other",
			expenses: []models.Expense{
				expense("e1", "A", "100", "A", "B"),
				expense("e2", "B", "40", "A", "B"),
			},
			want: "30",
		},
		{
			name:     "settlement from B to A reduces B's debt",
			expenses: []models.Expense{expense("e1", "A", "100", "A", "B")},
			settlements: []models.Settlement{
				{ID: "s1", From: "B", To: "A", Amount: dec("20")},
			},
			want: "30",
		},
		{
			name: "overpayment flips the sign",
			settlements: []models.Settlement{
				{ID: "s1", From: "B", To: "A", Amount: dec("20")},
			},
			want: "-20",
		},
		{
			name:     "group settlements are not pairwise",
			expenses: []models.Expense{expense("e1", "A", "100", "A", "B")},
			settlements: []models.Settlement{
				{ID: "s1", From: "B", To: "A", Amount: dec("50"), GroupID: "g1"},
			},
			want: "50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PairwiseBalance(tt.expenses, tt.settlements, "A", "B")
			if !approx(got, dec(tt.want)) {
				t.Errorf("PairwiseBalance(A,B) = %s, want %s", got, tt.want)
			}
			// Symmetry
			rev := PairwiseBalance(tt.expenses, tt.settlements, "B", "A")
			if !approx(rev, got.Neg()) {
				t.Errorf("PairwiseBalance(B,A) = %s, want %s", rev, got.Neg())
			}
		})
	}
}

func TestPairwiseBalance_SettlementConvergence(t *testing.T) {
	expenses := []models.Expense{
		expense("e1", "B", "100", "A", "B"),
		expense("e2", "A", "10", "A", "B", "C"),
		expense("e3", "B", "7.77", "A", "B", "C"),
	}

	before := PairwiseBalance(expenses, nil, "A", "B")
	if !before.IsNegative() {
		t.Fatalf("expected A to owe B, got %s", before)
	}

	// A settles exactly what they owe
	settlements := []models.Settlement{{ID: "s1", From: "A", To: "B", Amount: before.Neg()}}
	after := PairwiseBalance(expenses, settlements, "A", "B")
	if !approx(after, decimal.Zero) {
		t.Errorf("balance after settling = %s, want 0", after)
	}
}

func TestPairwiseBalance_Scenario(t *testing.T) {
	// B paid $100 for A and B; A then settles $50.
	expenses := []models.Expense{expense("e1", "B", "100", "A", "B")}

	if got := PairwiseBalance(expenses, nil, "A", "B"); !got.Equal(dec("-50")) {
		t.Errorf("before settlement = %s, want -50", got)
	}

	settlements := []models.Settlement{{ID: "s1", From: "A", To: "B", Amount: dec("50")}}
	if got := PairwiseBalance(expenses, settlements, "A", "B"); !got.IsZero() {
		t.Errorf("after settlement = %s, want 0", got)
	}
}

func TestPairwiseBalance_SameUser(t *testing.T) {
	expenses := []models.Expense{expense("e1", "A", "100", "A", "B")}
	if got := PairwiseBalance(expenses, nil, "A", "A"); !got.IsZero() {
		t.Errorf("self balance = %s, want 0", got)
	}
}

func TestCounterparts(t *testing.T) {
	expenses := []models.Expense{
		expense("e1", "A", "30", "A", "C", "B"),
		expense("e2", "D", "30", "D", "E"),
	}
	settlements := []models.Settlement{
		{ID: "s1", From: "F", To: "A", Amount: dec("1")},
		{ID: "s2", From: "A", To: "G", Amount: dec("1"), GroupID: "g1"},
	}
	got := Counterparts(expenses, settlements, "A")
	want := []string{"B", "C", "F"}
	if len(got) != len(want) {
		t.Fatalf("Counterparts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Counterparts[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func members(phones ...string) []models.Member {
	out := make([]models.Member, len(phones))
	for i, p := range phones {
		out[i] = models.Member{Phone: p, Name: p}
	}
	return out
}

func TestGroupMemberBalances(t *testing.T) {
	tests := []struct {
		name        string
		members     []models.Member
		expenses    []models.GroupExpense
		settlements []models.Settlement
		want        map[string]string
		wantDiags   int
	}{
		{
			name:    "A pays 120 equally for three",
			members: members("A", "B", "C"),
			expenses: []models.GroupExpense{
				groupExpense("g1", "A", "120", split("A", "40"), split("B", "40"), split("C", "40")),
			},
			want: map[string]string{"A": "80", "B": "-40", "C": "-40"},
		},
		{
			name:    "payer not among splits",
			members: members("A", "B", "C"),
			expenses: []models.GroupExpense{
				groupExpense("g1", "A", "50", split("B", "20"), split("C", "30")),
			},
			want: map[string]string{"A": "50", "B": "-20", "C": "-30"},
		},
		{
			name:    "members with no expenses stay at zero",
			members: members("A", "B", "C", "D"),
			expenses: []models.GroupExpense{
				groupExpense("g1", "B", "10", split("A", "5"), split("B", "5")),
			},
			want: map[string]string{"A": "-5", "B": "5", "C": "0", "D": "0"},
		},
		{
			name:    "unknown split phone is skipped with a diagnostic",
			members: members("A", "B"),
			expenses: []models.GroupExpense{
				groupExpense("g1", "A", "90", split("A", "30"), split("B", "30"), split("Z", "30")),
			},
			want:      map[string]string{"A": "30", "B": "-30"},
			wantDiags: 1,
		},
		{
			name:    "unknown payer skips the whole expense",
			members: members("A", "B"),
			expenses: []models.GroupExpense{
				groupExpense("g1", "Z", "20", split("A", "10"), split("B", "10")),
				groupExpense("g2", "A", "20", split("A", "10"), split("B", "10")),
			},
			want:      map[string]string{"A": "10", "B": "-10"},
			wantDiags: 1,
		},
		{
			name:    "group settlement nets the debt",
			members: members("A", "B", "C"),
			expenses: []models.GroupExpense{
				groupExpense("g1", "A", "120", split("A", "40"), split("B", "40"), split("C", "40")),
			},
			settlements: []models.Settlement{
				{ID: "s1", From: "B", To: "A", Amount: dec("40"), GroupID: "grp"},
			},
			want: map[string]string{"A": "40", "B": "0", "C": "-40"},
		},
		{
			name:    "settlement with an outsider is skipped",
			members: members("A", "B"),
			settlements: []models.Settlement{
				{ID: "s1", From: "Z", To: "A", Amount: dec("5"), GroupID: "grp"},
			},
			want:      map[string]string{"A": "0", "B": "0"},
			wantDiags: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diags := GroupMemberBalances(tt.members, tt.expenses, tt.settlements)
			if len(diags) != tt.wantDiags {
				t.Errorf("got %d diagnostics, want %d: %v", len(diags), tt.wantDiags, diags)
			}
			if len(got) != len(tt.want) {
				t.Errorf("got %d balances, want %d", len(got), len(tt.want))
			}
			sum := decimal.Zero
			for phone, w := range tt.want {
				if !approx(got[phone], dec(w)) {
					t.Errorf("balance[%s] = %s, want %s", phone, got[phone], w)
				}
				sum = sum.Add(got[phone])
			}
			// Zero-sum holds even when entries are skipped
			if !approx(sum, decimal.Zero) {
				t.Errorf("balances sum to %s, want 0", sum)
			}
		})
	}
}

func TestTotalsByMember(t *testing.T) {
	expenses := []models.GroupExpense{
		groupExpense("g1", "A", "120", split("A", "40"), split("B", "40"), split("C", "40")),
		groupExpense("g2", "B", "30", split("A", "10"), split("B", "20")),
	}
	totals := TotalsByMember(expenses)
	want := map[string]string{"A": "50", "B": "60", "C": "40"}
	for phone, w := range want {
		if !totals[phone].Equal(dec(w)) {
			t.Errorf("totals[%s] = %s, want %s", phone, totals[phone], w)
		}
	}
	if got := TotalSpent(expenses); !got.Equal(dec("150")) {
		t.Errorf("TotalSpent = %s, want 150", got)
	}
}

func TestAggregateUserTotals(t *testing.T) {
	pairwise := []decimal.Decimal{dec("50"), dec("-20"), dec("0")}
	groups := []decimal.Decimal{dec("-5.5"), dec("10")}

	got := AggregateUserTotals(pairwise, groups)
	if !got.OwedToYou.Equal(dec("60")) {
		t.Errorf("OwedToYou = %s, want 60", got.OwedToYou)
	}
	if !got.YouOwe.Equal(dec("25.5")) {
		t.Errorf("YouOwe = %s, want 25.5", got.YouOwe)
	}
	if !got.Net.Equal(dec("34.5")) {
		t.Errorf("Net = %s, want 34.5", got.Net)
	}

	// Net is consistent with the plain sum of all figures
	all := append(append([]decimal.Decimal{}, pairwise...), groups...)
	if !got.Net.Equal(Sum(all)) {
		t.Errorf("Net = %s, want sum %s", got.Net, Sum(all))
	}
}

func TestAggregateUserTotals_Empty(t *testing.T) {
	got := AggregateUserTotals(nil, nil)
	if !got.OwedToYou.IsZero() || !got.YouOwe.IsZero() || !got.Net.IsZero() {
		t.Errorf("expected all zero totals, got %+v", got)
	}
}

func TestSimplifyDebts(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"A": dec("80"),
		"B": dec("-40"),
		"C": dec("-40"),
		"D": dec("0"),
	}
	edges := SimplifyDebts(balances)
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d: %v", len(edges), edges)
	}
	for _, e := range edges {
		if e.To != "A" {
			t.Errorf("expected all payments to A, got %+v", e)
		}
		if !e.Amount.Equal(dec("40")) {
			t.Errorf("expected 40, got %s", e.Amount)
		}
	}
	// Stable order: ties broken by phone
	if edges[0].From != "B" || edges[1].From != "C" {
		t.Errorf("unexpected order: %+v", edges)
	}
}

func TestSimplifyDebts_SettlesEverything(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"A": dec("25"),
		"B": dec("15"),
		"C": dec("-30"),
		"D": dec("-10"),
	}
	net := make(map[string]decimal.Decimal)
	for k, v := range balances {
		net[k] = v
	}
	for _, e := range SimplifyDebts(balances) {
		net[e.From] = net[e.From].Add(e.Amount)
		net[e.To] = net[e.To].Sub(e.Amount)
	}
	for phone, v := range net {
		if !approx(v, decimal.Zero) {
			t.Errorf("%s left with %s after suggested payments", phone, v)
		}
	}
}
