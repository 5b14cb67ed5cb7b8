// Package calculator is the balance engine: pure functions that fold ledger
// entries into balances. Nothing here performs I/O or mutates its inputs.
package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitify/internal/models"
)

// noise is the smallest amount treated as a real debt when simplifying.
var noise = decimal.New(5, -3)

// Diagnostic reports a ledger entry that was skipped while folding balances.
type Diagnostic struct {
	// RecordID is the expense or settlement that was (partly) skipped.
	RecordID string `json:"record_id"`
	// Phone is the unknown phone that caused the skip.
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (%s)", d.RecordID, d.Message, d.Phone)
}

// DebtEdge represents a suggested payment from one member to another.
type DebtEdge struct {
	From   string          `json:"from"` // Member who owes
	To     string          `json:"to"`   // Member who is owed
	Amount decimal.Decimal `json:"amount"`
}

// Totals is a user's dashboard summary.
type Totals struct {
	OwedToYou decimal.Decimal `json:"owed_to_you"`
	YouOwe    decimal.Decimal `json:"you_owe"`
	Net       decimal.Decimal `json:"net"`
}

// PairwiseBalance returns the net direct balance between a and b from a's side.
// Positive means b owes a, negative means a owes b.
//
// Algorithm:
//   - For each expense listing both a and b, each non-payer owes the payer
//     amount/len(participants). Expenses paid by a third party do not move
//     value between a and b.
//   - Settlements without a group are netted by direction: b paying a reduces
//     what b owes, a paying b increases it.
//
// Nothing is rounded here; callers round at the display boundary.
func PairwiseBalance(expenses []models.Expense, settlements []models.Settlement, a, b string) decimal.Decimal {
	balance := decimal.Zero
	if a == b {
		return balance
	}

	for i := range expenses {
		e := &expenses[i]
		if len(e.Participants) == 0 || !e.Involves(a) || !e.Involves(b) {
			continue
		}
		share := e.Amount.Div(decimal.NewFromInt(int64(len(e.Participants))))
		switch e.PaidBy {
		case a:
			balance = balance.Add(share)
		case b:
			balance = balance.Sub(share)
		}
	}

	for i := range settlements {
		s := &settlements[i]
		if s.GroupID != "" {
			continue
		}
		switch {
		case s.From == b && s.To == a:
			balance = balance.Sub(s.Amount)
		case s.From == a && s.To == b:
			balance = balance.Add(s.Amount)
		}
	}

	return balance
}

// Counterparts returns every phone other than user that shares a direct expense
// or a non-group settlement with user, sorted.
func Counterparts(expenses []models.Expense, settlements []models.Settlement, user string) []string {
	seen := make(map[string]bool)
	for i := range expenses {
		if !expenses[i].Involves(user) {
			continue
		}
		for _, p := range expenses[i].Participants {
			if p != user {
				seen[p] = true
			}
		}
	}
	for i := range settlements {
		s := &settlements[i]
		if s.GroupID != "" {
			continue
		}
		if s.From == user {
			seen[s.To] = true
		} else if s.To == user {
			seen[s.From] = true
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// GroupMemberBalances computes every member's net balance inside one group.
// Positive means the member is owed money, negative means they owe.
//
// Algorithm:
//   - Every member starts at zero.
//   - For each expense, each non-payer split moves its amount from the split
//     member to the payer. The payer's own split is not a debt.
//   - For each settlement, the payer's balance rises and the receiver's falls.
//
// Entries referencing phones that are not members are skipped and reported as
// diagnostics; they never abort the fold. Skipping a whole split keeps the
// balances zero-sum.
func GroupMemberBalances(members []models.Member, expenses []models.GroupExpense, settlements []models.Settlement) (map[string]decimal.Decimal, []Diagnostic) {
	balances := make(map[string]decimal.Decimal, len(members))
	for _, m := range members {
		balances[m.Phone] = decimal.Zero
	}

	var diags []Diagnostic
	for i := range expenses {
		e := &expenses[i]
		if _, ok := balances[e.PaidBy]; !ok {
			diags = append(diags, Diagnostic{RecordID: e.ID, Phone: e.PaidBy, Message: "payer is not a group member"})
			continue
		}
		for _, s := range e.Splits {
			if s.Phone == e.PaidBy {
				continue
			}
			if _, ok := balances[s.Phone]; !ok {
				diags = append(diags, Diagnostic{RecordID: e.ID, Phone: s.Phone, Message: "split references unknown member"})
				continue
			}
			balances[s.Phone] = balances[s.Phone].Sub(s.Amount)
			balances[e.PaidBy] = balances[e.PaidBy].Add(s.Amount)
		}
	}

	for i := range settlements {
		s := &settlements[i]
		_, fromOK := balances[s.From]
		_, toOK := balances[s.To]
		if !fromOK || !toOK {
			phone := s.From
			if fromOK {
				phone = s.To
			}
			diags = append(diags, Diagnostic{RecordID: s.ID, Phone: phone, Message: "settlement references unknown member"})
			continue
		}
		balances[s.From] = balances[s.From].Add(s.Amount)
		balances[s.To] = balances[s.To].Sub(s.Amount)
	}

	return balances, diags
}

// TotalsByMember returns the raw spend per member: the sum of their split
// amounts regardless of who paid.
func TotalsByMember(expenses []models.GroupExpense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for i := range expenses {
		for _, s := range expenses[i].Splits {
			totals[s.Phone] = totals[s.Phone].Add(s.Amount)
		}
	}
	return totals
}

// TotalSpent returns the sum of all expense totals.
func TotalSpent(expenses []models.GroupExpense) decimal.Decimal {
	sum := decimal.Zero
	for i := range expenses {
		sum = sum.Add(expenses[i].Total)
	}
	return sum
}

// AggregateUserTotals folds a user's pairwise balances and per-group balances
// into a dashboard summary. Positive parts go to OwedToYou, negative parts (as
// absolute values) to YouOwe, and Net = OwedToYou - YouOwe.
func AggregateUserTotals(pairwise, groupBalances []decimal.Decimal) Totals {
	t := Totals{OwedToYou: decimal.Zero, YouOwe: decimal.Zero}
	add := func(v decimal.Decimal) {
		if v.IsPositive() {
			t.OwedToYou = t.OwedToYou.Add(v)
		} else if v.IsNegative() {
			t.YouOwe = t.YouOwe.Add(v.Neg())
		}
	}
	for _, v := range pairwise {
		add(v)
	}
	for _, v := range groupBalances {
		add(v)
	}
	t.Net = t.OwedToYou.Sub(t.YouOwe)
	return t
}

// SimplifyDebts turns net balances into a short list of suggested payments.
// Greedy: the largest debtor pays the largest creditor until one side is
// settled, then moves on. Ties are broken by phone so output is stable.
func SimplifyDebts(balances map[string]decimal.Decimal) []DebtEdge {
	type entry struct {
		phone  string
		amount decimal.Decimal
	}
	var creditors, debtors []entry
	for phone, bal := range balances {
		if bal.GreaterThan(noise) {
			creditors = append(creditors, entry{phone, bal})
		} else if bal.LessThan(noise.Neg()) {
			debtors = append(debtors, entry{phone, bal.Neg()})
		}
	}
	byAmount := func(list []entry) func(i, j int) bool {
		return func(i, j int) bool {
			if c := list[i].amount.Cmp(list[j].amount); c != 0 {
				return c > 0
			}
			return list[i].phone < list[j].phone
		}
	}
	sort.Slice(creditors, byAmount(creditors))
	sort.Slice(debtors, byAmount(debtors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.GreaterThan(noise) {
			edges = append(edges, DebtEdge{From: debtors[i].phone, To: creditors[j].phone, Amount: amount})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		// Move to next debtor/creditor if fully settled
		if debtors[i].amount.LessThanOrEqual(noise) {
			i++
		}
		if creditors[j].amount.LessThanOrEqual(noise) {
			j++
		}
	}
	return edges
}
