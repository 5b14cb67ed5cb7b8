package models

import "github.com/shopspring/decimal"

// SettlementMethod is how a settlement was paid.
type SettlementMethod string

const (
	MethodCard  SettlementMethod = "card"
	MethodOther SettlementMethod = "other"
)

// Valid reports whether m is a known settlement method.
func (m SettlementMethod) Valid() bool {
	return m == MethodCard || m == MethodOther
}

// Settlement represents a payment from one user to another to clear debts.
// Settlements never modify expense records; they are netted at read time.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// From is the phone of the user who paid (debtor settling up).
	From string `json:"from"`

	// To is the phone of the user who received payment (creditor being paid).
	To string `json:"to"`

	// Amount is the payment amount. Overpayment is allowed.
	Amount decimal.Decimal `json:"amount"`

	Method SettlementMethod `json:"method"`

	// GroupID scopes the settlement to a group's balances. Empty means the
	// settlement nets against the direct pairwise balance.
	GroupID string `json:"group_id"`

	// Note is an optional description for the settlement.
	Note string `json:"note"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"created_at"`
}

// Between reports whether the settlement is between a and b in either direction.
func (s *Settlement) Between(a, b string) bool {
	return (s.From == a && s.To == b) || (s.From == b && s.To == a)
}
