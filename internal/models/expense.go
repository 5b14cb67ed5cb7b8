package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a direct expense between friends.
// The payer is owed Amount/len(Participants) by every other participant.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// PaidBy is the phone of the payer. Always one of Participants.
	PaidBy string `json:"paid_by"`

	// Participants are the phones sharing the expense, payer included.
	Participants []string `json:"participants"`

	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Reason   string          `json:"reason"`

	// Date is when the expense happened, as chosen by the user.
	Date time.Time `json:"date"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"created_at"`
}

// Involves reports whether phone is a participant.
func (e *Expense) Involves(phone string) bool {
	for _, p := range e.Participants {
		if p == phone {
			return true
		}
	}
	return false
}

// SplitMode selects how a group expense is divided.
type SplitMode string

const (
	SplitEqual  SplitMode = "equal"
	SplitCustom SplitMode = "custom"
)

// Valid reports whether m is a known split mode.
func (m SplitMode) Valid() bool {
	return m == SplitEqual || m == SplitCustom
}

// Split is one member's share of a group expense.
type Split struct {
	Phone  string          `json:"phone"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// GroupExpense is an expense scoped to one group.
// Splits are snapshotted at creation; membership changes never rewrite them.
type GroupExpense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	GroupID string          `json:"group_id"`
	Total   decimal.Decimal `json:"total"`
	Reason  string          `json:"reason"`
	Date    time.Time       `json:"date"`

	// PaidBy is the phone of the payer; PaidByName is their name snapshot.
	PaidBy     string `json:"paid_by"`
	PaidByName string `json:"paid_by_name"`

	SplitMode SplitMode `json:"split_mode"`
	Splits    []Split   `json:"splits"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"created_at"`
}

// SplitTotal returns the sum of all split amounts.
func (e *GroupExpense) SplitTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range e.Splits {
		sum = sum.Add(s.Amount)
	}
	return sum
}
