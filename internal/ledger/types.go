package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitify/internal/calculator"
	"github.com/mmynk/splitify/internal/models"
)

// DirectExpenseInput is a direct expense to record.
type DirectExpenseInput struct {
	Payer        string          `json:"payer" validate:"required"`
	Participants []string        `json:"participants" validate:"required,min=1,dive,required"`
	Amount       decimal.Decimal `json:"amount" validate:"decimal_positive"`
	Category     string          `json:"category" validate:"required"`
	Reason       string          `json:"reason" validate:"required"`

	// Date defaults to now when zero.
	Date time.Time `json:"date"`
}

// SplitInput is one member's amount in a custom split.
type SplitInput struct {
	Phone  string          `json:"phone" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"decimal_nonnegative"`
}

// GroupExpenseInput is a group expense to record.
type GroupExpenseInput struct {
	GroupID         string           `json:"group_id" validate:"required"`
	Payer           string           `json:"payer" validate:"required"`
	SelectedMembers []string         `json:"selected_members" validate:"dive,required"`
	Amount          decimal.Decimal  `json:"amount" validate:"decimal_positive"`
	Reason          string           `json:"reason" validate:"required"`
	Date            time.Time        `json:"date"`
	SplitMode       models.SplitMode `json:"split_mode" validate:"oneof=equal custom"`
	CustomSplits    []SplitInput     `json:"custom_splits" validate:"dive"`
}

// SettlementInput is a payment to record.
type SettlementInput struct {
	From   string                  `json:"from" validate:"required"`
	To     string                  `json:"to" validate:"required"`
	Amount decimal.Decimal         `json:"amount" validate:"decimal_positive"`
	Method models.SettlementMethod `json:"method" validate:"oneof=card other"`

	// GroupID scopes the settlement to a group; empty settles the direct balance.
	GroupID string `json:"group_id,omitempty"`
	Note    string `json:"note,omitempty"`
}

// FriendBalance is a friend with the caller's direct balance against them.
// Positive means the friend owes the caller.
type FriendBalance struct {
	Phone   string          `json:"phone"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`

	// IsFriend is false for counterparts whose friendship was removed while
	// shared expenses remain.
	IsFriend bool `json:"is_friend"`
}

// GroupBalance is a group with the caller's balance inside it.
type GroupBalance struct {
	GroupID string          `json:"group_id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// DashboardSummary is everything the caller's dashboard shows.
type DashboardSummary struct {
	Friends     []FriendBalance         `json:"friends"`
	Groups      []GroupBalance          `json:"groups"`
	Totals      calculator.Totals       `json:"totals"`
	Diagnostics []calculator.Diagnostic `json:"diagnostics,omitempty"`
}

// MemberAmount pairs a group member with an amount.
type MemberAmount struct {
	Phone  string          `json:"phone"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// GroupDetail is a group with its ledger and derived balances.
type GroupDetail struct {
	Group       models.Group          `json:"group"`
	Expenses    []models.GroupExpense `json:"expenses"`
	Settlements []models.Settlement   `json:"settlements"`

	// Balances holds every member's net balance; positive means owed.
	Balances []MemberAmount `json:"balances"`

	// FormerBalances holds the balances of members who left.
	FormerBalances []MemberAmount `json:"former_balances,omitempty"`

	// Totals holds every member's raw spend (sum of their splits).
	Totals []MemberAmount `json:"totals"`

	TotalSpent           decimal.Decimal         `json:"total_spent"`
	YourBalance          decimal.Decimal         `json:"your_balance"`
	SuggestedSettlements []calculator.DebtEdge   `json:"suggested_settlements"`
	Diagnostics          []calculator.Diagnostic `json:"diagnostics,omitempty"`
}

// FriendHistory is the direct ledger between the caller and one friend.
type FriendHistory struct {
	Friend      models.Friend       `json:"friend"`
	Expenses    []models.Expense    `json:"expenses"`
	Settlements []models.Settlement `json:"settlements"`
	Balance     decimal.Decimal     `json:"balance"`
}

// Suggestion is a registered user found in the caller's contacts.
type Suggestion struct {
	Phone       string `json:"phone"`
	ContactName string `json:"contact_name"`
	UserName    string `json:"user_name"`
}
