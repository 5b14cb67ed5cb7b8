package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitify/internal/ledger"
	"github.com/mmynk/splitify/internal/models"
)

// Expense, group expense and settlement requests use the ledger input types
// directly: ledger.DirectExpenseInput, ledger.GroupExpenseInput and
// ledger.SettlementInput. Amounts travel as decimal strings.

// RegisterRequest registers the authenticated caller. Name overrides the
// token's display name when set.
type RegisterRequest struct {
	Name string `json:"name,omitempty"`
}

type RegisterResponse struct {
	User models.User `json:"user"`
}

type GetDisplayNameRequest struct {
	Phone string `json:"phone"`
}

type GetDisplayNameResponse struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

type AddFriendRequest struct {
	Phone string `json:"phone"`
}

type AddFriendResponse struct {
	Friendship models.Friendship `json:"friendship"`
}

type RemoveFriendRequest struct {
	Phone string `json:"phone"`
}

type RemoveFriendResponse struct{}

type ListFriendsRequest struct{}

type ListFriendsResponse struct {
	Friends []models.Friend `json:"friends"`
}

type SuggestFriendsRequest struct {
	Contacts []models.Contact `json:"contacts"`
}

type SuggestFriendsResponse struct {
	Suggestions []ledger.Suggestion `json:"suggestions"`
}

type RecordExpenseResponse struct {
	Expense models.Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type RecordGroupExpenseResponse struct {
	Expense models.GroupExpense `json:"expense"`
}

type RecordSettlementResponse struct {
	Settlement models.Settlement `json:"settlement"`
}

type CreateGroupRequest struct {
	Name    string          `json:"name"`
	Members []models.Member `json:"members"`
}

type CreateGroupResponse struct {
	Group models.Group `json:"group"`
}

type LeaveGroupRequest struct {
	GroupID string `json:"group_id"`
}

type LeaveGroupResponse struct{}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []models.Group `json:"groups"`
}

type GetGroupDetailRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupDetailResponse struct {
	Detail ledger.GroupDetail `json:"detail"`
}

type GetDashboardSummaryRequest struct{}

type GetDashboardSummaryResponse struct {
	Summary ledger.DashboardSummary `json:"summary"`
}

type GetFriendHistoryRequest struct {
	Phone string `json:"phone"`
}

type GetFriendHistoryResponse struct {
	History ledger.FriendHistory `json:"history"`
}

// GetOutstandingAmountRequest asks for the direct balance with a friend, as
// used when sending a payment reminder.
type GetOutstandingAmountRequest struct {
	Phone string `json:"phone"`
}

// GetOutstandingAmountResponse is positive when the friend owes the caller.
type GetOutstandingAmountResponse struct {
	Phone  string          `json:"phone"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ListActivityRequest limits the feed to the newest Limit entries; zero means all.
type ListActivityRequest struct {
	Limit int `json:"limit,omitempty"`
}

type ListActivityResponse struct {
	Entries []models.ActivityEntry `json:"entries"`
}
