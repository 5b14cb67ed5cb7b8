package models

import "github.com/shopspring/decimal"

// ActivityType names the kind of mutation an activity entry records.
type ActivityType string

const (
	ActivityExpense        ActivityType = "expense"
	ActivityExpenseDeleted ActivityType = "expense_deleted"
	ActivityGroupExpense   ActivityType = "group_expense"
	ActivitySettlement     ActivityType = "settlement"
	ActivityFriendAdded    ActivityType = "friend_added"
	ActivityFriendRemoved  ActivityType = "friend_removed"
	ActivityGroupCreated   ActivityType = "group_created"
	ActivityGroupLeft      ActivityType = "group_left"
	ActivityGroupDeleted   ActivityType = "group_deleted"
)

// ActivityEntry is one append-only record in the activity log.
// Entries are never updated or deleted.
type ActivityEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string `json:"id"`

	// Seq is the store-assigned insertion sequence, used to order entries
	// that share a timestamp.
	Seq int64 `json:"seq"`

	Type ActivityType `json:"type"`

	// Actor is the phone of the user who performed the action.
	Actor string `json:"actor"`

	// Target is the phone of the counterpart for pairwise actions.
	Target string `json:"target"`

	// Participants are additional phones the entry is visible to.
	Participants []string `json:"participants"`

	// GroupID is set for group-scoped actions.
	GroupID string `json:"group_id"`

	// RecordID is the ID of the expense, settlement, group or friendship acted upon.
	RecordID string `json:"record_id"`

	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`

	// Timestamp is the Unix time in nanoseconds when the entry was created.
	Timestamp int64 `json:"timestamp"`
}

// VisibleTo reports whether user is the actor, the target, or a participant.
func (a *ActivityEntry) VisibleTo(user string) bool {
	if a.Actor == user || a.Target == user {
		return true
	}
	for _, p := range a.Participants {
		if p == user {
			return true
		}
	}
	return false
}
