// Package activity builds activity log entries for ledger mutations and
// records them with retries.
//
// Entries carry human-readable descriptions built from the name snapshots
// available when the mutation happened; they are never rewritten.
package activity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitify/internal/calculator"
	"github.com/mmynk/splitify/internal/models"
)

// FormatAmount renders an amount as dollars with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return "$" + calculator.Round(d).StringFixed(2)
}

func displayName(m models.Member) string {
	if m.Name != "" {
		return m.Name
	}
	return models.FormatPhone(m.Phone)
}

// others returns phones without the excluded ones, deduplicated, in order.
func others(phones []string, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude)+len(phones))
	for _, p := range exclude {
		skip[p] = true
	}
	var out []string
	for _, p := range phones {
		if skip[p] {
			continue
		}
		skip[p] = true
		out = append(out, p)
	}
	return out
}

// Expense describes a recorded direct expense.
// names maps participant phones to display names; missing names fall back to the phone.
func Expense(actor models.Member, e *models.Expense, names map[string]string) *models.ActivityEntry {
	rest := others(e.Participants, actor.Phone)
	labels := make([]string, len(rest))
	for i, p := range rest {
		labels[i] = displayName(models.Member{Phone: p, Name: names[p]})
	}

	entry := &models.ActivityEntry{
		Type:         models.ActivityExpense,
		Actor:        actor.Phone,
		Participants: rest,
		RecordID:     e.ID,
		Amount:       e.Amount,
		Description: fmt.Sprintf("%s added %q (%s) with %s",
			displayName(actor), e.Reason, FormatAmount(e.Amount), strings.Join(labels, ", ")),
	}
	if len(rest) == 1 {
		entry.Target = rest[0]
		entry.Participants = nil
	}
	return entry
}

// ExpenseDeleted describes the removal of a direct expense.
func ExpenseDeleted(actor models.Member, e *models.Expense) *models.ActivityEntry {
	return &models.ActivityEntry{
		Type:         models.ActivityExpenseDeleted,
		Actor:        actor.Phone,
		Participants: others(e.Participants, actor.Phone),
		RecordID:     e.ID,
		Amount:       e.Amount,
		Description:  fmt.Sprintf("%s deleted %q (%s)", displayName(actor), e.Reason, FormatAmount(e.Amount)),
	}
}

// GroupExpense describes an expense recorded in a group. It is visible to
// the current members and to everyone with a split.
func GroupExpense(actor models.Member, g *models.Group, e *models.GroupExpense) *models.ActivityEntry {
	phones := g.MemberPhones()
	for _, s := range e.Splits {
		phones = append(phones, s.Phone)
	}
	payer := models.Member{Phone: e.PaidBy, Name: e.PaidByName}
	return &models.ActivityEntry{
		Type:         models.ActivityGroupExpense,
		Actor:        actor.Phone,
		Participants: others(phones, actor.Phone),
		GroupID:      g.ID,
		RecordID:     e.ID,
		Amount:       e.Total,
		Description: fmt.Sprintf("%s added %q (%s) in %q, paid by %s",
			displayName(actor), e.Reason, FormatAmount(e.Total), g.Name, displayName(payer)),
	}
}

// Settlement describes a payment from one user to another. groupName is
// empty for settlements outside a group.
func Settlement(actor, from, to models.Member, s *models.Settlement, groupName string) *models.ActivityEntry {
	desc := fmt.Sprintf("%s paid %s %s (%s)", displayName(from), displayName(to), FormatAmount(s.Amount), s.Method)
	if groupName != "" {
		desc += fmt.Sprintf(" in %q", groupName)
	}
	target := to.Phone
	if actor.Phone == to.Phone {
		target = from.Phone
	}
	return &models.ActivityEntry{
		Type:        models.ActivitySettlement,
		Actor:       actor.Phone,
		Target:      target,
		GroupID:     s.GroupID,
		RecordID:    s.ID,
		Amount:      s.Amount,
		Description: desc,
	}
}

// FriendAdded describes a new friendship.
func FriendAdded(actor, friend models.Member, friendshipID string) *models.ActivityEntry {
	return &models.ActivityEntry{
		Type:        models.ActivityFriendAdded,
		Actor:       actor.Phone,
		Target:      friend.Phone,
		RecordID:    friendshipID,
		Description: fmt.Sprintf("%s added %s as a friend", displayName(actor), displayName(friend)),
	}
}

// FriendRemoved describes a removed friendship.
func FriendRemoved(actor, friend models.Member) *models.ActivityEntry {
	return &models.ActivityEntry{
		Type:        models.ActivityFriendRemoved,
		Actor:       actor.Phone,
		Target:      friend.Phone,
		RecordID:    models.FriendshipKey(actor.Phone, friend.Phone),
		Description: fmt.Sprintf("%s removed %s from friends", displayName(actor), displayName(friend)),
	}
}

// GroupCreated describes a new group; every initial member sees it.
func GroupCreated(actor models.Member, g *models.Group) *models.ActivityEntry {
	return &models.ActivityEntry{
		Type:         models.ActivityGroupCreated,
		Actor:        actor.Phone,
		Participants: others(g.MemberPhones(), actor.Phone),
		GroupID:      g.ID,
		RecordID:     g.ID,
		Description:  fmt.Sprintf("%s created the group %q", displayName(actor), g.Name),
	}
}

// GroupLeft describes a member leaving; remaining members see it.
// g is the group after the member was removed.
func GroupLeft(actor models.Member, g *models.Group) *models.ActivityEntry {
	return &models.ActivityEntry{
		Type:         models.ActivityGroupLeft,
		Actor:        actor.Phone,
		Participants: others(g.MemberPhones(), actor.Phone),
		GroupID:      g.ID,
		RecordID:     g.ID,
		Description:  fmt.Sprintf("%s left the group %q", displayName(actor), g.Name),
	}
}

// GroupDeleted describes a deleted group; every former member sees it.
func GroupDeleted(actor models.Member, g *models.Group) *models.ActivityEntry {
	return &models.ActivityEntry{
		Type:         models.ActivityGroupDeleted,
		Actor:        actor.Phone,
		Participants: others(g.MemberPhones(), actor.Phone),
		GroupID:      g.ID,
		RecordID:     g.ID,
		Description:  fmt.Sprintf("%s deleted the group %q", displayName(actor), g.Name),
	}
}

// Visible reports whether user may see entry.
func Visible(entry *models.ActivityEntry, user string) bool {
	return entry.VisibleTo(user)
}
