package models

// Member is a group member with the display name captured when they joined.
type Member struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// Group represents a named set of members sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Trip To Lonavala").
	Name string `json:"name"`

	// Members never contains duplicate phones. The creator is always added at creation.
	Members []Member `json:"members"`

	// FormerMembers holds members who left. Their historical splits still
	// count toward everyone's balance.
	FormerMembers []Member `json:"former_members,omitempty"`

	// CreatedBy is the phone of the user who created the group.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}

// HasMember reports whether phone is in the member list.
func (g *Group) HasMember(phone string) bool {
	for _, m := range g.Members {
		if m.Phone == phone {
			return true
		}
	}
	return false
}

// Participants returns current members followed by former members: everyone
// whose splits and settlements make up the group's balances.
func (g *Group) Participants() []Member {
	out := make([]Member, 0, len(g.Members)+len(g.FormerMembers))
	out = append(out, g.Members...)
	for _, m := range g.FormerMembers {
		if !g.HasMember(m.Phone) {
			out = append(out, m)
		}
	}
	return out
}

// MemberName returns the snapshot name of a member, or "" if phone is not a member.
func (g *Group) MemberName(phone string) string {
	for _, m := range g.Members {
		if m.Phone == phone {
			return m.Name
		}
	}
	return ""
}

// MemberPhones returns the phones of all members in order.
func (g *Group) MemberPhones() []string {
	phones := make([]string, len(g.Members))
	for i, m := range g.Members {
		phones[i] = m.Phone
	}
	return phones
}

// DedupeMembers drops repeated phones, keeping the first occurrence.
func DedupeMembers(members []Member) []Member {
	seen := make(map[string]bool, len(members))
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if seen[m.Phone] {
			continue
		}
		seen[m.Phone] = true
		out = append(out, m)
	}
	return out
}
