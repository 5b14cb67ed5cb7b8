package models

// Friendship is an undirected relation between two users.
// At most one record exists per unordered pair; ID is FriendshipKey(UserA, UserB).
type Friendship struct {
	ID string `json:"id"`

	// UserA is the phone of the user who created the friendship.
	UserA string `json:"user_a"`

	// UserB is the phone of the added friend.
	UserB string `json:"user_b"`

	// Metadata maps each member's phone to their display name at creation time.
	Metadata map[string]string `json:"metadata"`

	// CreatedAt is the Unix timestamp when the friendship was created.
	CreatedAt int64 `json:"created_at"`
}

// FriendshipKey returns the deterministic composite key for an unordered pair.
func FriendshipKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

// Other returns the phone of the member that is not user.
func (f *Friendship) Other(user string) string {
	if f.UserA == user {
		return f.UserB
	}
	return f.UserA
}

// Involves reports whether user is one of the two members.
func (f *Friendship) Involves(user string) bool {
	return f.UserA == user || f.UserB == user
}
