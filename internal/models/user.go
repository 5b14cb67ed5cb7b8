package models

import "time"

// User represents a registered user as supplied by the external auth collaborator.
type User struct {
	// Phone is the canonical, digits-only phone number. It is the identity key.
	Phone string `json:"phone"`

	// Name is the current display name.
	Name string `json:"name"`

	// UID is the auth provider's user ID. Informational only.
	UID string `json:"uid"`

	// CreatedAt is the Unix timestamp when the user was registered.
	CreatedAt int64 `json:"created_at"`
}

// NewUser creates a user with a normalized phone and the current timestamp.
func NewUser(phone, name, uid string) *User {
	return &User{
		Phone:     NormalizePhone(phone),
		Name:      SanitizeText(name),
		UID:       uid,
		CreatedAt: time.Now().Unix(),
	}
}

// Friend is one side of a Friendship as seen by the other party.
type Friend struct {
	Phone string `json:"phone"`
	// Name is the snapshot captured when the friendship was created.
	Name string `json:"name"`
}

// Contact is an address-book entry handed over by the contacts collaborator.
type Contact struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// Identity is the caller identity supplied by the external auth collaborator on every call.
// The ledger trusts it as given.
type Identity struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	UID   string `json:"uid"`
}

// Member returns the identity as a name-carrying member reference.
func (i Identity) Member() Member {
	return Member{Phone: i.Phone, Name: i.Name}
}
