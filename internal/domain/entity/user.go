package entity

import (
	"time"
)

// Account types. Registration clamps unknown values to TypeUser; the edit
// path additionally refuses TypeAdmin (an account cannot promote itself).
const (
	TypeUser   = "user"
	TypeDealer = "dealer"
	TypeAdmin  = "admin"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt digest and must never be serialized in responses.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	Type      string
	Phone     string
	AvatarURL string
	// Favorites holds car ids in insertion order, no duplicates.
	// Owned listings are not denormalized here; they are read through
	// CarRepository.ListByOwner.
	Favorites []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClampType normalizes a caller-supplied account type at registration.
// "admin" is accepted here on purpose: the sampled behavior allows it and
// narrowing the set is a product decision, not a code fix.
func ClampType(t string) string {
	switch t {
	case TypeDealer, TypeUser, TypeAdmin:
		return t
	default:
		return TypeUser
	}
}

// EditableType reports whether t may be set through the profile edit path.
func EditableType(t string) bool {
	return t == TypeDealer || t == TypeUser
}
