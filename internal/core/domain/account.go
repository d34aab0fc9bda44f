package domain

import (
	"regexp"
	"strings"
	"time"
)

const (
	KindAccount = "user"
	KindRole    = "role"
)

// RoleRef is the populated view of an account's role. Only ID is guaranteed:
// a reference to a deleted role renders without name and description.
type RoleRef struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Account is a user record as read back from the store. The password hash is
// never loaded into this type.
type Account struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Role        RoleRef    `json:"role"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FullName joins first and last name.
func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

var identifierPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// IsIdentifier reports whether s has the shape of a store-assigned id
// (24 hexadecimal characters).
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// CanonicalID returns s in the lower-case form the stores key by, and
// whether s is identifier-shaped at all.
func CanonicalID(s string) (string, bool) {
	if !IsIdentifier(s) {
		return s, false
	}
	return strings.ToLower(s), true
}
