// Package models holds the server-side domain types.
package models

import "time"

// DefaultRole is assigned to every newly created account.
const DefaultRole = "user"

// Profile is the public view of an account. It has no password hash field,
// so anything that only ever handles a Profile cannot leak one.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is the stored account record. Only the repositories and the user
// service see it; everything else receives Public().
type User struct {
	Profile
	PasswordHash string `json:"-"`
}

// Public strips the credential part of the record.
func (u *User) Public() Profile {
	p := u.Profile
	p.Roles = append([]string(nil), u.Roles...)
	return p
}

// Credentials is the transient login input.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is what a new account is created from. Roles and the active
// flag are not part of it; the server assigns both.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Name     string `json:"name" validate:"max=100"`
}

// SessionToken is a signed, time-bounded assertion of a subject.
type SessionToken struct {
	Value     string    `json:"token"`
	Subject   string    `json:"-"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Principal is what a verified token tells us about the caller: the subject
// id and nothing else.
type Principal struct {
	Subject string
}
