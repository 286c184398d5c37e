package domain

import "time"

// Identity is the authenticable account: credentials plus public profile fields.
type Identity struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
