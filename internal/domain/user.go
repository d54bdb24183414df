package domain

import "time"

// User represents a registered account.
//
// ID is the storage key and never leaves the persistence layer; UID is the
// application identifier carried in session tokens and used as the owner
// reference on drafts.
type User struct {
	ID           int64
	UID          string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
