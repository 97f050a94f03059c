package domain

import "time"

// User is a registered account. The ID is the identity reference used by
// presence entries and chat messages.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
