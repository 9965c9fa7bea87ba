package dto

import "time"

// UserIdentity is the identity carried inside a token
type UserIdentity struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// PublicUser is what the short-token lookup exposes
type PublicUser struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	ShortToken string `json:"short_token"`
}

// AdminUserRow is a row in the admin user table
type AdminUserRow struct {
	ID         uint
	Email      string
	Name       string
	ShortToken string
	CreatedAt  time.Time
}
