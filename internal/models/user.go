package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Age          *int      `json:"age"`
	ProfilePhoto *string   `json:"profile_photo"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the client-facing serialization of a User. It never carries
// the password hash, and created_at is rendered as RFC 3339.
type PublicUser struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Age          *int    `json:"age"`
	ProfilePhoto *string `json:"profile_photo"`
	CreatedAt    string  `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Age:          u.Age,
		ProfilePhoto: u.ProfilePhoto,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	}
}
