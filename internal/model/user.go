// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account on the auth server.
//
// PasswordHash is the bcrypt output and never leaves the server: the json
// tag keeps it out of every response body.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Identity is who a validated bearer token belongs to.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}
