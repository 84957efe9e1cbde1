// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"time"
)

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

// User is a room membership record. The ID is generated client-side and
// trusted as presented; passphrase knowledge is the only admission proof.
// Exactly one User exists per live connection.
type User struct {
	ID       UserID    `json:"id"`
	Username string    `json:"username"`
	RoomID   RoomID    `json:"roomId"`
	IsAdmin  bool      `json:"isAdmin"`
	JoinedAt time.Time `json:"joinedAt"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(id UserID, username string, roomID RoomID, isAdmin bool) (*User, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &User{ID: id, Username: username, RoomID: roomID, IsAdmin: isAdmin}, nil
}
