package domain

import "time"

type (
	RoomName string
	RoomID   string
)

const MaxRoomNameLen = 64

// Room is a passphrase-gated chat namespace. Verifier is the one-way
// bcrypt digest of the shared passphrase; the plaintext is never stored
// and the digest never leaves the process.
type Room struct {
	ID        RoomID    `json:"id"`
	Name      RoomName  `json:"name"`
	Verifier  []byte    `json:"-"`
	CreatedBy UserID    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}
