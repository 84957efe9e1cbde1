package core

import "github.com/dkeye/Hush/internal/domain"

// Frame is one wire-encoded envelope.
type Frame []byte

// SignalConnection abstracts a member's transport endpoint.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// RoomStore owns Room records and the passphrase verifier lifecycle.
// Verifier updates are not coupled to history purges here; the engine
// performs both inside one room critical section.
type RoomStore interface {
	Create(name domain.RoomName, passphrase string, createdBy domain.UserID) (*domain.Room, error)
	Get(id domain.RoomID) (*domain.Room, bool)
	// VerifyPassphrase reports whether candidate matches the current
	// verifier. An absent room verifies false.
	VerifyPassphrase(id domain.RoomID, candidate string) bool
	UpdatePassphrase(id domain.RoomID, newPassphrase string) error
	Delete(id domain.RoomID)
	List() []*domain.Room
}

// MemberStore owns the connected-user set per room. A user exists only
// while its room does; cascade removal goes through RemoveByRoom.
type MemberStore interface {
	Add(u *domain.User) *domain.User
	Get(id domain.UserID) (*domain.User, bool)
	// ByRoom returns members in join order.
	ByRoom(roomID domain.RoomID) []*domain.User
	// ByName is a case-sensitive exact match within one room.
	ByName(roomID domain.RoomID, username string) (*domain.User, bool)
	// Remove is idempotent; removing an absent id is a no-op.
	Remove(id domain.UserID)
	RemoveByRoom(roomID domain.RoomID)
}

// MessageLog is the per-room append-only relay history.
type MessageLog interface {
	Append(roomID domain.RoomID, userID domain.UserID, username, content string, ttl int) *domain.Message
	// ByRoom returns messages ordered by timestamp ascending.
	ByRoom(roomID domain.RoomID) []*domain.Message
	// Delete removes one message, reporting whether it still existed.
	Delete(roomID domain.RoomID, id domain.MessageID) bool
	Clear(roomID domain.RoomID)
}

// RoomInfo is a read-only listing view (no verifier fields).
type RoomInfo struct {
	ID        domain.RoomID   `json:"id"`
	Name      domain.RoomName `json:"name"`
	UserCount int             `json:"userCount"`
}
