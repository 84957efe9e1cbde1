package core

import (
	"encoding/json"

	"github.com/dkeye/Hush/internal/domain"
)

// Envelope is the one-per-message wire unit in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client → server envelope types.
const (
	TypeJoinRoom         = "join_room"
	TypeSendMessage      = "send_message"
	TypeChangePassphrase = "change_passphrase"
	TypeLeaveRoom        = "leave_room"
)

// Server → client envelope types.
const (
	TypeMessageBroadcast  = "message_broadcast"
	TypeUserJoined        = "user_joined"
	TypeUserLeft          = "user_left"
	TypeUserListUpdate    = "user_list_update"
	TypeClearHistory      = "clear_history"
	TypePassphraseChanged = "passphrase_changed"
	TypeMessageDeleted    = "message_deleted"
	TypeError             = "error"
)

const (
	MinPassphraseLen = 6
	// MaxPassphraseLen is bcrypt's input ceiling; anything longer must
	// be rejected at the boundary instead of failing inside the hasher.
	MaxPassphraseLen = 72
)

// JoinRoomPayload carries the client-asserted identity. IsAdmin is
// trusted as presented; admission rests on passphrase knowledge alone.
// That the joiner, not the server, decides adminship is inherited
// behavior and a known hardening opportunity.
type JoinRoomPayload struct {
	RoomID     string `json:"roomId" validate:"required"`
	Username   string `json:"username" validate:"required,min=2,max=36"`
	Passphrase string `json:"passphrase" validate:"required"`
	UserID     string `json:"userId" validate:"required,max=36"`
	IsAdmin    bool   `json:"isAdmin"`
}

type SendMessagePayload struct {
	RoomID  string `json:"roomId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
	Content string `json:"content" validate:"required"`
	// TTL in seconds; zero means the message stays until rotation.
	TTL int `json:"ttl" validate:"omitempty,gte=1,lte=86400"`
}

type ChangePassphrasePayload struct {
	RoomID        string `json:"roomId" validate:"required"`
	UserID        string `json:"userId" validate:"required"`
	NewPassphrase string `json:"newPassphrase" validate:"required,min=6,max=72"`
}

type LeaveRoomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

type UserEventPayload struct {
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
}

type UserListPayload struct {
	Users []*domain.User `json:"users"`
}

type MessageDeletedPayload struct {
	MessageID domain.MessageID `json:"messageId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Fatal   bool   `json:"fatal,omitempty"`
}

// NewEvent wraps a server→client payload into a wire frame.
func NewEvent(typ string, payload any) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: typ, Payload: raw})
}
