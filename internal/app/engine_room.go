package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hush/internal/core"
	"github.com/dkeye/Hush/internal/domain"
)

// Join admits a connection into a room. The duplicate-name check and
// the membership insert sit in the same critical section, so two
// concurrent joins with one name cannot both succeed.
func (e *Engine) Join(p core.JoinRoomPayload, conn core.SignalConnection) *core.SessionError {
	roomID := domain.RoomID(p.RoomID)
	l := e.lockRoom(roomID)
	defer e.unlockRoom(roomID, l)

	if _, taken := e.members.ByName(roomID, p.Username); taken {
		return core.FatalSession("Username already taken in this room")
	}
	if _, ok := e.rooms.Get(roomID); !ok {
		return core.FatalSession("Room not found")
	}
	if !e.rooms.VerifyPassphrase(roomID, p.Passphrase) {
		return core.FatalSession("Invalid passphrase")
	}

	user, err := domain.NewUser(domain.UserID(p.UserID), p.Username, roomID, p.IsAdmin)
	if err != nil {
		return core.Protocol(err.Error())
	}
	e.members.Add(user)
	e.registry.Register(user.ID, roomID, conn)

	// Full history goes to the joiner only, ahead of anything a later
	// operation can enqueue for this connection.
	for _, m := range e.history.ByRoom(roomID) {
		e.send(conn, core.TypeMessageBroadcast, m)
	}
	e.broadcastExcept(roomID, user.ID, core.TypeUserJoined, core.UserEventPayload{
		UserID:   user.ID,
		Username: user.Username,
	})
	e.broadcastRoster(roomID)

	log.Info().Str("module", "app.engine").Str("user", string(user.ID)).Str("username", user.Username).Str("room_id", string(roomID)).Bool("admin", user.IsAdmin).Msg("joined room")
	return nil
}

// LeaveRoom handles an explicit leave envelope. A mismatched or unknown
// membership is silently ignored, as a leave is not worth an error.
func (e *Engine) LeaveRoom(roomID string, uid domain.UserID) {
	if u, ok := e.members.Get(uid); !ok || u.RoomID != domain.RoomID(roomID) {
		return
	}
	e.Disconnect(uid)
}

// Disconnect is the shared teardown funnel for explicit leaves,
// transport closes and heartbeat timeouts. It is idempotent; rotation
// evictions and racing close paths land here without double effects.
func (e *Engine) Disconnect(uid domain.UserID) {
	u, ok := e.members.Get(uid)
	if !ok {
		// Membership already gone (eviction or a second close); just
		// drop any registry leftovers.
		e.registry.CancelClose(uid)
		e.registry.Unregister(uid)
		return
	}
	roomID := u.RoomID
	l := e.lockRoom(roomID)
	defer e.unlockRoom(roomID, l)

	// Re-check under the lock; a rotation may have evicted us between
	// the lookup above and acquiring the room.
	u, ok = e.members.Get(uid)
	if !ok {
		e.registry.CancelClose(uid)
		e.registry.Unregister(uid)
		return
	}

	e.members.Remove(uid)
	e.registry.Unregister(uid)
	e.registry.CancelClose(uid)

	e.broadcast(roomID, core.TypeUserLeft, core.UserEventPayload{UserID: u.ID, Username: u.Username})
	e.broadcastRoster(roomID)

	remaining := len(e.members.ByRoom(roomID))
	log.Info().Str("module", "app.engine").Str("user", string(uid)).Str("room_id", string(roomID)).Int("remaining", remaining).Msg("left room")
	if remaining == 0 {
		e.deleteRoomLocked(roomID)
	}
}
