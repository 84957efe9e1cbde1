package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hush/internal/core"
	"github.com/dkeye/Hush/internal/domain"
)

// SendMessage appends an opaque content blob to the room history and
// fans it out to every member, sender included, so all clients render
// from the same broadcast.
func (e *Engine) SendMessage(p core.SendMessagePayload) *core.SessionError {
	roomID := domain.RoomID(p.RoomID)
	l := e.lockRoom(roomID)
	defer e.unlockRoom(roomID, l)

	u, ok := e.members.Get(domain.UserID(p.UserID))
	if !ok || u.RoomID != roomID {
		return core.Unauthorized("Unauthorized")
	}

	m := e.history.Append(roomID, u.ID, u.Username, p.Content, p.TTL)
	e.broadcast(roomID, core.TypeMessageBroadcast, m)

	if p.TTL > 0 {
		time.AfterFunc(time.Duration(p.TTL)*time.Second, func() {
			e.expireMessage(roomID, m.ID)
		})
	}
	return nil
}

// expireMessage deletes a TTL'd message when its timer fires. Rotation
// purges and room deletion win any race: an already-gone message is a
// no-op and nothing is broadcast.
func (e *Engine) expireMessage(roomID domain.RoomID, id domain.MessageID) {
	l := e.lockRoom(roomID)
	defer e.unlockRoom(roomID, l)
	if !e.history.Delete(roomID, id) {
		return
	}
	log.Debug().Str("module", "app.engine").Str("room_id", string(roomID)).Str("message", string(id)).Msg("message expired")
	e.broadcast(roomID, core.TypeMessageDeleted, core.MessageDeletedPayload{MessageID: id})
}
