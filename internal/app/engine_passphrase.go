package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hush/internal/core"
	"github.com/dkeye/Hush/internal/domain"
)

// ChangePassphrase rotates a room's verifier. Under the room lock it
// replaces the verifier, purges the history, notifies everyone that
// history is gone and evicts every non-admin: their membership and
// registry entries are removed synchronously, their connections severed
// after a short grace so the notifications can flush. Only the admin
// keeps a live session; everyone else must rejoin with the new
// passphrase.
func (e *Engine) ChangePassphrase(p core.ChangePassphrasePayload) *core.SessionError {
	roomID := domain.RoomID(p.RoomID)
	adminID := domain.UserID(p.UserID)
	l := e.lockRoom(roomID)
	defer e.unlockRoom(roomID, l)

	admin, ok := e.members.Get(adminID)
	if !ok || !admin.IsAdmin || admin.RoomID != roomID {
		return core.Unauthorized("Unauthorized - Admin only")
	}

	if err := e.rooms.UpdatePassphrase(roomID, p.NewPassphrase); err != nil {
		log.Error().Err(err).Str("module", "app.engine").Str("room_id", string(roomID)).Msg("rotate verifier")
		return core.Internal("Failed to change passphrase")
	}
	// History purge happens under the same lock as the verifier swap;
	// no observer can see the new verifier with the old history.
	e.history.Clear(roomID)

	evicted := 0
	for _, u := range e.members.ByRoom(roomID) {
		conn, live := e.registry.Get(u.ID)
		if live {
			e.send(conn, core.TypeClearHistory, struct{}{})
		}
		if u.ID == adminID {
			continue
		}
		if live {
			e.send(conn, core.TypePassphraseChanged, struct{}{})
			e.registry.ScheduleClose(u.ID, conn, e.grace)
		}
		e.members.Remove(u.ID)
		e.registry.Unregister(u.ID)
		evicted++
	}

	e.broadcastRoster(roomID)
	log.Info().Str("module", "app.engine").Str("room_id", string(roomID)).Int("evicted", evicted).Msg("passphrase rotated")
	return nil
}
