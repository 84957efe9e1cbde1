package signal

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hush/internal/core"
	"github.com/dkeye/Hush/internal/domain"
)

func (ctl *Controller) handleJoin(c *WsConn, raw json.RawMessage) {
	if c.state != StateUnauthenticated {
		ctl.sendErr(c, core.Protocol("Already joined"))
		return
	}

	var p core.JoinRoomPayload
	if serr := decodePayload(raw, &p); serr != nil {
		ctl.sendErr(c, serr)
		return
	}

	log.Info().Str("module", "signal").Str("room_id", p.RoomID).Str("username", p.Username).Str("user", p.UserID).Msg("join_room attempt")
	if serr := ctl.Engine.Join(p, c); serr != nil {
		ctl.sendErr(c, serr)
		return
	}

	c.userID = domain.UserID(p.UserID)
	c.state = StateActive
	// Active sessions are watched by the registry sweep instead.
	_ = c.conn.SetReadDeadline(time.Time{})
}

// handleLeave removes the membership; the transport stays open and the
// client is expected to close it. Nothing else is accepted on this
// connection afterwards.
func (ctl *Controller) handleLeave(c *WsConn, raw json.RawMessage) {
	if c.state != StateActive {
		ctl.sendErr(c, core.Protocol("Not in a room"))
		return
	}

	var p core.LeaveRoomPayload
	if serr := decodePayload(raw, &p); serr != nil {
		ctl.sendErr(c, serr)
		return
	}
	if domain.UserID(p.UserID) != c.userID {
		ctl.sendErr(c, core.Unauthorized("Unauthorized"))
		return
	}

	ctl.Engine.LeaveRoom(p.RoomID, c.userID)
	c.state = StateClosed
}
