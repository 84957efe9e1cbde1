package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hush/internal/core"
)

func (ctl *Controller) handleSend(c *WsConn, raw json.RawMessage) {
	if c.state != StateActive {
		ctl.sendErr(c, core.Protocol("Not in a room"))
		return
	}

	var p core.SendMessagePayload
	if serr := decodePayload(raw, &p); serr != nil {
		ctl.sendErr(c, serr)
		return
	}

	// Budget is the session's own, keyed on the identity the join
	// established, not whatever userId the payload carries.
	if !ctl.Limiter.Allow(c.userID) {
		ctl.sendErr(c, core.Protocol("Too many messages, slow down"))
		return
	}

	if serr := ctl.Engine.SendMessage(p); serr != nil {
		ctl.sendErr(c, serr)
	}
}

func (ctl *Controller) handleChangePassphrase(c *WsConn, raw json.RawMessage) {
	if c.state != StateActive {
		ctl.sendErr(c, core.Protocol("Not in a room"))
		return
	}

	var p core.ChangePassphrasePayload
	if serr := decodePayload(raw, &p); serr != nil {
		ctl.sendErr(c, serr)
		return
	}

	log.Info().Str("module", "signal").Str("room_id", p.RoomID).Str("user", p.UserID).Msg("change_passphrase")
	if serr := ctl.Engine.ChangePassphrase(p); serr != nil {
		ctl.sendErr(c, serr)
	}
}
