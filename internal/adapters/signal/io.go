package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hush/internal/core"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("user", string(c.userID)).Msg("readPump closing")
		if c.state == StateActive {
			ctl.Engine.Disconnect(c.userID)
		}
		if c.userID != "" {
			ctl.Limiter.Forget(c.userID)
		}
		c.state = StateClosed
		c.Close()
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("user", string(c.userID)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("user", string(c.userID)).Msg("readPump read error")
				return
			}
			ctl.handleEnvelope(c, data)
		}
	}
}

// handleEnvelope is the fault boundary: a panic while processing one
// envelope is reported to the offending connection and never takes the
// process down.
func (ctl *Controller) handleEnvelope(c *WsConn, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Str("module", "signal").Str("user", string(c.userID)).Msg("envelope handler panic")
			ctl.sendErr(c, core.Internal("Internal server error"))
		}
	}()

	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("malformed envelope")
		ctl.sendErr(c, core.Protocol("Malformed message"))
		return
	}

	switch env.Type {
	case core.TypeJoinRoom:
		ctl.handleJoin(c, env.Payload)
	case core.TypeSendMessage:
		ctl.handleSend(c, env.Payload)
	case core.TypeChangePassphrase:
		ctl.handleChangePassphrase(c, env.Payload)
	case core.TypeLeaveRoom:
		ctl.handleLeave(c, env.Payload)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown envelope type")
		ctl.sendErr(c, core.Protocol("Unknown message type"))
	}
}

func (ctl *Controller) sendJSON(c *WsConn, typ string, payload any) {
	frame, err := core.NewEvent(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(frame)
}

// sendErr reports a session error on the wire. Fatal errors terminate
// the session: the connection is severed after the grace delay so the
// notification can flush first.
func (ctl *Controller) sendErr(c *WsConn, serr *core.SessionError) {
	ctl.sendJSON(c, core.TypeError, core.ErrorPayload{Message: serr.Message, Fatal: serr.Fatal()})
	if serr.Fatal() {
		c.state = StateClosed
		time.AfterFunc(ctl.Engine.Grace(), c.Close)
	}
}
