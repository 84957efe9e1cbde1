package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// LiveConn is implemented by transports that answer liveness probes.
type LiveConn interface {
	// Ping sends a transport-level probe.
	Ping() error
	// StillAlive reports whether a pong arrived since the previous
	// sweep and arms the next one.
	StillAlive() bool
}

// Monitor sweeps the registry on a fixed interval and tears down
// connections that missed a pong, through the same leave path as an
// explicit disconnect.
type Monitor struct {
	Registry *Registry
	Engine   *Engine
	Interval time.Duration
}

func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

func (m *Monitor) Sweep() {
	for _, snap := range m.Registry.All() {
		lc, ok := snap.Conn.(LiveConn)
		if !ok {
			continue
		}
		if !lc.StillAlive() {
			log.Warn().Str("module", "app.monitor").Str("user", string(snap.UserID)).Msg("heartbeat timeout")
			m.Engine.Disconnect(snap.UserID)
			snap.Conn.Close()
			continue
		}
		if err := lc.Ping(); err != nil {
			log.Warn().Err(err).Str("module", "app.monitor").Str("user", string(snap.UserID)).Msg("ping failed")
			m.Engine.Disconnect(snap.UserID)
			snap.Conn.Close()
		}
	}
}
