package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hush/internal/app"
	"github.com/dkeye/Hush/internal/config"
	"github.com/dkeye/Hush/internal/core"
	"github.com/dkeye/Hush/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const writeWait = 5 * time.Second

// Connection states. A connection is born unauthenticated, becomes
// active on a successful join and ends closed; there is no way back.
// A reconnecting client gets a fresh connection and joins again.
type ConnState int32

const (
	StateUnauthenticated ConnState = iota
	StateActive
	StateClosed
)

type Controller struct {
	Engine  *app.Engine
	Limiter *MessageRateLimiter
	Cfg     *config.Config
}

func NewController(engine *app.Engine, cfg *config.Config) *Controller {
	return &Controller{
		Engine:  engine,
		Limiter: NewMessageRateLimiter(cfg.MsgRateLimit, cfg.MsgRateWindow),
		Cfg:     cfg,
	}
}

// WsConn adapts a websocket to core.SignalConnection and app.LiveConn.
// state and userID are touched only by the read goroutine.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool

	alive atomic.Bool

	state  ConnState
	userID domain.UserID
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Ping may run concurrently with the write pump; gorilla permits
// WriteControl alongside WriteMessage.
func (c *WsConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *WsConn) StillAlive() bool {
	return c.alive.Swap(false)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("client", token).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	conn.alive.Store(true)
	ws.SetReadLimit(ctl.Cfg.ReadLimit)
	ws.SetPongHandler(func(string) error {
		conn.alive.Store(true)
		return nil
	})
	// Until a join succeeds the socket is not in the registry and the
	// liveness sweep cannot see it, so a half-open peer would pin its
	// pumps forever. The deadline is lifted once the session is active.
	if ctl.Cfg.JoinWait > 0 {
		_ = ws.SetReadDeadline(time.Now().Add(ctl.Cfg.JoinWait))
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
}
