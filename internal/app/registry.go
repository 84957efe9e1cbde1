package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hush/internal/core"
	"github.com/dkeye/Hush/internal/domain"
)

type connEntry struct {
	RoomID domain.RoomID
	Conn   core.SignalConnection
}

// Registry maps a logical user identity to its live transport handle.
// It is the single source of truth for reachability; the member store
// may briefly hold a user whose connection is already gone during
// teardown, and callers tolerate that gap.
type Registry struct {
	mu        sync.RWMutex
	conns     map[domain.UserID]*connEntry
	evictions map[domain.UserID]*time.Timer
}

func NewRegistry() *Registry {
	return &Registry{
		conns:     make(map[domain.UserID]*connEntry),
		evictions: make(map[domain.UserID]*time.Timer),
	}
}

func (r *Registry) Register(uid domain.UserID, roomID domain.RoomID, conn core.SignalConnection) {
	r.mu.Lock()
	r.conns[uid] = &connEntry{RoomID: roomID, Conn: conn}
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("room_id", string(roomID)).Msg("registered connection")
}

// Unregister is idempotent and reports whether an entry was removed.
func (r *Registry) Unregister(uid domain.UserID) bool {
	r.mu.Lock()
	_, ok := r.conns[uid]
	delete(r.conns, uid)
	r.mu.Unlock()
	if ok {
		log.Info().Str("module", "app.registry").Str("user", string(uid)).Msg("unregistered connection")
	}
	return ok
}

func (r *Registry) Get(uid domain.UserID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[uid]; ok {
		return e.Conn, true
	}
	return nil, false
}

type ConnSnap struct {
	UserID domain.UserID
	RoomID domain.RoomID
	Conn   core.SignalConnection
}

func (r *Registry) MembersOfRoom(roomID domain.RoomID) []ConnSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ConnSnap, 0, len(r.conns))
	for uid, e := range r.conns {
		if e.RoomID == roomID {
			out = append(out, ConnSnap{UserID: uid, RoomID: e.RoomID, Conn: e.Conn})
		}
	}
	return out
}

func (r *Registry) All() []ConnSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ConnSnap, 0, len(r.conns))
	for uid, e := range r.conns {
		out = append(out, ConnSnap{UserID: uid, RoomID: e.RoomID, Conn: e.Conn})
	}
	return out
}

// ScheduleClose severs conn after delay, giving queued notifications a
// moment to flush. The task is cancellable through CancelClose if the
// peer closes on its own first. Closing twice is safe, connections are
// close-once.
func (r *Registry) ScheduleClose(uid domain.UserID, conn core.SignalConnection, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.evictions[uid]; ok {
		old.Stop()
	}
	r.evictions[uid] = time.AfterFunc(delay, func() {
		conn.Close()
		r.mu.Lock()
		delete(r.evictions, uid)
		r.mu.Unlock()
	})
}

func (r *Registry) CancelClose(uid domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.evictions[uid]; ok {
		t.Stop()
		delete(r.evictions, uid)
	}
}
