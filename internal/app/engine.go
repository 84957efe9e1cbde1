package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hush/internal/core"
	"github.com/dkeye/Hush/internal/domain"
)

// Engine drives the join/send/rotate/leave protocol over the injected
// stores. Every operation on a room runs inside that room's critical
// section, including the enqueue of outbound effects: per-connection
// send queues then deliver effects in enqueue order, which makes log
// append order equal broadcast order and puts the join replay ahead of
// any broadcast serialized after the join.
//
// Only the engine mutates the stores; adapters go through it.
type Engine struct {
	rooms    core.RoomStore
	members  core.MemberStore
	history  core.MessageLog
	registry *Registry

	mu    sync.Mutex
	locks map[domain.RoomID]*roomLock

	// grace before severing an evicted or failed session's connection.
	grace time.Duration
}

// roomLock is a room's mutex plus the number of goroutines holding or
// waiting on it. The map entry lives only while refs > 0, so lock
// entries for room IDs that never existed (or no longer exist) cannot
// accumulate no matter what IDs clients supply.
type roomLock struct {
	sync.Mutex
	refs int
}

func NewEngine(rooms core.RoomStore, members core.MemberStore, history core.MessageLog, registry *Registry, grace time.Duration) *Engine {
	return &Engine{
		rooms:    rooms,
		members:  members,
		history:  history,
		registry: registry,
		locks:    make(map[domain.RoomID]*roomLock),
		grace:    grace,
	}
}

// Grace is the delay between notifying a session of a fatal outcome
// and severing its connection.
func (e *Engine) Grace() time.Duration { return e.grace }

// lockRoom locks and returns the room's mutex, pairing with
// unlockRoom. bcrypt work under this lock stalls only the owning room.
func (e *Engine) lockRoom(id domain.RoomID) *roomLock {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &roomLock{}
		e.locks[id] = l
	}
	l.refs++
	e.mu.Unlock()
	l.Lock()
	return l
}

// unlockRoom releases the mutex and drops the map entry once the last
// holder or waiter is gone. A later lockRoom for the same ID creates a
// fresh entry; no goroutine can still hold the old one at that point.
func (e *Engine) unlockRoom(id domain.RoomID, l *roomLock) {
	l.Unlock()
	e.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(e.locks, id)
	}
	e.mu.Unlock()
}

// lockCount is test-visible map size.
func (e *Engine) lockCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.locks)
}

func (e *Engine) send(conn core.SignalConnection, typ string, payload any) {
	frame, err := core.NewEvent(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.engine").Str("type", typ).Msg("marshal event")
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.engine").Str("type", typ).Msg("dropped frame")
	}
}

func (e *Engine) broadcast(roomID domain.RoomID, typ string, payload any) {
	for _, snap := range e.registry.MembersOfRoom(roomID) {
		e.send(snap.Conn, typ, payload)
	}
}

func (e *Engine) broadcastExcept(roomID domain.RoomID, skip domain.UserID, typ string, payload any) {
	for _, snap := range e.registry.MembersOfRoom(roomID) {
		if snap.UserID == skip {
			continue
		}
		e.send(snap.Conn, typ, payload)
	}
}

func (e *Engine) broadcastRoster(roomID domain.RoomID) {
	users := e.members.ByRoom(roomID)
	e.broadcast(roomID, core.TypeUserListUpdate, core.UserListPayload{Users: users})
}

// CreateRoom backs the REST create operation. Field validation happens
// at the boundary; here only the store can fail.
func (e *Engine) CreateRoom(name, passphrase, createdBy string) (*domain.Room, *core.SessionError) {
	room, err := e.rooms.Create(domain.RoomName(name), passphrase, domain.UserID(createdBy))
	if err != nil {
		log.Error().Err(err).Str("module", "app.engine").Msg("create room")
		return nil, core.Internal("Failed to create room")
	}
	return room, nil
}

// VerifyRoom backs the REST verify operation.
func (e *Engine) VerifyRoom(roomID, passphrase string) (valid bool, name domain.RoomName, found bool) {
	room, ok := e.rooms.Get(domain.RoomID(roomID))
	if !ok {
		return false, "", false
	}
	return e.rooms.VerifyPassphrase(room.ID, passphrase), room.Name, true
}

func (e *Engine) ListRooms() []core.RoomInfo {
	rooms := e.rooms.List()
	out := make([]core.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, core.RoomInfo{
			ID:        room.ID,
			Name:      room.Name,
			UserCount: len(e.members.ByRoom(room.ID)),
		})
	}
	return out
}

// deleteRoomLocked cascades room teardown. Caller holds the room lock.
func (e *Engine) deleteRoomLocked(roomID domain.RoomID) {
	e.history.Clear(roomID)
	e.members.RemoveByRoom(roomID)
	e.rooms.Delete(roomID)
	log.Info().Str("module", "app.engine").Str("room_id", string(roomID)).Msg("empty room deleted")
}
