package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Hush/internal/core"
)

// nullConn swallows frames; these tests care about lock bookkeeping,
// not delivery.
type nullConn struct{}

func (nullConn) TrySend(core.Frame) error { return nil }
func (nullConn) Close()                   {}

func newBareEngine() *Engine {
	return NewEngine(core.NewRoomStore(), core.NewMemberStore(), core.NewMessageLog(), NewRegistry(), 0)
}

func TestFailedJoinsLeaveNoLockEntries(t *testing.T) {
	e := newBareEngine()

	for i := 0; i < 500; i++ {
		p := core.JoinRoomPayload{
			RoomID:   fmt.Sprintf("no-such-room-%d", i),
			UserID:   fmt.Sprintf("u%d", i),
			Username: "drifter",
		}
		serr := e.Join(p, nullConn{})
		require.NotNil(t, serr)
	}

	assert.Equal(t, 0, e.lockCount())
}

func TestLockEntriesDrainAfterRoomLifecycle(t *testing.T) {
	e := newBareEngine()

	room, serr := e.CreateRoom("ephemeral", "secret-pass", "u1")
	require.Nil(t, serr)

	join := core.JoinRoomPayload{
		RoomID:     string(room.ID),
		UserID:     "u1",
		Username:   "admin",
		Passphrase: "secret-pass",
		IsAdmin:    true,
	}
	require.Nil(t, e.Join(join, nullConn{}))
	assert.Equal(t, 0, e.lockCount())

	// A TTL timer firing after the room is gone must not resurrect an
	// entry either.
	e.Disconnect("u1")
	e.expireMessage(room.ID, "m-gone")
	assert.Equal(t, 0, e.lockCount())
}

func TestConcurrentOpsShareOneLockEntry(t *testing.T) {
	e := newBareEngine()

	room, serr := e.CreateRoom("busy", "secret-pass", "u1")
	require.Nil(t, serr)
	require.Nil(t, e.Join(core.JoinRoomPayload{
		RoomID: string(room.ID), UserID: "u1", Username: "admin",
		Passphrase: "secret-pass", IsAdmin: true,
	}, nullConn{}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = e.SendMessage(core.SendMessagePayload{
				RoomID:  string(room.ID),
				UserID:  "u1",
				Content: fmt.Sprintf("m%d", n),
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, e.lockCount())
	assert.Len(t, e.history.ByRoom(room.ID), 16)
}
