package core

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkeye/Hush/internal/domain"
)

// memMessageLog keeps one append-only slice per room, so append order
// is ByRoom order. Timestamps are nudged forward on wall-clock ties to
// stay strictly increasing within a room.
type memMessageLog struct {
	mu     sync.RWMutex
	byRoom map[domain.RoomID][]*domain.Message
	last   map[domain.RoomID]int64
}

func NewMessageLog() MessageLog {
	return &memMessageLog{
		byRoom: make(map[domain.RoomID][]*domain.Message),
		last:   make(map[domain.RoomID]int64),
	}
}

func (l *memMessageLog) Append(roomID domain.RoomID, userID domain.UserID, username, content string, ttl int) *domain.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().UnixMilli()
	if prev := l.last[roomID]; ts <= prev {
		ts = prev + 1
	}
	l.last[roomID] = ts
	m := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		RoomID:    roomID,
		UserID:    userID,
		Username:  username,
		Content:   content,
		Timestamp: ts,
		TTL:       ttl,
	}
	l.byRoom[roomID] = append(l.byRoom[roomID], m)
	return m
}

func (l *memMessageLog) ByRoom(roomID domain.RoomID) []*domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	msgs := l.byRoom[roomID]
	out := make([]*domain.Message, len(msgs))
	copy(out, msgs)
	return out
}

func (l *memMessageLog) Delete(roomID domain.RoomID, id domain.MessageID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	msgs := l.byRoom[roomID]
	for i, m := range msgs {
		if m.ID == id {
			l.byRoom[roomID] = append(msgs[:i], msgs[i+1:]...)
			return true
		}
	}
	return false
}

func (l *memMessageLog) Clear(roomID domain.RoomID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.byRoom, roomID)
	delete(l.last, roomID)
}
