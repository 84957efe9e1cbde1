package core

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hush/internal/domain"
)

type memberEntry struct {
	user *domain.User
	seq  uint64
}

// memMemberStore is a threadsafe in-memory membership set. Join order
// is tracked with a sequence counter so ByRoom is stable.
type memMemberStore struct {
	mu      sync.RWMutex
	members map[domain.UserID]*memberEntry
	seq     uint64
}

func NewMemberStore() MemberStore {
	return &memMemberStore{members: make(map[domain.UserID]*memberEntry)}
}

func (s *memMemberStore) Add(u *domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.JoinedAt = time.Now()
	s.seq++
	s.members[u.ID] = &memberEntry{user: u, seq: s.seq}
	log.Info().Str("module", "core.members").Str("user", string(u.ID)).Str("room_id", string(u.RoomID)).Msg("member added")
	return u
}

func (s *memMemberStore) Get(id domain.UserID) (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.members[id]
	if !ok {
		return nil, false
	}
	return e.user, true
}

func (s *memMemberStore) ByRoom(roomID domain.RoomID) []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*memberEntry, 0, len(s.members))
	for _, e := range s.members {
		if e.user.RoomID == roomID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]*domain.User, len(entries))
	for i, e := range entries {
		out[i] = e.user
	}
	return out
}

func (s *memMemberStore) ByName(roomID domain.RoomID, username string) (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.members {
		if e.user.RoomID == roomID && e.user.Username == username {
			return e.user, true
		}
	}
	return nil, false
}

func (s *memMemberStore) Remove(id domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return
	}
	delete(s.members, id)
	log.Info().Str("module", "core.members").Str("user", string(id)).Msg("member removed")
}

func (s *memMemberStore) RemoveByRoom(roomID domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.members {
		if e.user.RoomID == roomID {
			delete(s.members, id)
		}
	}
}
