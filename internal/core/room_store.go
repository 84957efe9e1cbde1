package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkeye/Hush/internal/domain"
)

// memRoomStore is a threadsafe in-memory room store. Passphrases are
// kept only as bcrypt digests; bcrypt's own comparison gives the
// constant-time check.
type memRoomStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
	cost  int
}

func NewRoomStore() RoomStore {
	return &memRoomStore{
		rooms: make(map[domain.RoomID]*domain.Room),
		cost:  bcrypt.DefaultCost,
	}
}

func (s *memRoomStore) Create(name domain.RoomName, passphrase string, createdBy domain.UserID) (*domain.Room, error) {
	verifier, err := bcrypt.GenerateFromPassword([]byte(passphrase), s.cost)
	if err != nil {
		return nil, err
	}
	room := &domain.Room{
		ID:        domain.RoomID(uuid.NewString()),
		Name:      name,
		Verifier:  verifier,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.rooms[room.ID] = room
	s.mu.Unlock()
	log.Info().Str("module", "core.rooms").Str("room_id", string(room.ID)).Str("name", string(name)).Msg("room created")
	return room, nil
}

func (s *memRoomStore) Get(id domain.RoomID) (*domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	return room, ok
}

func (s *memRoomStore) VerifyPassphrase(id domain.RoomID, candidate string) bool {
	s.mu.RLock()
	room, ok := s.rooms[id]
	var verifier []byte
	if ok {
		verifier = room.Verifier
	}
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(verifier, []byte(candidate)) == nil
}

func (s *memRoomStore) UpdatePassphrase(id domain.RoomID, newPassphrase string) error {
	verifier, err := bcrypt.GenerateFromPassword([]byte(newPassphrase), s.cost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil
	}
	room.Verifier = verifier
	log.Info().Str("module", "core.rooms").Str("room_id", string(id)).Msg("verifier rotated")
	return nil
}

func (s *memRoomStore) Delete(id domain.RoomID) {
	s.mu.Lock()
	delete(s.rooms, id)
	s.mu.Unlock()
	log.Info().Str("module", "core.rooms").Str("room_id", string(id)).Msg("room deleted")
}

func (s *memRoomStore) List() []*domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	return out
}
