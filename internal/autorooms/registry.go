package autorooms

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/skylanix/MamieHenriette/internal/domain"
)

type roomKey struct {
	Guild domain.GuildID
	Owner domain.UserID
}

// Registry is the in-memory room store: one forward map keyed by
// (guild, owner) and a reverse index from control-message id back to
// the same key. Lifetime is the process lifetime, nothing persists.
type Registry struct {
	mu        sync.RWMutex
	rooms     map[roomKey]*domain.Room
	byMessage map[domain.MessageID]roomKey
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:     make(map[roomKey]*domain.Room),
		byMessage: make(map[domain.MessageID]roomKey),
	}
}

func (r *Registry) Get(guild domain.GuildID, owner domain.UserID) (*domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomKey{guild, owner}]
	return room, ok
}

// Set stores the room and indexes its control message when present.
func (r *Registry) Set(room *domain.Room) {
	key := roomKey{room.GuildID, room.OwnerID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.rooms[key]; ok && old.ControlMessageID != "" {
		delete(r.byMessage, old.ControlMessageID)
	}
	r.rooms[key] = room
	if room.ControlMessageID != "" {
		r.byMessage[room.ControlMessageID] = key
	}
	log.Info().Str("module", "autorooms.registry").Str("guild", string(room.GuildID)).Str("owner", string(room.OwnerID)).Str("channel", string(room.VoiceChannelID)).Msg("room registered")
}

// Delete removes the room and its reverse index entry. Missing rooms
// are a no-op so duplicate deliveries stay harmless.
func (r *Registry) Delete(guild domain.GuildID, owner domain.UserID) {
	key := roomKey{guild, owner}
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[key]
	if !ok {
		return
	}
	delete(r.rooms, key)
	if room.ControlMessageID != "" {
		delete(r.byMessage, room.ControlMessageID)
	}
	log.Info().Str("module", "autorooms.registry").Str("guild", string(guild)).Str("owner", string(owner)).Msg("room removed")
}

// FindByChannel scans the guild's rooms for the one governing channel.
// Room counts per guild are small, the scan is fine.
func (r *Registry) FindByChannel(guild domain.GuildID, channel domain.ChannelID) (*domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for key, room := range r.rooms {
		if key.Guild == guild && room.VoiceChannelID == channel {
			return room, true
		}
	}
	return nil, false
}

// FindByMessage resolves a control message back to its room via the
// reverse index, dropping stale entries whose forward record is gone.
func (r *Registry) FindByMessage(message domain.MessageID) (*domain.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.byMessage[message]
	if !ok {
		return nil, false
	}
	room, ok := r.rooms[key]
	if !ok {
		delete(r.byMessage, message)
		return nil, false
	}
	return room, true
}

// Rekey moves a room under a new owner, preserving the reverse index.
// Fails when the target owner already holds a room in the guild.
func (r *Registry) Rekey(guild domain.GuildID, oldOwner, newOwner domain.UserID) bool {
	oldKey := roomKey{guild, oldOwner}
	newKey := roomKey{guild, newOwner}
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[oldKey]
	if !ok {
		return false
	}
	if _, taken := r.rooms[newKey]; taken {
		return false
	}
	delete(r.rooms, oldKey)
	room.OwnerID = newOwner
	r.rooms[newKey] = room
	if room.ControlMessageID != "" {
		r.byMessage[room.ControlMessageID] = newKey
	}
	log.Info().Str("module", "autorooms.registry").Str("guild", string(guild)).Str("from", string(oldOwner)).Str("to", string(newOwner)).Msg("room ownership transferred")
	return true
}

// Snapshot copies the current room set for read-only consumers.
func (r *Registry) Snapshot() []*domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
