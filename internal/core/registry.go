package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/arthurtosi/Multiroom-Chat-Server/internal/domain"
)

type roomState struct {
	private bool
	members map[*Session]struct{}
}

// Registry owns the room/membership maps and the authenticated set. All
// mutation, and every broadcast's read of a membership set, happens under one
// process-wide mutex, which keeps the two views consistent: a session is in
// at most one room, and it is in a room's member set exactly when that room
// is its current room.
type Registry struct {
	store Store

	mu          sync.Mutex
	rooms       map[domain.RoomName]*roomState
	sessionRoom map[*Session]domain.RoomName
	authed      map[*Session]string
}

func NewRegistry(store Store) *Registry {
	return &Registry{
		store:       store,
		rooms:       make(map[domain.RoomName]*roomState),
		sessionRoom: make(map[*Session]domain.RoomName),
		authed:      make(map[*Session]string),
	}
}

// LoadPersisted materializes the persisted room catalog with empty
// membership. Called once at startup before the acceptor runs.
func (r *Registry) LoadPersisted(ctx context.Context) error {
	rooms, err := r.store.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("load persisted rooms: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range rooms {
		if _, ok := r.rooms[room.Name]; !ok {
			r.rooms[room.Name] = &roomState{private: room.Private, members: make(map[*Session]struct{})}
		}
	}
	log.Info().Str("module", "core.registry").Int("rooms", len(rooms)).Msg("room catalog loaded")
	return nil
}

// Authenticate marks the session as logged in under the given username.
func (r *Registry) Authenticate(s *Session, username string) {
	r.mu.Lock()
	r.authed[s] = username
	r.mu.Unlock()
	log.Info().Str("module", "core.registry").Str("sid", s.ID).Str("user", username).Msg("session authenticated")
}

// CreateRoom persists a new room through the store and, on success,
// registers an empty membership set under the name. Returns false when the
// name is already taken.
func (r *Registry) CreateRoom(ctx context.Context, name domain.RoomName, password string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created, err := r.store.CreateRoom(ctx, name, password)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}
	r.rooms[name] = &roomState{private: password != "", members: make(map[*Session]struct{})}
	log.Info().Str("module", "core.registry").Str("room", string(name)).Bool("private", password != "").Msg("room created")
	return true, nil
}

// Join moves the session into the named room, leaving its prior room first
// if it had one. Password validation for private rooms is digest equality
// against the stored hash. On failure nothing changes.
func (r *Registry) Join(ctx context.Context, s *Session, name domain.RoomName, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.store.GetRoomDetails(ctx, name)
	if err != nil {
		return fmt.Errorf("room lookup: %w", err)
	}
	if rec == nil {
		return ErrRoomNotFound
	}
	if rec.Private {
		if password == "" {
			return ErrPasswordRequired
		}
		if domain.DigestPassword(password) != rec.PasswordHash {
			return ErrWrongPassword
		}
	}

	if prior, ok := r.removeLocked(s); ok {
		r.broadcastLocked(fmt.Sprintf("*** %s left the room. ***", s.Username()), prior, s)
	}

	room, ok := r.rooms[name]
	if !ok {
		// Persisted room not yet materialized; register it on first join.
		room = &roomState{private: rec.Private, members: make(map[*Session]struct{})}
		r.rooms[name] = room
	}
	r.broadcastLocked(fmt.Sprintf("*** %s joined the room. ***", s.Username()), name, s)
	room.members[s] = struct{}{}
	r.sessionRoom[s] = name
	log.Info().Str("module", "core.registry").Str("sid", s.ID).Str("room", string(name)).Msg("session joined room")
	return nil
}

// Leave removes the session from its current room, notifying the remaining
// members. Returns the room left, or false if the session was in none.
func (r *Registry) Leave(s *Session) (domain.RoomName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.removeLocked(s)
	if !ok {
		return "", false
	}
	r.broadcastLocked(fmt.Sprintf("*** %s left the room. ***", s.Username()), name, s)
	return name, true
}

// RemoveEverywhere is the disconnect cleanup: it deletes the session from
// the authenticated set and from its room, telling the room the user is
// gone. Idempotent, so racing cleanups and broadcast-time pruning are safe.
func (r *Registry) RemoveEverywhere(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.authed, s)
	if name, ok := r.removeLocked(s); ok {
		log.Info().Str("module", "core.registry").Str("sid", s.ID).Str("room", string(name)).Msg("cleaning up disconnected session")
		r.broadcastLocked(fmt.Sprintf("*** %s disconnected. ***", s.Username()), name, s)
	}
}

// CurrentRoom reports the room the session is a member of, if any.
func (r *Registry) CurrentRoom(s *Session) (domain.RoomName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.sessionRoom[s]
	return name, ok
}

// Broadcast fans a message out to every member of the room except exclude.
// An unknown room or an empty room is a silent no-op.
func (r *Registry) Broadcast(message string, name domain.RoomName, exclude *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(message, name, exclude)
}

// Rooms returns a name-ordered snapshot of live rooms for read-only APIs.
func (r *Registry) Rooms() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for name, room := range r.rooms {
		out = append(out, RoomInfo{Name: name, MemberCount: len(room.members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// removeLocked takes the session out of both membership views without
// notifying anyone. Callers broadcast whichever notice fits their context.
func (r *Registry) removeLocked(s *Session) (domain.RoomName, bool) {
	name, ok := r.sessionRoom[s]
	if !ok {
		return "", false
	}
	delete(r.sessionRoom, s)
	if room, ok := r.rooms[name]; ok {
		delete(room.members, s)
	}
	return name, true
}

// broadcastLocked delivers to the members present right now; the registry
// lock guarantees no membership change interleaves mid-broadcast. Peers
// whose stream rejects the write are pruned as if they had left, and the
// survivors are told about each departure.
func (r *Registry) broadcastLocked(message string, name domain.RoomName, exclude *Session) {
	room, ok := r.rooms[name]
	if !ok {
		return
	}
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	var dead []*Session
	for member := range room.members {
		if member == exclude {
			continue
		}
		if err := member.Send(message); err != nil {
			log.Warn().Err(err).Str("module", "core.registry").Str("sid", member.ID).Str("user", member.Username()).Msg("send failed, pruning peer")
			dead = append(dead, member)
		}
	}
	for _, member := range dead {
		if prior, ok := r.removeLocked(member); ok {
			r.broadcastLocked(fmt.Sprintf("*** %s left the room. ***", member.Username()), prior, member)
		}
	}
}
