package core

import (
	"sort"
	"time"
)

// Participant is a named occupant of a room, keyed by its connection id.
type Participant struct {
	ID       string
	Name     string
	IsOnline bool
	JoinedAt time.Time
}

// Room groups participants and their shared message log.
type Room struct {
	ID        string
	CreatedAt time.Time

	participants map[string]Participant
	order        []string // connection ids in join order
	messages     []Message
	peak         int
}

// NewRoom constructs a room with no participants.
func NewRoom(id string, createdAt time.Time) *Room {
	return &Room{
		ID:           id,
		CreatedAt:    createdAt,
		participants: make(map[string]Participant),
	}
}

// AddParticipant inserts p. Returns false if p.ID is already present.
func (r *Room) AddParticipant(p Participant) bool {
	if _, exists := r.participants[p.ID]; exists {
		return false
	}
	r.participants[p.ID] = p
	r.order = append(r.order, p.ID)
	if len(r.participants) > r.peak {
		r.peak = len(r.participants)
	}
	return true
}

// RemoveParticipant deletes the participant keyed by id.
func (r *Room) RemoveParticipant(id string) (Participant, bool) {
	p, exists := r.participants[id]
	if !exists {
		return Participant{}, false
	}
	delete(r.participants, id)
	for i, cid := range r.order {
		if cid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, true
}

// Participant returns the participant keyed by id.
func (r *Room) Participant(id string) (Participant, bool) {
	p, ok := r.participants[id]
	return p, ok
}

// FindByName returns the participant using the given display name.
func (r *Room) FindByName(name string) (Participant, bool) {
	for _, id := range r.order {
		if p := r.participants[id]; p.Name == name {
			return p, true
		}
	}
	return Participant{}, false
}

// Participants returns a snapshot of the participants in join order.
func (r *Room) Participants() []Participant {
	out := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.participants[id])
	}
	return out
}

// ParticipantIDs returns the connection ids of all participants in join order.
func (r *Room) ParticipantIDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of participants.
func (r *Room) Len() int {
	return len(r.participants)
}

// Empty returns true if no participants are in the room.
func (r *Room) Empty() bool {
	return len(r.participants) == 0
}

// Peak returns the highest participant count the room has seen.
func (r *Room) Peak() int {
	return r.peak
}

// Append adds m to the end of the message log.
func (r *Room) Append(m Message) {
	r.messages = append(r.messages, m)
}

// Messages returns a copy of the message log.
func (r *Room) Messages() []Message {
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// MessageCount returns the length of the message log.
func (r *Room) MessageCount() int {
	return len(r.messages)
}

// LastTimestamp returns the timestamp of the newest message, or the zero time.
func (r *Room) LastTimestamp() time.Time {
	if len(r.messages) == 0 {
		return time.Time{}
	}
	return r.messages[len(r.messages)-1].Timestamp
}

// RoomStore maps room ids to live rooms. It is not safe for concurrent use.
type RoomStore struct {
	rooms map[string]*Room
}

// NewRoomStore constructs an empty store.
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*Room)}
}

// Get returns the room with the given id.
func (s *RoomStore) Get(id string) (*Room, bool) {
	room, ok := s.rooms[id]
	return room, ok
}

// GetOrCreate returns the room with the given id, creating it at now when missing.
func (s *RoomStore) GetOrCreate(id string, now time.Time) (*Room, bool) {
	if room, ok := s.rooms[id]; ok {
		return room, false
	}
	room := NewRoom(id, now)
	s.rooms[id] = room
	return room, true
}

// Delete removes the room with the given id.
func (s *RoomStore) Delete(id string) {
	delete(s.rooms, id)
}

// Len returns the number of live rooms.
func (s *RoomStore) Len() int {
	return len(s.rooms)
}

// All returns the live rooms ordered by creation time, then id.
func (s *RoomStore) All() []*Room {
	out := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
