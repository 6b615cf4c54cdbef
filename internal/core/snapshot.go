package core

import "time"

// RoomSummary is a read-only view of a live room.
type RoomSummary struct {
	ID           string
	CreatedAt    time.Time
	Participants []Participant
	MessageCount int
}

func summarize(room *Room) RoomSummary {
	return RoomSummary{
		ID:           room.ID,
		CreatedAt:    room.CreatedAt,
		Participants: room.Participants(),
		MessageCount: room.MessageCount(),
	}
}

// Rooms returns summaries of every live room, oldest first.
func (c *Coordinator) Rooms() []RoomSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	rooms := c.rooms.All()
	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, summarize(room))
	}
	return out
}

// Room returns the summary of a single live room.
func (c *Coordinator) Room(id string) (RoomSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms.Get(id)
	if !ok {
		return RoomSummary{}, false
	}
	return summarize(room), true
}

// Messages returns a copy of a room's log.
func (c *Coordinator) Messages(roomID string) ([]Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms.Get(roomID)
	if !ok {
		return nil, false
	}
	return room.Messages(), true
}

// Binding returns the binding of a connection, if it has joined a room.
func (c *Coordinator) Binding(connID string) (Binding, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Lookup(connID)
}

// Member returns the participant connID holds in roomID.
func (c *Coordinator) Member(roomID, connID string) (Participant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms.Get(roomID)
	if !ok {
		return Participant{}, ErrRoomNotFound
	}
	p, ok := room.Participant(connID)
	if !ok {
		return Participant{}, ErrNotInRoom
	}
	return p, nil
}

// Counts reports the number of live rooms and bound connections.
func (c *Coordinator) Counts() (rooms, connections int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.Len(), c.registry.Len()
}
