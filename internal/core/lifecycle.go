package core

import "time"

// LifecycleKind tells whether a room came into existence or went away.
type LifecycleKind int

const (
	RoomOpened LifecycleKind = iota
	RoomClosed
)

// Lifecycle describes a room being created or destroyed. It never carries
// message content or participant names.
type Lifecycle struct {
	Kind             LifecycleKind
	RoomID           string
	OpenedAt         time.Time
	ClosedAt         time.Time
	PeakParticipants int
	MessageCount     int
}

// LifecycleHook observes room lifecycle changes. It is called with the
// coordinator lock held and must not block.
type LifecycleHook func(Lifecycle)
