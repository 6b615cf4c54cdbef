package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/securecomm-server/internal/utils"
)

type handlerFunc func(connID string, cmd Command) []Delivery

// Coordinator owns the room store and connection registry and applies
// commands to them one at a time. Each call to Handle is atomic with respect
// to every other call on the same coordinator.
type Coordinator struct {
	mu       sync.Mutex
	rooms    *RoomStore
	registry *Registry
	handlers map[CommandKind]handlerFunc

	now         func() time.Time
	newID       func(time.Time) string
	sessions    SessionIssuer
	policy      ReconnectPolicy
	onLifecycle LifecycleHook
	log         *zerolog.Logger
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithIDGenerator overrides message id generation.
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(c *Coordinator) { c.newID = gen }
}

// WithLogger sets the logger used for presence changes.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithSessions enables session tokens. Under ReconnectByToken a taken name
// can only be reclaimed with a token from issuer.
func WithSessions(issuer SessionIssuer, policy ReconnectPolicy) Option {
	return func(c *Coordinator) {
		c.sessions = issuer
		c.policy = policy
	}
}

// WithLifecycleHook registers an observer for room creation and deletion.
func WithLifecycleHook(hook LifecycleHook) Option {
	return func(c *Coordinator) { c.onLifecycle = hook }
}

// NewCoordinator creates a coordinator with empty state.
func NewCoordinator(opts ...Option) *Coordinator {
	nop := zerolog.Nop()
	c := &Coordinator{
		rooms:    NewRoomStore(),
		registry: NewRegistry(),
		now:      time.Now,
		newID:    utils.NewMessageID,
		policy:   ReconnectByName,
		log:      &nop,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.handlers = map[CommandKind]handlerFunc{
		CommandJoinRoom:    handle(c.join),
		CommandSendMessage: handle(c.send),
		CommandTyping:      handle(c.typing),
		CommandStartCall:   handle(c.startCall),
		CommandAcceptCall:  handle(c.acceptCall),
		CommandRejectCall:  handle(c.rejectCall),
		CommandEndCall:     handle(c.endCall),
		CommandDisconnect:  handle(c.disconnect),
	}
	return c
}

func handle[T Command](fn func(connID string, cmd T) []Delivery) handlerFunc {
	return func(connID string, cmd Command) []Delivery {
		payload, ok := cmd.(T)
		if !ok {
			return nil
		}
		return fn(connID, payload)
	}
}

// Handle applies cmd on behalf of connID and returns the events to deliver.
// Unknown commands produce nothing.
func (c *Coordinator) Handle(connID string, cmd Command) []Delivery {
	if cmd == nil {
		return nil
	}
	h, ok := c.handlers[cmd.Kind()]
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return h(connID, cmd)
}

func (c *Coordinator) join(connID string, cmd JoinRoom) []Delivery {
	b, bound := c.registry.Lookup(connID)
	if bound && b.RoomID == cmd.RoomID && b.Name == cmd.UserName {
		c.log.Debug().Str("conn_id", connID).Str("room_id", cmd.RoomID).Msg("duplicate join ignored")
		return nil
	}

	existing, taken := c.findParticipant(cmd.RoomID, cmd.UserName)
	taken = taken && existing.ID != connID
	if taken && c.policy == ReconnectByToken {
		if err := c.verifySession(cmd); err != nil {
			// A refused join leaves any current binding untouched.
			c.log.Warn().Err(err).Str("conn_id", connID).Str("room_id", cmd.RoomID).
				Str("user", cmd.UserName).Msg("reconnect refused")
			return []Delivery{{
				ConnID: connID,
				Event:  ErrorEvent{Err: coreError(ErrCodeNameTaken, ErrNameTaken.Error())},
			}}
		}
	}

	var out []Delivery
	if bound {
		// Moving to another room or name: release the old slot first.
		out = c.leave(connID)
	}

	if taken {
		// existing is someone else, so leaving cannot have emptied its room.
		room, _ := c.rooms.Get(cmd.RoomID)
		return append(out, c.rejoin(connID, room, existing)...)
	}

	now := c.now()
	room, created := c.rooms.GetOrCreate(cmd.RoomID, now)
	if created {
		c.emit(Lifecycle{Kind: RoomOpened, RoomID: room.ID, OpenedAt: room.CreatedAt})
	}
	return append(out, c.admit(connID, room, cmd.UserName, now)...)
}

func (c *Coordinator) findParticipant(roomID, name string) (Participant, bool) {
	room, ok := c.rooms.Get(roomID)
	if !ok {
		return Participant{}, false
	}
	return room.FindByName(name)
}

func (c *Coordinator) verifySession(cmd JoinRoom) error {
	if c.sessions == nil || cmd.Token == "" {
		return ErrNameTaken
	}
	if err := c.sessions.Verify(cmd.Token, cmd.RoomID, cmd.UserName); err != nil {
		return fmt.Errorf("%w: %w", ErrNameTaken, err)
	}
	return nil
}

// rejoin hands the stale participant's slot to connID without announcing a join.
func (c *Coordinator) rejoin(connID string, room *Room, stale Participant) []Delivery {
	room.RemoveParticipant(stale.ID)
	c.registry.Unbind(stale.ID)

	room.AddParticipant(Participant{
		ID:       connID,
		Name:     stale.Name,
		IsOnline: true,
		JoinedAt: stale.JoinedAt,
	})
	c.registry.Bind(connID, room.ID, stale.Name)

	out := []Delivery{{ConnID: connID, Event: RoomMessages{RoomID: room.ID, Messages: room.Messages()}}}
	out = append(out, c.session(connID, room.ID, stale.Name)...)
	out = append(out, toAll(room.ParticipantIDs(), c.participantsUpdated(room))...)

	c.log.Info().Str("conn_id", connID).Str("stale_conn_id", stale.ID).Str("room_id", room.ID).
		Str("user", stale.Name).Msg("participant reconnected")
	return out
}

// admit adds a brand new participant and announces it.
func (c *Coordinator) admit(connID string, room *Room, name string, now time.Time) []Delivery {
	room.AddParticipant(Participant{
		ID:       connID,
		Name:     name,
		IsOnline: true,
		JoinedAt: now,
	})
	c.registry.Bind(connID, room.ID, name)

	// Snapshot before the join notice so the joiner sees the notice exactly once.
	out := []Delivery{{ConnID: connID, Event: RoomMessages{RoomID: room.ID, Messages: room.Messages()}}}
	out = append(out, c.session(connID, room.ID, name)...)

	notice := c.appendMessage(room, Message{
		Content: name + " joined the room",
		Sender:  SystemSender,
		Type:    MessageSystem,
	})
	ids := room.ParticipantIDs()
	out = append(out, toAll(ids, c.participantsUpdated(room))...)
	out = append(out, toAll(ids, NewMessage{RoomID: room.ID, Message: notice})...)

	c.log.Info().Str("conn_id", connID).Str("room_id", room.ID).Str("user", name).
		Int("participants", room.Len()).Msg("participant joined")
	return out
}

func (c *Coordinator) session(connID, roomID, name string) []Delivery {
	if c.sessions == nil {
		return nil
	}
	token, err := c.sessions.Issue(roomID, name)
	if err != nil {
		c.log.Error().Err(err).Str("conn_id", connID).Str("room_id", roomID).Msg("issue session token")
		return nil
	}
	return []Delivery{{ConnID: connID, Event: Session{RoomID: roomID, UserName: name, Token: token}}}
}

func (c *Coordinator) disconnect(connID string, _ Disconnect) []Delivery {
	return c.leave(connID)
}

func (c *Coordinator) leave(connID string) []Delivery {
	b, ok := c.registry.Lookup(connID)
	if !ok {
		return nil
	}
	defer c.registry.Unbind(connID)

	room, ok := c.rooms.Get(b.RoomID)
	if !ok {
		return nil
	}
	if _, removed := room.RemoveParticipant(connID); !removed {
		return nil
	}

	if room.Empty() {
		c.rooms.Delete(room.ID)
		c.emit(Lifecycle{
			Kind:             RoomClosed,
			RoomID:           room.ID,
			OpenedAt:         room.CreatedAt,
			ClosedAt:         c.now(),
			PeakParticipants: room.Peak(),
			MessageCount:     room.MessageCount(),
		})
		c.log.Info().Str("room_id", room.ID).Msg("room is empty, cleaned up")
		return nil
	}

	notice := c.appendMessage(room, Message{
		Content: b.Name + " left the room",
		Sender:  SystemSender,
		Type:    MessageSystem,
	})
	ids := room.ParticipantIDs()
	out := toAll(ids, NewMessage{RoomID: room.ID, Message: notice})
	out = append(out, toAll(ids, c.participantsUpdated(room))...)

	c.log.Info().Str("conn_id", connID).Str("room_id", room.ID).Str("user", b.Name).
		Int("participants", room.Len()).Msg("participant left")
	return out
}

func (c *Coordinator) send(connID string, cmd SendMessage) []Delivery {
	b, ok := c.registry.Lookup(connID)
	if !ok {
		return nil
	}
	room, ok := c.rooms.Get(b.RoomID)
	if !ok {
		return nil
	}

	draft := cmd.Draft
	msg := Message{
		Content:   draft.Content,
		Sender:    b.Name,
		Type:      draft.Type,
		Encrypted: draft.Encrypted,
	}
	if msg.Type == "" {
		msg.Type = MessageText
	}
	if msg.Type.HasAttachment() {
		msg.FileName = draft.FileName
		msg.FileSize = draft.FileSize
	}
	msg = c.appendMessage(room, msg)

	c.log.Debug().Str("conn_id", connID).Str("room_id", room.ID).Str("message_id", msg.ID).
		Str("type", string(msg.Type)).Msg("message relayed")
	return toAll(room.ParticipantIDs(), NewMessage{RoomID: room.ID, Message: msg})
}

// appendMessage stamps m with an id and a timestamp that never goes backwards
// within the room, then appends it to the log.
func (c *Coordinator) appendMessage(room *Room, m Message) Message {
	ts := c.now()
	if last := room.LastTimestamp(); ts.Before(last) {
		ts = last
	}
	m.Timestamp = ts
	m.ID = c.newID(ts)
	room.Append(m)
	return m
}

func (c *Coordinator) participantsUpdated(room *Room) ParticipantsUpdated {
	return ParticipantsUpdated{RoomID: room.ID, Participants: room.Participants()}
}

func (c *Coordinator) typing(connID string, cmd Typing) []Delivery {
	room, b, ok := c.boundRoom(connID)
	if !ok {
		return nil
	}
	return toOthers(room.ParticipantIDs(), connID, UserTyping{
		UserID:   connID,
		UserName: b.Name,
		IsTyping: cmd.IsTyping,
	})
}

func (c *Coordinator) startCall(connID string, cmd StartCall) []Delivery {
	room, b, ok := c.boundRoom(connID)
	if !ok {
		return nil
	}
	c.log.Info().Str("conn_id", connID).Str("room_id", room.ID).Bool("video", cmd.IsVideo).Msg("call started")
	return toOthers(room.ParticipantIDs(), connID, IncomingCall{
		From:     b.Name,
		IsVideo:  cmd.IsVideo,
		CallerID: connID,
	})
}

func (c *Coordinator) acceptCall(connID string, cmd AcceptCall) []Delivery {
	if cmd.CallerID == "" || cmd.CallerID == connID {
		return nil
	}
	return []Delivery{{ConnID: cmd.CallerID, Event: CallAccepted{AccepterID: connID}}}
}

func (c *Coordinator) rejectCall(connID string, cmd RejectCall) []Delivery {
	if cmd.CallerID == "" || cmd.CallerID == connID {
		return nil
	}
	return []Delivery{{ConnID: cmd.CallerID, Event: CallRejected{}}}
}

func (c *Coordinator) endCall(connID string, _ EndCall) []Delivery {
	room, _, ok := c.boundRoom(connID)
	if !ok {
		return nil
	}
	return toOthers(room.ParticipantIDs(), connID, CallEnded{})
}

func (c *Coordinator) boundRoom(connID string) (*Room, Binding, bool) {
	b, ok := c.registry.Lookup(connID)
	if !ok {
		return nil, Binding{}, false
	}
	room, ok := c.rooms.Get(b.RoomID)
	if !ok {
		return nil, Binding{}, false
	}
	return room, b, true
}

func (c *Coordinator) emit(ev Lifecycle) {
	if c.onLifecycle != nil {
		c.onLifecycle(ev)
	}
}
