package core

import (
	"context"

	"github.com/rs/zerolog"
)

type envelope struct {
	client *Client
	cmd    Command
}

// Hub serializes connection events through a single goroutine and fans the
// resulting deliveries out to client event channels.
type Hub struct {
	coord    *Coordinator
	register chan *Client
	inbox    chan envelope
	done     chan struct{}
	clients  map[string]*Client
	log      *zerolog.Logger
}

// NewHub creates a hub around coord. A nil coordinator gets a default one.
func NewHub(coord *Coordinator, logger *zerolog.Logger) *Hub {
	if coord == nil {
		coord = NewCoordinator()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		coord:    coord,
		register: make(chan *Client),
		inbox:    make(chan envelope, 256),
		done:     make(chan struct{}),
		clients:  make(map[string]*Client),
		log:      logger,
	}
}

// Coordinator exposes the hub's state owner for read-only queries.
func (h *Hub) Coordinator() *Coordinator {
	return h.coord
}

// Run processes events until ctx is cancelled. Client event channels are
// closed on exit.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.clients[c.ID] = c
			h.log.Debug().Str("conn_id", c.ID).Msg("client registered")
		case env := <-h.inbox:
			h.process(env)
		}
	}
}

// RegisterClient makes c addressable. It returns immediately once the hub has stopped.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// UnregisterClient removes c and runs the disconnect path for it. It is
// queued behind the commands c already submitted.
func (h *Hub) UnregisterClient(c *Client) {
	h.Submit(c, Disconnect{})
}

// Submit queues cmd on behalf of c.
func (h *Hub) Submit(c *Client, cmd Command) {
	if c == nil || cmd == nil {
		return
	}
	select {
	case h.inbox <- envelope{client: c, cmd: cmd}:
	case <-h.done:
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) process(env envelope) {
	c, ok := h.clients[env.client.ID]
	if !ok {
		// Commands can still be queued for a client that has gone away.
		return
	}
	if env.cmd.Kind() == CommandDisconnect {
		delete(h.clients, c.ID)
		close(c.Events)
		h.log.Debug().Str("conn_id", c.ID).Msg("client unregistered")
	}
	h.deliver(h.coord.Handle(c.ID, env.cmd))
}

func (h *Hub) deliver(deliveries []Delivery) {
	for _, d := range deliveries {
		c, ok := h.clients[d.ConnID]
		if !ok {
			continue
		}
		select {
		case c.Events <- d.Event:
		default:
			// Drop if slow consumer.
			h.log.Warn().Str("conn_id", c.ID).Str("event", d.Event.Kind().String()).Msg("client buffer full, event dropped")
		}
	}
}

func (h *Hub) closeAll() {
	for id, c := range h.clients {
		close(c.Events)
		delete(h.clients, id)
	}
}
