package core

import "github.com/google/uuid"

const defaultClientBuffer = 64

// Client is a live connection as seen by the hub.
type Client struct {
	ID     string
	Events chan Event
}

// NewClient constructs a client with a buffered event channel. An empty id
// gets a random UUID.
func NewClient(id string, buffer int) *Client {
	if id == "" {
		id = uuid.NewString()
	}
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		ID:     id,
		Events: make(chan Event, buffer),
	}
}
