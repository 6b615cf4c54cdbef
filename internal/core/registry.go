package core

// Binding ties a live connection to the room it joined and its display name.
type Binding struct {
	RoomID string
	Name   string
}

// Registry maps connection ids to bindings. It is not safe for concurrent use;
// the Coordinator guards it.
type Registry struct {
	bindings map[string]Binding
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]Binding)}
}

// Bind records (or replaces) the binding for connID.
func (r *Registry) Bind(connID, roomID, name string) {
	r.bindings[connID] = Binding{RoomID: roomID, Name: name}
}

// Lookup returns the binding for connID. A missing binding is not an error.
func (r *Registry) Lookup(connID string) (Binding, bool) {
	b, ok := r.bindings[connID]
	return b, ok
}

// Unbind forgets connID. Unknown ids are ignored.
func (r *Registry) Unbind(connID string) {
	delete(r.bindings, connID)
}

// Len returns the number of bound connections.
func (r *Registry) Len() int {
	return len(r.bindings)
}
