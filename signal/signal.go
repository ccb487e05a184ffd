// Package signal provides a reference implementation of the fabrica
// lifecycle-signal collaborator: a hub of listeners keyed by event and
// record type, with scoped suspension used by quiet creation.
package signal

import (
	"sync"

	"github.com/syssam/fabrica"
)

// Listener observes one lifecycle event on one record type. rec is nil for
// pre-init, which fires before the record exists.
type Listener func(e fabrica.Event, rec fabrica.Record)

type key struct {
	event    fabrica.Event
	typeName string
}

// Hub is an in-process listener registry. It implements fabrica.Signals
// and schema.Notifier. Disconnect parks the listeners of one (event, type)
// pair aside; Connect restores exactly the parked set, so a
// disconnect/connect cycle leaves the hub in its prior state.
type Hub struct {
	mu     sync.Mutex
	active map[key][]Listener
	parked map[key][]Listener
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		active: make(map[key][]Listener),
		parked: make(map[key][]Listener),
	}
}

// On registers a listener for the event on the named record type.
func (h *Hub) On(e fabrica.Event, typeName string, fn Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	k := key{event: e, typeName: typeName}
	h.active[k] = append(h.active[k], fn)
}

// HasListeners reports whether any listener is connected for the event on
// the record type.
func (h *Hub) HasListeners(e fabrica.Event, rt fabrica.RecordType) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.active[key{event: e, typeName: rt.Name()}]) > 0
}

// Disconnect parks all connected listeners for the event on the record
// type. Parked listeners do not fire until reconnected.
func (h *Hub) Disconnect(e fabrica.Event, rt fabrica.RecordType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	k := key{event: e, typeName: rt.Name()}
	if ls := h.active[k]; len(ls) > 0 {
		h.parked[k] = append(h.parked[k], ls...)
		delete(h.active, k)
	}
}

// Connect restores the listeners parked by Disconnect.
func (h *Hub) Connect(e fabrica.Event, rt fabrica.RecordType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	k := key{event: e, typeName: rt.Name()}
	if ls := h.parked[k]; len(ls) > 0 {
		h.active[k] = append(h.active[k], ls...)
		delete(h.parked, k)
	}
}

// Notify dispatches the event to the connected listeners for the record
// type, in registration order.
func (h *Hub) Notify(e fabrica.Event, rt fabrica.RecordType, rec fabrica.Record) {
	h.mu.Lock()
	ls := h.active[key{event: e, typeName: rt.Name()}]
	listeners := make([]Listener, len(ls))
	copy(listeners, ls)
	h.mu.Unlock()
	for _, fn := range listeners {
		fn(e, rec)
	}
}
