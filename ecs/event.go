package ecs

import (
	"reflect"

	"github.com/kamstrup/intmap"
)

// EventKind identifies one of the independent event streams a pool or
// entity emits.
type EventKind uint8

const (
	EntityAdded EventKind = iota
	EntityRemoved
	ComponentAdded
	ComponentRemoved

	eventKindCount
)

var eventKindNames = [eventKindCount]string{
	EntityAdded:      "EntityAdded",
	EntityRemoved:    "EntityRemoved",
	ComponentAdded:   "ComponentAdded",
	ComponentRemoved: "ComponentRemoved",
}

func (k EventKind) String() string {
	if k >= eventKindCount {
		return "EventKind(?)"
	}
	return eventKindNames[k]
}

// Event describes a single mutation. Type and Component are only set for
// component events.
type Event struct {
	Kind      EventKind
	Pool      *EntityPool
	Entity    *Entity
	Type      reflect.Type
	Component any
}

// Listener receives events. A non-nil error stops delivery to the remaining
// listeners and is returned from the operation that emitted the event.
type Listener func(Event) error

// ListenerHandle identifies a subscription so it can be cancelled.
type ListenerHandle uint64

type listenerEntry struct {
	handle ListenerHandle
	fn     Listener
}

// Observers maps each event kind to its ordered list of listeners.
// Listeners run synchronously in subscription order.
type Observers struct {
	listeners [eventKindCount][]listenerEntry
	kinds     *intmap.Map[ListenerHandle, EventKind]
	next      ListenerHandle
}

func newObservers() *Observers {
	return &Observers{
		kinds: intmap.New[ListenerHandle, EventKind](8),
	}
}

// Subscribe registers fn for events of the given kind.
func (o *Observers) Subscribe(kind EventKind, fn Listener) ListenerHandle {
	if kind >= eventKindCount {
		panic("ecs: unknown event kind")
	}
	if fn == nil {
		panic("ecs: nil listener")
	}

	o.next++
	handle := o.next
	if cap(o.listeners[kind]) == 0 {
		o.listeners[kind] = make([]listenerEntry, 0, 4)
	}
	o.listeners[kind] = append(o.listeners[kind], listenerEntry{handle: handle, fn: fn})
	o.kinds.Put(handle, kind)
	return handle
}

// Unsubscribe removes the listener registered under handle. It reports
// whether a listener was removed.
func (o *Observers) Unsubscribe(handle ListenerHandle) bool {
	kind, ok := o.kinds.Get(handle)
	if !ok {
		return false
	}
	o.kinds.Del(handle)

	entries := o.listeners[kind]
	for i, entry := range entries {
		if entry.handle == handle {
			// Copy instead of shifting in place: an emit in progress may hold the old slice.
			next := make([]listenerEntry, 0, len(entries)-1)
			next = append(next, entries[:i]...)
			next = append(next, entries[i+1:]...)
			o.listeners[kind] = next
			return true
		}
	}
	return false
}

// Len returns the number of listeners subscribed to kind.
func (o *Observers) Len(kind EventKind) int {
	if kind >= eventKindCount {
		return 0
	}
	return len(o.listeners[kind])
}

// emit delivers ev to a snapshot of the current listeners for ev.Kind, so
// listeners added or removed during delivery only see later events.
func (o *Observers) emit(ev Event) error {
	entries := o.listeners[ev.Kind]
	n := len(entries)
	for i := 0; i < n; i++ {
		if err := entries[i].fn(ev); err != nil {
			return err
		}
	}
	return nil
}
