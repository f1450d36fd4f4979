// Package events provides the process-wide publish/subscribe bus that platform
// adapters dispatch into and live feeds relay out of.
package events

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// Event is anything that can be fanned out to listeners. EventType keys the
// listener registry; producers and consumers must agree on the string.
type Event interface {
	EventType() string
}

type Listener func(Event)

// Registration identifies a registered listener so it can be removed later.
// Listener funcs are not comparable, so registration hands out ids.
type Registration struct {
	typ string
	id  uint64
}

type Dispatcher struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[string]map[uint64]Listener
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: map[string]map[uint64]Listener{}}
}

func (d *Dispatcher) Register(eventType string, fn Listener) Registration {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	m := d.listeners[eventType]
	if m == nil {
		m = map[uint64]Listener{}
		d.listeners[eventType] = m
	}
	m[d.nextID] = fn
	return Registration{typ: eventType, id: d.nextID}
}

func (d *Dispatcher) Unregister(reg Registration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.listeners[reg.typ]; ok {
		delete(m, reg.id)
		if len(m) == 0 {
			delete(d.listeners, reg.typ)
		}
	}
}

// Dispatch delivers ev synchronously to every listener registered for its
// type. The listener set is copied before iteration so a listener may
// unregister itself (or another) mid-delivery. A panicking listener is logged
// and skipped; the remaining listeners still receive the event.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	m := d.listeners[ev.EventType()]
	fns := make([]Listener, 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	d.mu.RUnlock()
	for _, fn := range fns {
		deliver(fn, ev)
	}
}

func deliver(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event listener panic", "type", ev.EventType(), "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn(ev)
}
