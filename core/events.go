package core

import "reflect"

// LifecycleEvent is the closed set of adapter-level notifications,
// distinct from application-defined message events.
type LifecycleEvent string

const (
	EventConnect    LifecycleEvent = "connect"
	EventDisconnect LifecycleEvent = "disconnect"
	EventError      LifecycleEvent = "error"
)

func (e LifecycleEvent) valid() bool {
	switch e {
	case EventConnect, EventDisconnect, EventError:
		return true
	}
	return false
}

// Callback observes a lifecycle event. err is nil for connect and
// disconnect notifications and carries the reported error otherwise.
type Callback func(err error)

// callbackRegistry keeps the ordered callback sequences for the three
// lifecycle events. Registrations under any other name are dropped.
type callbackRegistry struct {
	callbacks map[LifecycleEvent][]Callback
}

func newCallbackRegistry() *callbackRegistry {
	return &callbackRegistry{
		callbacks: map[LifecycleEvent][]Callback{
			EventConnect:    nil,
			EventDisconnect: nil,
			EventError:      nil,
		},
	}
}

func (r *callbackRegistry) add(event LifecycleEvent, cb Callback) {
	if !event.valid() || cb == nil {
		return
	}
	r.callbacks[event] = append(r.callbacks[event], cb)
}

// remove drops every registration of cb, compared by function identity.
func (r *callbackRegistry) remove(event LifecycleEvent, cb Callback) {
	if !event.valid() || cb == nil {
		return
	}
	target := reflect.ValueOf(cb).Pointer()
	kept := r.callbacks[event][:0]
	for _, existing := range r.callbacks[event] {
		if reflect.ValueOf(existing).Pointer() != target {
			kept = append(kept, existing)
		}
	}
	r.callbacks[event] = kept
}

func (r *callbackRegistry) clear() {
	for event := range r.callbacks {
		r.callbacks[event] = nil
	}
}

func (r *callbackRegistry) snapshot(event LifecycleEvent) []Callback {
	cbs := r.callbacks[event]
	out := make([]Callback, len(cbs))
	copy(out, cbs)
	return out
}
