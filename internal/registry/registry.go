// Package registry holds the subscriber callbacks of a bridge, one slot per
// channel.
//
// Slots are plain fields written in a single assignment. The bridge runs
// hooks on the caller goroutine, so a callback replaced from inside another
// callback takes effect for the next dispatch of that channel.
package registry

import "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/snapshot"

// Registry is the fixed set of channel slots. The zero value is empty.
type Registry struct {
	slots [snapshot.ChannelCount]any
}

// Set stores fn in the slot of ch, replacing any previous callback. A nil
// fn clears the slot.
func Set[T any](r *Registry, ch snapshot.Channel, fn func(T)) {
	if fn == nil {
		r.slots[ch] = nil
		return
	}
	r.slots[ch] = fn
}

// Get returns the callback stored for ch, or nil when the slot is empty or
// holds a callback of another payload type.
func Get[T any](r *Registry, ch snapshot.Channel) func(T) {
	fn, _ := r.slots[ch].(func(T))
	return fn
}

// Registered reports whether ch has a subscriber.
func (r *Registry) Registered(ch snapshot.Channel) bool {
	return r.slots[ch] != nil
}

// Active lists the channels that currently have a subscriber.
func (r *Registry) Active() []snapshot.Channel {
	var out []snapshot.Channel
	for i, s := range r.slots {
		if s != nil {
			out = append(out, snapshot.Channel(i))
		}
	}
	return out
}

// Clear empties every slot.
func (r *Registry) Clear() {
	r.slots = [snapshot.ChannelCount]any{}
}
