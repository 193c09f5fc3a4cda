package producer

import (
	"fmt"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/snapshot"
)

// Set owns the handles of one Init lifetime, at most one per channel.
type Set struct {
	handles [snapshot.ChannelCount]Handle
	order   []snapshot.Channel
}

// Add stores h. A second handle for the same channel is a programming error
// and panics: it would double-register the engine hook.
func (s *Set) Add(h Handle) {
	ch := h.Channel()
	if s.handles[ch] != nil {
		panic(fmt.Sprintf("producer: duplicate handle for channel %s", ch))
	}
	s.handles[ch] = h
	s.order = append(s.order, ch)
}

// Get returns the handle for ch, or nil.
func (s *Set) Get(ch snapshot.Channel) Handle {
	return s.handles[ch]
}

// Len is the number of handles held.
func (s *Set) Len() int { return len(s.order) }

// Pacing returns the skeleton tracker module, or nil when not created.
func (s *Set) Pacing() engine.Module {
	if h, ok := s.handles[snapshot.ChannelSkeleton].(*SkeletonHandle); ok {
		return h.Module()
	}
	return nil
}

// OutputModes returns the modes of the depth and color sensors. ok is false
// when either sensor is missing.
func (s *Set) OutputModes() (depth, color engine.OutputMode, ok bool) {
	d, dok := s.handles[snapshot.ChannelDepth].(*DepthHandle)
	c, cok := s.handles[snapshot.ChannelColor].(*ColorHandle)
	if !dok || !cok {
		return engine.OutputMode{}, engine.OutputMode{}, false
	}
	return d.OutputMode(), c.OutputMode(), true
}

// Close disconnects every handle in reverse creation order and empties the
// set.
func (s *Set) Close() {
	for i := len(s.order) - 1; i >= 0; i-- {
		s.handles[s.order[i]].Close()
	}
	*s = Set{}
}
