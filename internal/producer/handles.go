// Package producer owns the engine modules a bridge subscribes to.
//
// Each handle creates one engine module, connects exactly one hook to it and
// disconnects that hook on Close. Handles never build snapshots; the hook
// they are given does.
package producer

import (
	"fmt"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/snapshot"
)

// Handle is one connected producer.
type Handle interface {
	Channel() snapshot.Channel
	// Module is the engine module behind the handle. Issues are produced by
	// the engine itself and return nil.
	Module() engine.Module
	Close()
}

// DepthHandle wraps the depth sensor.
type DepthHandle struct {
	sensor engine.DepthSensor
	id     engine.HandlerID
}

// NewDepth creates the depth sensor and connects hook to its frames.
func NewDepth(eng engine.Engine, hook func(*engine.DepthFrame)) (*DepthHandle, error) {
	s, err := eng.CreateDepthSensor()
	if err != nil {
		return nil, fmt.Errorf("producer: create depth sensor: %w", err)
	}
	return &DepthHandle{sensor: s, id: s.ConnectOnNewFrame(hook)}, nil
}

func (h *DepthHandle) Channel() snapshot.Channel { return snapshot.ChannelDepth }
func (h *DepthHandle) Module() engine.Module     { return h.sensor }
func (h *DepthHandle) Close()                    { h.sensor.DisconnectOnNewFrame(h.id) }

// OutputMode is the mode negotiated by the depth sensor.
func (h *DepthHandle) OutputMode() engine.OutputMode { return h.sensor.OutputMode() }

// ColorHandle wraps the color sensor.
type ColorHandle struct {
	sensor engine.ColorSensor
	id     engine.HandlerID
}

// NewColor creates the color sensor and connects hook to its frames.
func NewColor(eng engine.Engine, hook func(*engine.RGBFrame)) (*ColorHandle, error) {
	s, err := eng.CreateColorSensor()
	if err != nil {
		return nil, fmt.Errorf("producer: create color sensor: %w", err)
	}
	return &ColorHandle{sensor: s, id: s.ConnectOnNewFrame(hook)}, nil
}

func (h *ColorHandle) Channel() snapshot.Channel { return snapshot.ChannelColor }
func (h *ColorHandle) Module() engine.Module     { return h.sensor }
func (h *ColorHandle) Close()                    { h.sensor.DisconnectOnNewFrame(h.id) }

// OutputMode is the mode negotiated by the color sensor.
func (h *ColorHandle) OutputMode() engine.OutputMode { return h.sensor.OutputMode() }

// UserHandle wraps the user tracker (segmentation mask).
type UserHandle struct {
	tracker engine.UserTracker
	id      engine.HandlerID
}

// NewUser creates the user tracker and connects hook to its updates.
func NewUser(eng engine.Engine, hook func(*engine.UserFrame)) (*UserHandle, error) {
	t, err := eng.CreateUserTracker()
	if err != nil {
		return nil, fmt.Errorf("producer: create user tracker: %w", err)
	}
	return &UserHandle{tracker: t, id: t.ConnectOnUpdate(hook)}, nil
}

func (h *UserHandle) Channel() snapshot.Channel { return snapshot.ChannelUserMask }
func (h *UserHandle) Module() engine.Module     { return h.tracker }
func (h *UserHandle) Close()                    { h.tracker.DisconnectOnUpdate(h.id) }

// SkeletonHandle wraps the skeleton tracker. Its module paces WaitUpdate.
type SkeletonHandle struct {
	tracker engine.SkeletonTracker
	id      engine.HandlerID
}

// NewSkeleton creates the skeleton tracker and connects hook to its updates.
func NewSkeleton(eng engine.Engine, hook func(*engine.SkeletonData)) (*SkeletonHandle, error) {
	t, err := eng.CreateSkeletonTracker()
	if err != nil {
		return nil, fmt.Errorf("producer: create skeleton tracker: %w", err)
	}
	return &SkeletonHandle{tracker: t, id: t.ConnectOnUpdate(hook)}, nil
}

func (h *SkeletonHandle) Channel() snapshot.Channel { return snapshot.ChannelSkeleton }
func (h *SkeletonHandle) Module() engine.Module     { return h.tracker }
func (h *SkeletonHandle) Close()                    { h.tracker.DisconnectOnUpdate(h.id) }

// HandHandle wraps the hand tracker.
type HandHandle struct {
	tracker engine.HandTracker
	id      engine.HandlerID
}

// NewHand creates the hand tracker and connects hook to its updates.
func NewHand(eng engine.Engine, hook func(*engine.HandTrackerData)) (*HandHandle, error) {
	t, err := eng.CreateHandTracker()
	if err != nil {
		return nil, fmt.Errorf("producer: create hand tracker: %w", err)
	}
	return &HandHandle{tracker: t, id: t.ConnectOnUpdate(hook)}, nil
}

func (h *HandHandle) Channel() snapshot.Channel { return snapshot.ChannelHand }
func (h *HandHandle) Module() engine.Module     { return h.tracker }
func (h *HandHandle) Close()                    { h.tracker.DisconnectOnUpdate(h.id) }

// GestureHandle wraps the gesture recognizer.
type GestureHandle struct {
	recognizer engine.GestureRecognizer
	id         engine.HandlerID
}

// NewGesture creates the gesture recognizer and connects hook to it.
func NewGesture(eng engine.Engine, hook func(*engine.GestureData)) (*GestureHandle, error) {
	r, err := eng.CreateGestureRecognizer()
	if err != nil {
		return nil, fmt.Errorf("producer: create gesture recognizer: %w", err)
	}
	return &GestureHandle{recognizer: r, id: r.ConnectOnNewGestures(hook)}, nil
}

func (h *GestureHandle) Channel() snapshot.Channel { return snapshot.ChannelGesture }
func (h *GestureHandle) Module() engine.Module     { return h.recognizer }
func (h *GestureHandle) Close()                    { h.recognizer.DisconnectOnNewGestures(h.id) }

// IssueHandle is the engine-level issue subscription.
type IssueHandle struct {
	eng engine.Engine
	id  engine.HandlerID
}

// NewIssue connects hook to the engine issue updates.
func NewIssue(eng engine.Engine, hook func(*engine.IssuesData)) *IssueHandle {
	return &IssueHandle{eng: eng, id: eng.ConnectOnIssuesUpdate(hook)}
}

func (h *IssueHandle) Channel() snapshot.Channel { return snapshot.ChannelIssue }
func (h *IssueHandle) Module() engine.Module     { return nil }
func (h *IssueHandle) Close()                    { h.eng.DisconnectOnIssuesUpdate(h.id) }
