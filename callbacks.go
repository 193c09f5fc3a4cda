package sensorbridge

import (
	"log/slog"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/registry"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/snapshot"
)

// Subscriber setters. Each channel holds at most one callback; a new one
// replaces the previous, nil clears the slot. Setters are valid at any time
// after New, including from inside a callback, and take effect for the next
// dispatch of that channel. Release clears every slot.

// SetDepthCallback subscribes to depth frames (1 channel, 2 bytes, mm).
func (b *Bridge) SetDepthCallback(fn func(PixelBuffer)) {
	registry.Set(&b.subs, ChannelDepth, fn)
}

// SetColorCallback subscribes to color frames (3 channels, 1 byte, BGR).
func (b *Bridge) SetColorCallback(fn func(PixelBuffer)) {
	registry.Set(&b.subs, ChannelColor, fn)
}

// SetUserCallback subscribes to user segmentation masks.
func (b *Bridge) SetUserCallback(fn func(PixelBuffer)) {
	registry.Set(&b.subs, ChannelUserMask, fn)
}

// SetSkeletonCallback subscribes to skeletons.
func (b *Bridge) SetSkeletonCallback(fn func(SkeletonSnapshot)) {
	registry.Set(&b.subs, ChannelSkeleton, fn)
}

// SetHandsCallback subscribes to hand positions.
func (b *Bridge) SetHandsCallback(fn func(HandSnapshot)) {
	registry.Set(&b.subs, ChannelHand, fn)
}

// SetGestureCallback subscribes to gesture events.
func (b *Bridge) SetGestureCallback(fn func(GestureBatch)) {
	registry.Set(&b.subs, ChannelGesture, fn)
}

// SetIssueCallback subscribes to tracking issues. Cycles without issues are
// not dispatched.
func (b *Bridge) SetIssueCallback(fn func(IssueBatch)) {
	registry.Set(&b.subs, ChannelIssue, fn)
}

// SetFaceCallback subscribes to faces. Cycles without faces are not
// dispatched.
func (b *Bridge) SetFaceCallback(fn func(FaceSnapshot)) {
	registry.Set(&b.subs, ChannelFace, fn)
}

// dispatch materializes and delivers one snapshot for ch. Nothing is built
// when ch has no subscriber. build reports the pixel bytes it copied and
// whether the result is worth delivering.
func dispatch[T any](b *Bridge, ch Channel, build func() (T, int, bool)) {
	fn := registry.Get[T](&b.subs, ch)
	if fn == nil {
		b.stats.skipped(ch)
		return
	}
	v, n, ok := build()
	b.stats.built(ch, n)
	if !ok {
		return
	}
	fn(v)
	b.stats.dispatched(ch)
}

// Engine hooks. They run inside WaitUpdate; the records they receive are
// engine memory and never escape.

func (b *Bridge) onDepth(frame *engine.DepthFrame) {
	dispatch(b, ChannelDepth, func() (PixelBuffer, int, bool) {
		p := snapshot.BuildDepth(frame)
		return p, len(p.Data), true
	})
}

func (b *Bridge) onColor(frame *engine.RGBFrame) {
	dispatch(b, ChannelColor, func() (PixelBuffer, int, bool) {
		p := snapshot.BuildColor(frame)
		return p, len(p.Data), true
	})
}

func (b *Bridge) onUser(frame *engine.UserFrame) {
	dispatch(b, ChannelUserMask, func() (PixelBuffer, int, bool) {
		p := snapshot.BuildUserMask(frame)
		return p, len(p.Data), true
	})
}

func (b *Bridge) onSkeleton(data *engine.SkeletonData) {
	dispatch(b, ChannelSkeleton, func() (SkeletonSnapshot, int, bool) {
		return snapshot.BuildSkeletons(data, b.modes.Modes()), 0, true
	})
}

func (b *Bridge) onHands(data *engine.HandTrackerData) {
	dispatch(b, ChannelHand, func() (HandSnapshot, int, bool) {
		return snapshot.BuildHands(data, b.modes.Modes()), 0, true
	})
}

func (b *Bridge) onGestures(data *engine.GestureData) {
	dispatch(b, ChannelGesture, func() (GestureBatch, int, bool) {
		return snapshot.BuildGestures(data), 0, true
	})
}

func (b *Bridge) onIssues(data *engine.IssuesData) {
	dispatch(b, ChannelIssue, func() (IssueBatch, int, bool) {
		batch := snapshot.BuildIssues(data)
		return batch, 0, len(batch) > 0
	})
}

// onInstances reads face data after a successful wait. The engine has no
// face hook, so this is the only channel polled by the bridge itself.
func (b *Bridge) onInstances() {
	dispatch(b, ChannelFace, func() (FaceSnapshot, int, bool) {
		doc, err := b.eng.InstancesJSON()
		if err != nil {
			slog.Warn("sensor-bridge: failed to read instances",
				"session_id", b.sessionID,
				"channel", ChannelFace.String(),
				"error", err,
			)
			return FaceSnapshot{}, 0, false
		}
		snap, ok := snapshot.BuildFaces(doc, b.modes.Modes())
		return snap, 0, ok
	})
}
