// Package sensorbridge bridges a body-tracking engine to Go subscribers.
//
// The engine produces depth, color, user segmentation, skeleton, hand,
// gesture, issue and face data on its own schedule. The bridge turns each
// update into an immutable, owned snapshot and hands it to the one callback
// registered for that channel. Nothing runs in the background: every
// snapshot is delivered from inside Update, on the caller goroutine.
//
// # Quick Start
//
//	eng := sim.New()
//	bridge := sensorbridge.New(eng)
//
//	bridge.SetSkeletonCallback(func(s sensorbridge.SkeletonSnapshot) {
//	    for _, sk := range s.Skeletons {
//	        head, _ := sk.Joint(engine.JointHead)
//	        log.Printf("user %d head at %v", sk.UserID, head.Projection)
//	    }
//	})
//
//	if err := bridge.Init(""); err != nil {
//	    log.Fatal(err)
//	}
//	defer bridge.Release()
//
//	for {
//	    if err := bridge.Update(); errors.Is(err, sensorbridge.ErrLicense) {
//	        log.Fatal(err)
//	    }
//	}
//
// # Channels
//
//   - depth: PixelBuffer, 1 channel, 2 bytes per element, millimeters
//   - color: PixelBuffer, 3 channels, 1 byte per element, BGR
//   - user_mask: PixelBuffer, 1 channel, 2 bytes, user id per pixel
//   - skeleton: SkeletonSnapshot, 20 joints per user in CanonicalJoints order
//   - hand: HandSnapshot, nil Left/Right when a hand is not tracked
//   - gesture: GestureBatch, engine order
//   - issue: IssueBatch, user slots 0..7, not dispatched when empty
//   - face: FaceSnapshot, read after each successful cycle, not dispatched
//     when no face is present
//
// # Coordinates
//
// Projected positions arrive normalized to [0,1] and are scaled by the color
// resolution captured at Init. Real positions and projected depth stay in
// millimeters.
//
// # Memory
//
// Engine records are valid only while a hook runs. Pixel data is copied
// into a fresh buffer for every dispatch, so a snapshot kept by a
// subscriber is never modified by later cycles. Channels without a
// subscriber cost nothing: no snapshot is built and no bytes are copied.
//
// # Errors
//
// All errors are *Error values and match one of ErrInit, ErrStart,
// ErrLicense, ErrEngine or ErrNotInitialized with errors.Is. Engine faults
// are reachable with errors.As(err, &fault) where fault is *engine.Fault.
// ErrLicense and ErrEngine leave the bridge running; retry policy belongs
// to the caller.
//
// # Thread Safety
//
// Init, Update, Release and the callback setters must be called from one
// goroutine. Stats, CycleStats and SessionID may be read from any goroutine.
package sensorbridge
