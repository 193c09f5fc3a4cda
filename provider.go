package sensorbridge

// Tracker defines the contract of a body-tracking bridge.
//
// Implementations must guarantee:
//   - Update() never spawns goroutines: callbacks run on the caller
//   - Snapshots handed to callbacks are owned by the callee
//   - Stats() and CycleStats() are thread-safe
//   - a license fault never tears the tracker down
type Tracker interface {
	// Init loads the engine configuration, creates every producer module and
	// starts streaming.
	//
	// Returns an error matching:
	//   - ErrInit if configuration or module creation fails, or the tracker
	//     is already running
	//   - ErrStart if the engine refuses to start
	Init(configPath string) error

	// Update runs one engine cycle and dispatches a snapshot to every
	// subscribed channel that produced data.
	//
	// Example:
	//   for {
	//       err := tracker.Update()
	//       switch {
	//       case errors.Is(err, sensorbridge.ErrLicense):
	//           return err
	//       case errors.Is(err, sensorbridge.ErrEngine):
	//           continue // transient, the tracker is still running
	//       case err != nil:
	//           return err
	//       }
	//   }
	Update() error

	// Release disconnects every hook and releases the engine. Subscribers
	// are cleared and must be registered again after the next Init.
	Release() error

	SetDepthCallback(fn func(PixelBuffer))
	SetColorCallback(fn func(PixelBuffer))
	SetUserCallback(fn func(PixelBuffer))
	SetSkeletonCallback(fn func(SkeletonSnapshot))
	SetHandsCallback(fn func(HandSnapshot))
	SetGestureCallback(fn func(GestureBatch))
	SetIssueCallback(fn func(IssueBatch))
	SetFaceCallback(fn func(FaceSnapshot))

	// OutputModes returns the resolutions negotiated by Init.
	OutputModes() OutputModes

	// Stats returns per-channel counters. Thread-safe.
	Stats() BridgeStats

	// CycleStats returns rate statistics over recent cycles. Thread-safe.
	CycleStats() CycleStats
}
