// Package engine describes the boundary of the native body-tracking engine.
//
// The engine is an external collaborator: it owns the sensors, schedules
// frames and runs the tracking algorithms. The bridge only consumes the
// surface declared here. Package sim provides an in-process implementation
// used by tests and demos.
//
// Contract shared by all implementations:
//   - Hooks registered through Connect* run synchronously on the goroutine
//     that called WaitUpdate, one invocation per channel with new data.
//   - Records passed to a hook are valid only until the hook returns.
//   - Failures are reported as *Fault values.
package engine

// Configuration keys the bridge forces on during initialization.
const (
	ConfigFacesToUse              = "Faces.ToUse"
	ConfigDepth2ColorRegistration = "DepthProvider.Depth2ColorRegistration"
)

// HandlerID identifies a connected hook.
type HandlerID uint64

// Module is an engine-side producer. The skeleton tracker module is the
// pacing primitive passed to WaitUpdate.
type Module interface {
	Name() string
}

// DepthSensor produces depth frames.
type DepthSensor interface {
	Module
	OutputMode() OutputMode
	ConnectOnNewFrame(hook func(*DepthFrame)) HandlerID
	DisconnectOnNewFrame(id HandlerID)
}

// ColorSensor produces color frames.
type ColorSensor interface {
	Module
	OutputMode() OutputMode
	ConnectOnNewFrame(hook func(*RGBFrame)) HandlerID
	DisconnectOnNewFrame(id HandlerID)
}

// UserTracker produces user segmentation masks.
type UserTracker interface {
	Module
	ConnectOnUpdate(hook func(*UserFrame)) HandlerID
	DisconnectOnUpdate(id HandlerID)
}

// SkeletonTracker produces skeletons.
type SkeletonTracker interface {
	Module
	ConnectOnUpdate(hook func(*SkeletonData)) HandlerID
	DisconnectOnUpdate(id HandlerID)
}

// HandTracker produces hand positions.
type HandTracker interface {
	Module
	ConnectOnUpdate(hook func(*HandTrackerData)) HandlerID
	DisconnectOnUpdate(id HandlerID)
}

// GestureRecognizer produces gesture events.
type GestureRecognizer interface {
	Module
	ConnectOnNewGestures(hook func(*GestureData)) HandlerID
	DisconnectOnNewGestures(id HandlerID)
}

// Engine is the process-wide engine instance.
type Engine interface {
	// Init loads configuration from configPath ("" selects the default).
	Init(configPath string) error
	SetConfigValue(key, value string) error
	// Run starts streaming. Modules must be created before Run.
	Run() error
	Release() error

	// WaitUpdate blocks until pacing has new data, invoking the connected
	// hooks of every module with data ready in this cycle.
	WaitUpdate(pacing Module) error

	CreateDepthSensor() (DepthSensor, error)
	CreateColorSensor() (ColorSensor, error)
	CreateUserTracker() (UserTracker, error)
	CreateSkeletonTracker() (SkeletonTracker, error)
	CreateHandTracker() (HandTracker, error)
	CreateGestureRecognizer() (GestureRecognizer, error)

	ConnectOnIssuesUpdate(hook func(*IssuesData)) HandlerID
	DisconnectOnIssuesUpdate(id HandlerID)

	// InstancesJSON returns the per-instance (face) data of the last cycle.
	InstancesJSON() (string, error)
}
