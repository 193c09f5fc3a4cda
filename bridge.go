package sensorbridge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/pacing"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/producer"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/registry"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/snapshot"
)

// State is the lifecycle state of a Bridge.
type State int32

const (
	// StateNew is a bridge that was never initialized.
	StateNew State = iota
	// StateRunning is a bridge whose engine is streaming.
	StateRunning
	// StateFailed is a bridge whose Init failed. Release is required
	// before the next Init.
	StateFailed
	// StateReleased is a bridge after Release.
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// errReentrant is the message of lifecycle calls made from a callback.
const errReentrant = "called from inside a callback"

// Bridge implements Tracker on top of an engine.Engine.
type Bridge struct {
	eng engine.Engine

	// Lifecycle (update goroutine only)
	state     State
	sessionID string
	handles   producer.Set
	modes     snapshot.ModeRegistry
	subs      registry.Registry
	// dispatching is set while engine hooks and callbacks run inside
	// Update. Lifecycle calls made from a callback are rejected.
	dispatching bool

	// Statistics (atomic, readable from any goroutine)
	stats counters

	// Cycle timing, guarded by meterMu for CycleStats readers
	meterMu sync.Mutex
	meter   *pacing.Meter

	// statusMu guards state and sessionID for Stats readers
	statusMu sync.RWMutex
}

// New creates a bridge over eng. Callbacks may be registered right away;
// nothing talks to the engine until Init.
func New(eng engine.Engine) *Bridge {
	return &Bridge{
		eng:   eng,
		meter: pacing.NewMeter(),
	}
}

func (b *Bridge) setState(s State) {
	b.statusMu.Lock()
	b.state = s
	b.statusMu.Unlock()
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.statusMu.RLock()
	defer b.statusMu.RUnlock()
	return b.state
}

// SessionID identifies the current Init lifetime in logs. Empty before the
// first Init.
func (b *Bridge) SessionID() string {
	b.statusMu.RLock()
	defer b.statusMu.RUnlock()
	return b.sessionID
}

// Init initializes the engine and starts streaming.
//
// This method:
//  1. Loads the engine configuration from configPath ("" = engine default)
//  2. Forces face tracking and depth-to-color registration on
//  3. Creates every producer module and connects one hook per channel
//  4. Captures the depth and color output modes
//  5. Starts the engine
//
// Steps 1-3 fail with ErrInit, step 5 with ErrStart. After a failure the
// bridge is in StateFailed: Update returns ErrNotInitialized and Release must
// be called before trying again. Init on a running bridge returns ErrInit
// without touching the engine, so hooks are never registered twice.
func (b *Bridge) Init(configPath string) error {
	if b.dispatching {
		return stateError(ErrInit, "init", errReentrant)
	}
	switch b.State() {
	case StateRunning:
		return stateError(ErrInit, "init", "bridge already initialized")
	case StateFailed:
		return stateError(ErrInit, "init", "previous init failed, release first")
	}

	sessionID := uuid.NewString()
	b.statusMu.Lock()
	b.sessionID = sessionID
	b.statusMu.Unlock()
	b.stats.reset()
	b.meterMu.Lock()
	b.meter.Reset()
	b.meterMu.Unlock()

	slog.Info("sensor-bridge: initializing",
		"session_id", sessionID,
		"config_path", configPath,
	)

	if err := b.eng.Init(configPath); err != nil {
		return b.failInit(ErrInit, "init", err)
	}

	for _, key := range []string{engine.ConfigFacesToUse, engine.ConfigDepth2ColorRegistration} {
		if err := b.eng.SetConfigValue(key, "true"); err != nil {
			slog.Error("sensor-bridge: failed to set config value",
				"session_id", sessionID,
				"key", key,
				"error", err,
			)
			return b.failInit(ErrInit, "set_config", err)
		}
	}

	if err := b.connect(); err != nil {
		return b.failInit(ErrInit, "create_modules", err)
	}

	depth, color, _ := b.handles.OutputModes()
	if err := b.modes.Capture(depth, color); err != nil {
		return b.failInit(ErrInit, "output_modes", err)
	}

	if err := b.eng.Run(); err != nil {
		return b.failInit(ErrStart, "run", err)
	}

	b.setState(StateRunning)
	modes := b.modes.Modes()
	slog.Info("sensor-bridge: running",
		"session_id", sessionID,
		"depth_mode", modes.Depth.String(),
		"color_mode", modes.Color.String(),
		"subscribers", len(b.subs.Active()),
	)
	return nil
}

func (b *Bridge) failInit(kind error, op string, err error) error {
	b.setState(StateFailed)
	e := newError(kind, op, err)
	slog.Error("sensor-bridge: init failed",
		"session_id", b.SessionID(),
		"op", op,
		"code", int(e.Code),
		"error", err,
	)
	return e
}

// connect creates every producer handle. Handles created before a failure
// stay in the set and are disconnected by Release.
func (b *Bridge) connect() error {
	depth, err := producer.NewDepth(b.eng, b.onDepth)
	if err != nil {
		return err
	}
	b.handles.Add(depth)

	color, err := producer.NewColor(b.eng, b.onColor)
	if err != nil {
		return err
	}
	b.handles.Add(color)

	user, err := producer.NewUser(b.eng, b.onUser)
	if err != nil {
		return err
	}
	b.handles.Add(user)

	skeleton, err := producer.NewSkeleton(b.eng, b.onSkeleton)
	if err != nil {
		return err
	}
	b.handles.Add(skeleton)

	hand, err := producer.NewHand(b.eng, b.onHands)
	if err != nil {
		return err
	}
	b.handles.Add(hand)

	gesture, err := producer.NewGesture(b.eng, b.onGestures)
	if err != nil {
		return err
	}
	b.handles.Add(gesture)

	b.handles.Add(producer.NewIssue(b.eng, b.onIssues))
	return nil
}

// Update runs one engine cycle: a single wait on the skeleton tracker,
// during which the engine invokes the hooks of every channel with new data.
// Subscribed channels get a snapshot through their callback before Update
// returns; callbacks run on the calling goroutine.
//
// Returns:
//   - ErrNotInitialized when the bridge is not running, or when called
//     from inside a callback (Init and Release are rejected there too)
//   - ErrLicense when the engine reports a license fault (every cycle,
//     until the license is restored)
//   - ErrEngine for any other engine fault; the bridge stays running
func (b *Bridge) Update() error {
	if b.dispatching {
		return stateError(ErrNotInitialized, "update", errReentrant)
	}
	if b.State() != StateRunning {
		return stateError(ErrNotInitialized, "update", "bridge is not running")
	}

	b.dispatching = true
	defer func() { b.dispatching = false }()

	start := time.Now()
	if err := b.eng.WaitUpdate(b.handles.Pacing()); err != nil {
		if engine.IsLicenseFault(err) {
			b.stats.licenseErrors.Add(1)
			slog.Warn("sensor-bridge: license not acquired",
				"session_id", b.sessionID,
				"error", err,
			)
			return newError(ErrLicense, "update", err)
		}
		b.stats.engineErrors.Add(1)
		e := newError(ErrEngine, "update", err)
		slog.Warn("sensor-bridge: engine error during update",
			"session_id", b.sessionID,
			"code", int(e.Code),
			"message", e.Message,
			"error", err,
		)
		return e
	}

	b.onInstances()

	cycle := b.stats.cycles.Add(1)
	now := time.Now()
	b.meterMu.Lock()
	b.meter.Mark(now)
	b.meter.ObserveUpdate(now.Sub(start))
	b.meterMu.Unlock()

	slog.Debug("sensor-bridge: cycle complete",
		"session_id", b.sessionID,
		"cycle", cycle,
		"duration_ms", now.Sub(start).Milliseconds(),
	)
	return nil
}

// Release disconnects every hook, releases the engine and clears the
// subscriber registry and output modes. An engine release failure is logged
// and not returned: the bridge is released either way.
//
// Returns ErrNotInitialized if there is nothing to release.
func (b *Bridge) Release() error {
	if b.dispatching {
		return stateError(ErrNotInitialized, "release", errReentrant)
	}
	switch b.State() {
	case StateNew, StateReleased:
		return stateError(ErrNotInitialized, "release", "nothing to release")
	}

	b.handles.Close()
	if err := b.eng.Release(); err != nil {
		slog.Warn("sensor-bridge: engine release failed",
			"session_id", b.sessionID,
			"error", err,
		)
	}
	b.subs.Clear()
	b.modes.Reset()
	b.setState(StateReleased)

	st := b.stats.load()
	slog.Info("sensor-bridge: released",
		"session_id", b.sessionID,
		"cycles", st.Cycles,
		"engine_errors", st.EngineErrors,
		"license_errors", st.LicenseErrors,
	)
	return nil
}

// OutputModes returns the depth and color modes captured by Init. Zero
// values before Init and after Release.
func (b *Bridge) OutputModes() OutputModes {
	return b.modes.Modes()
}

// Stats returns the bridge counters. Safe to call from any goroutine.
func (b *Bridge) Stats() BridgeStats {
	s := b.stats.load()
	b.statusMu.RLock()
	s.SessionID = b.sessionID
	s.State = b.state.String()
	b.statusMu.RUnlock()
	return s
}

// CycleStats returns rate statistics over the most recent cycles. Safe to
// call from any goroutine.
func (b *Bridge) CycleStats() CycleStats {
	b.meterMu.Lock()
	defer b.meterMu.Unlock()
	return fromSnapshot(b.meter.Snapshot())
}

var _ Tracker = (*Bridge)(nil)
