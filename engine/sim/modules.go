package sim

import "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"

type hookEntry[T any] struct {
	id engine.HandlerID
	fn func(*T)
}

// hookList keeps hooks in connection order.
type hookList[T any] struct {
	entries []hookEntry[T]
}

func (l *hookList[T]) add(id engine.HandlerID, fn func(*T)) {
	l.entries = append(l.entries, hookEntry[T]{id: id, fn: fn})
}

func (l *hookList[T]) remove(id engine.HandlerID) {
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *hookList[T]) fire(v *T) {
	for _, e := range l.entries {
		e.fn(v)
	}
}

func (l *hookList[T]) len() int { return len(l.entries) }

// Module names, as reported by Name.
const (
	NameDepthSensor       = "DepthSensor"
	NameColorSensor       = "ColorSensor"
	NameUserTracker       = "UserTracker"
	NameSkeletonTracker   = "SkeletonTracker"
	NameHandTracker       = "HandTracker"
	NameGestureRecognizer = "GestureRecognizer"
)

// DepthSensor is the simulated depth sensor.
type DepthSensor struct {
	eng   *Engine
	hooks hookList[engine.DepthFrame]
}

func (m *DepthSensor) Name() string { return NameDepthSensor }

// Hooks is the number of connected hooks.
func (m *DepthSensor) Hooks() int { return m.hooks.len() }

func (m *DepthSensor) OutputMode() engine.OutputMode {
	return outputMode(m.eng.scene.Depth)
}

func (m *DepthSensor) ConnectOnNewFrame(hook func(*engine.DepthFrame)) engine.HandlerID {
	id := m.eng.allocID()
	m.hooks.add(id, hook)
	return id
}

func (m *DepthSensor) DisconnectOnNewFrame(id engine.HandlerID) { m.hooks.remove(id) }

// ColorSensor is the simulated color sensor.
type ColorSensor struct {
	eng   *Engine
	hooks hookList[engine.RGBFrame]
}

func (m *ColorSensor) Name() string { return NameColorSensor }

// Hooks is the number of connected hooks.
func (m *ColorSensor) Hooks() int { return m.hooks.len() }

func (m *ColorSensor) OutputMode() engine.OutputMode {
	return outputMode(m.eng.scene.Color)
}

func (m *ColorSensor) ConnectOnNewFrame(hook func(*engine.RGBFrame)) engine.HandlerID {
	id := m.eng.allocID()
	m.hooks.add(id, hook)
	return id
}

func (m *ColorSensor) DisconnectOnNewFrame(id engine.HandlerID) { m.hooks.remove(id) }

// UserTracker is the simulated user segmentation tracker.
type UserTracker struct {
	eng   *Engine
	hooks hookList[engine.UserFrame]
}

func (m *UserTracker) Name() string { return NameUserTracker }

// Hooks is the number of connected hooks.
func (m *UserTracker) Hooks() int { return m.hooks.len() }

func (m *UserTracker) ConnectOnUpdate(hook func(*engine.UserFrame)) engine.HandlerID {
	id := m.eng.allocID()
	m.hooks.add(id, hook)
	return id
}

func (m *UserTracker) DisconnectOnUpdate(id engine.HandlerID) { m.hooks.remove(id) }

// SkeletonTracker is the simulated skeleton tracker.
type SkeletonTracker struct {
	eng   *Engine
	hooks hookList[engine.SkeletonData]
}

func (m *SkeletonTracker) Name() string { return NameSkeletonTracker }

// Hooks is the number of connected hooks.
func (m *SkeletonTracker) Hooks() int { return m.hooks.len() }

func (m *SkeletonTracker) ConnectOnUpdate(hook func(*engine.SkeletonData)) engine.HandlerID {
	id := m.eng.allocID()
	m.hooks.add(id, hook)
	return id
}

func (m *SkeletonTracker) DisconnectOnUpdate(id engine.HandlerID) { m.hooks.remove(id) }

// HandTracker is the simulated hand tracker.
type HandTracker struct {
	eng   *Engine
	hooks hookList[engine.HandTrackerData]
}

func (m *HandTracker) Name() string { return NameHandTracker }

// Hooks is the number of connected hooks.
func (m *HandTracker) Hooks() int { return m.hooks.len() }

func (m *HandTracker) ConnectOnUpdate(hook func(*engine.HandTrackerData)) engine.HandlerID {
	id := m.eng.allocID()
	m.hooks.add(id, hook)
	return id
}

func (m *HandTracker) DisconnectOnUpdate(id engine.HandlerID) { m.hooks.remove(id) }

// GestureRecognizer is the simulated gesture recognizer.
type GestureRecognizer struct {
	eng   *Engine
	hooks hookList[engine.GestureData]
}

func (m *GestureRecognizer) Name() string { return NameGestureRecognizer }

// Hooks is the number of connected hooks.
func (m *GestureRecognizer) Hooks() int { return m.hooks.len() }

func (m *GestureRecognizer) ConnectOnNewGestures(hook func(*engine.GestureData)) engine.HandlerID {
	id := m.eng.allocID()
	m.hooks.add(id, hook)
	return id
}

func (m *GestureRecognizer) DisconnectOnNewGestures(id engine.HandlerID) { m.hooks.remove(id) }

func outputMode(m Mode) engine.OutputMode {
	return engine.OutputMode{FPS: m.FPS, XRes: m.Width, YRes: m.Height, HFOV: m.HFOV}
}

// createCheck returns the fault armed for name, or a not-initialized fault when
// the engine has not been initialized.
func (e *Engine) createCheck(name string) error {
	if !e.initialized {
		return engine.NewFault(engine.ExceptionModuleNotInitialized, name+" created before init")
	}
	if f := e.faults.create[name]; f != nil {
		return f
	}
	return nil
}

// CreateDepthSensor returns the depth sensor, creating it on first use.
func (e *Engine) CreateDepthSensor() (engine.DepthSensor, error) {
	if err := e.createCheck(NameDepthSensor); err != nil {
		return nil, err
	}
	if e.depth == nil {
		e.depth = &DepthSensor{eng: e}
	}
	return e.depth, nil
}

// CreateColorSensor returns the color sensor, creating it on first use.
func (e *Engine) CreateColorSensor() (engine.ColorSensor, error) {
	if err := e.createCheck(NameColorSensor); err != nil {
		return nil, err
	}
	if e.color == nil {
		e.color = &ColorSensor{eng: e}
	}
	return e.color, nil
}

// CreateUserTracker returns the user tracker, creating it on first use.
func (e *Engine) CreateUserTracker() (engine.UserTracker, error) {
	if err := e.createCheck(NameUserTracker); err != nil {
		return nil, err
	}
	if e.user == nil {
		e.user = &UserTracker{eng: e}
	}
	return e.user, nil
}

// CreateSkeletonTracker returns the skeleton tracker, creating it on first
// use.
func (e *Engine) CreateSkeletonTracker() (engine.SkeletonTracker, error) {
	if err := e.createCheck(NameSkeletonTracker); err != nil {
		return nil, err
	}
	if e.skeleton == nil {
		e.skeleton = &SkeletonTracker{eng: e}
	}
	return e.skeleton, nil
}

// CreateHandTracker returns the hand tracker, creating it on first use.
func (e *Engine) CreateHandTracker() (engine.HandTracker, error) {
	if err := e.createCheck(NameHandTracker); err != nil {
		return nil, err
	}
	if e.hand == nil {
		e.hand = &HandTracker{eng: e}
	}
	return e.hand, nil
}

// CreateGestureRecognizer returns the gesture recognizer, creating it on
// first use.
func (e *Engine) CreateGestureRecognizer() (engine.GestureRecognizer, error) {
	if err := e.createCheck(NameGestureRecognizer); err != nil {
		return nil, err
	}
	if e.gesture == nil {
		e.gesture = &GestureRecognizer{eng: e}
	}
	return e.gesture, nil
}

// Modules exposes the created modules for inspection; nil entries were
// never created.
func (e *Engine) Modules() (*DepthSensor, *ColorSensor, *UserTracker, *SkeletonTracker, *HandTracker, *GestureRecognizer) {
	return e.depth, e.color, e.user, e.skeleton, e.hand, e.gesture
}
