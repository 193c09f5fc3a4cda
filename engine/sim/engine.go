// Package sim is an in-process engine.Engine driven by a YAML scene or by
// records queued from tests.
//
// Like the native engine it owns its pixel memory: frames handed to hooks
// point into buffers that are overwritten after the hooks return, so a
// consumer that keeps a reference instead of copying sees garbage on the
// next cycle.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
)

// Poison values written over engine buffers once hooks return.
const (
	PoisonDepth uint16 = 0xDEAD
	PoisonMask  uint16 = 0xBEEF
)

// PoisonColor is written over color pixels once hooks return.
var PoisonColor = engine.Color3{Blue: 0xFF, Green: 0x00, Red: 0xFF}

// Cycle is the data of one WaitUpdate. A nil field means the channel has
// no new data in that cycle.
type Cycle struct {
	Depth     *engine.DepthFrame
	Color     *engine.RGBFrame
	User      *engine.UserFrame
	Skeleton  *engine.SkeletonData
	Hands     *engine.HandTrackerData
	Gestures  *engine.GestureData
	Issues    *engine.IssuesData
	Instances string
}

// Engine is the simulated engine. It is not safe for concurrent use, like
// the native engine's single-threaded update loop.
type Engine struct {
	scene     Scene
	gen       *generator
	queue     []Cycle
	config    map[string]string
	instances string

	initialized bool
	running     bool
	cycle       uint64
	lastTick    time.Time
	nextID      engine.HandlerID

	depth    *DepthSensor
	color    *ColorSensor
	user     *UserTracker
	skeleton *SkeletonTracker
	hand     *HandTracker
	gesture  *GestureRecognizer
	issues   hookList[engine.IssuesData]

	// Staging buffers reused across cycles.
	depthBuf []uint16
	colorBuf []engine.Color3
	maskBuf  []uint16

	faults injected
}

// injected holds faults armed from tests; they take precedence over the
// scene's fault section.
type injected struct {
	init    *engine.Fault
	config  *engine.Fault
	run     *engine.Fault
	release *engine.Fault
	create  map[string]*engine.Fault
	wait    []*engine.Fault
	license bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithScene replaces the default scene. Init with an empty path keeps it.
func WithScene(s Scene) Option {
	return func(e *Engine) { e.scene = s }
}

// New returns an engine using DefaultScene.
func New(opts ...Option) *Engine {
	e := &Engine{
		scene:  DefaultScene(),
		config: map[string]string{},
		faults: injected{create: map[string]*engine.Fault{}},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init loads the scene at configPath ("" keeps the current scene).
func (e *Engine) Init(configPath string) error {
	if f := e.faults.init; f != nil {
		return f
	}
	scene := e.scene
	if configPath != "" {
		loaded, err := LoadScene(configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return engine.NewFault(engine.ExceptionConfigNotFound, err.Error())
			}
			return engine.NewFault(engine.ExceptionBadConfigValue, err.Error())
		}
		scene = loaded
	} else if err := scene.Validate(); err != nil {
		return engine.NewFault(engine.ExceptionBadConfigValue, err.Error())
	}
	if name := scene.Faults.Init; name != "" {
		t, _ := ParseExceptionType(name)
		return engine.NewFault(t, "scripted init fault")
	}
	e.scene = scene

	e.gen = newGenerator(e.scene)
	if e.scene.Replay != "" {
		rec, err := LoadRecording(e.scene.Replay)
		if err != nil {
			return engine.NewFault(engine.ExceptionConfigNotFound, err.Error())
		}
		e.gen.recording = rec
	}

	e.initialized = true
	e.cycle = 0
	slog.Debug("sim: initialized",
		"depth", fmt.Sprintf("%dx%d", e.scene.Depth.Width, e.scene.Depth.Height),
		"color", fmt.Sprintf("%dx%d", e.scene.Color.Width, e.scene.Color.Height),
		"users", len(e.scene.Users),
		"replay", e.scene.Replay,
	)
	return nil
}

// SetConfigValue stores a configuration key.
func (e *Engine) SetConfigValue(key, value string) error {
	if !e.initialized {
		return engine.NewFault(engine.ExceptionModuleNotInitialized, "set config value before init")
	}
	if f := e.faults.config; f != nil {
		return f
	}
	e.config[key] = value
	return nil
}

// ConfigValue returns a key set through SetConfigValue.
func (e *Engine) ConfigValue(key string) (string, bool) {
	v, ok := e.config[key]
	return v, ok
}

// Run starts streaming.
func (e *Engine) Run() error {
	if !e.initialized {
		return engine.NewFault(engine.ExceptionModuleNotInitialized, "run before init")
	}
	if f := e.faults.run; f != nil {
		return f
	}
	if name := e.scene.Faults.Run; name != "" {
		t, _ := ParseExceptionType(name)
		return engine.NewFault(t, "scripted run fault")
	}
	e.running = true
	e.lastTick = time.Time{}
	return nil
}

// Release stops streaming and drops every module and hook.
func (e *Engine) Release() error {
	e.running = false
	e.initialized = false
	e.depth, e.color, e.user = nil, nil, nil
	e.skeleton, e.hand, e.gesture = nil, nil, nil
	e.issues = hookList[engine.IssuesData]{}
	e.config = map[string]string{}
	e.instances = ""
	if f := e.faults.release; f != nil {
		return f
	}
	return nil
}

// Running reports whether Run succeeded and Release has not been called.
func (e *Engine) Running() bool { return e.running }

// Cycle is the number of completed WaitUpdate calls since Init.
func (e *Engine) Cycle() uint64 { return e.cycle }

// Scene returns the active scene.
func (e *Engine) Scene() Scene { return e.scene }

// Enqueue appends cycles that WaitUpdate delivers before falling back to
// the scene.
func (e *Engine) Enqueue(cycles ...Cycle) {
	e.queue = append(e.queue, cycles...)
}

// WaitUpdate delivers one cycle to the connected hooks.
func (e *Engine) WaitUpdate(pacing engine.Module) error {
	if !e.running {
		return engine.NewFault(engine.ExceptionModuleNotStarted, "wait update before run")
	}
	if pacing == nil || e.skeleton == nil || pacing != engine.Module(e.skeleton) {
		return engine.NewFault(engine.ExceptionModuleNotFound, "pacing module is not this engine's skeleton tracker")
	}
	if e.licenseExpired() {
		return engine.NewFault(engine.ExceptionLicenseNotAcquired, "")
	}
	if len(e.faults.wait) > 0 {
		f := e.faults.wait[0]
		e.faults.wait = e.faults.wait[1:]
		return f
	}
	for _, wf := range e.scene.Faults.Wait {
		if wf.Cycle == e.cycle {
			t, _ := ParseExceptionType(wf.Type)
			e.cycle++
			return engine.NewFault(t, "scripted wait fault")
		}
	}

	e.pace()

	var c Cycle
	if len(e.queue) > 0 {
		c = e.queue[0]
		e.queue = e.queue[1:]
	} else {
		c = e.gen.next(e.cycle)
	}
	e.dispatch(c)
	e.cycle++
	return nil
}

func (e *Engine) licenseExpired() bool {
	if e.faults.license {
		return true
	}
	after := e.scene.Faults.LicenseAfter
	return after > 0 && e.cycle >= after
}

// pace sleeps until the next frame is due in realtime mode.
func (e *Engine) pace() {
	if !e.scene.Realtime || e.scene.Depth.FPS <= 0 {
		return
	}
	interval := time.Second / time.Duration(e.scene.Depth.FPS)
	if !e.lastTick.IsZero() {
		if wait := time.Until(e.lastTick.Add(interval)); wait > 0 {
			time.Sleep(wait)
		}
	}
	e.lastTick = time.Now()
}

// dispatch stages pixel data into engine-owned buffers, fires hooks in
// channel order and poisons the buffers afterwards.
func (e *Engine) dispatch(c Cycle) {
	if c.Depth != nil && e.depth != nil {
		e.depthBuf = stage(e.depthBuf, c.Depth.Data)
		frame := *c.Depth
		frame.Data = e.depthBuf
		e.depth.hooks.fire(&frame)
		fill(e.depthBuf, PoisonDepth)
	}
	if c.Color != nil && e.color != nil {
		e.colorBuf = stage(e.colorBuf, c.Color.Data)
		frame := *c.Color
		frame.Data = e.colorBuf
		e.color.hooks.fire(&frame)
		fill(e.colorBuf, PoisonColor)
	}
	if c.User != nil && e.user != nil {
		e.maskBuf = stage(e.maskBuf, c.User.Data)
		frame := *c.User
		frame.Data = e.maskBuf
		e.user.hooks.fire(&frame)
		fill(e.maskBuf, PoisonMask)
	}
	if c.Skeleton != nil && e.skeleton != nil {
		e.skeleton.hooks.fire(c.Skeleton)
	}
	if c.Hands != nil && e.hand != nil {
		e.hand.hooks.fire(c.Hands)
	}
	if c.Gestures != nil && e.gesture != nil {
		e.gesture.hooks.fire(c.Gestures)
	}
	if c.Issues != nil {
		e.issues.fire(c.Issues)
	}
	e.instances = c.Instances
}

// stage copies src into buf, growing buf only when it is too small.
func stage[T any](buf, src []T) []T {
	if cap(buf) < len(src) {
		buf = make([]T, len(src))
	}
	buf = buf[:len(src)]
	copy(buf, src)
	return buf
}

func fill[T any](buf []T, v T) {
	for i := range buf {
		buf[i] = v
	}
}

// InstancesJSON returns the instances document of the last cycle.
func (e *Engine) InstancesJSON() (string, error) {
	if !e.running {
		return "", engine.NewFault(engine.ExceptionModuleNotStarted, "instances before run")
	}
	return e.instances, nil
}

// ConnectOnIssuesUpdate connects an engine-level issues hook.
func (e *Engine) ConnectOnIssuesUpdate(hook func(*engine.IssuesData)) engine.HandlerID {
	id := e.allocID()
	e.issues.add(id, hook)
	return id
}

// DisconnectOnIssuesUpdate removes an issues hook.
func (e *Engine) DisconnectOnIssuesUpdate(id engine.HandlerID) {
	e.issues.remove(id)
}

// IssueHooks is the number of connected issue hooks.
func (e *Engine) IssueHooks() int { return e.issues.len() }

func (e *Engine) allocID() engine.HandlerID {
	e.nextID++
	return e.nextID
}

var _ engine.Engine = (*Engine)(nil)
