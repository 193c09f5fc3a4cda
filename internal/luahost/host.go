// Package luahost exposes a bridge to Lua scripts.
//
// Scripts see a global `bridge` table:
//
//	bridge.init([config_path])
//	bridge.update()
//	bridge.release()
//	bridge.on_skeleton(function(snapshot) ... end)  -- and on_depth, on_color,
//	                                                -- on_user, on_hands,
//	                                                -- on_gesture, on_issue,
//	                                                -- on_face
//	bridge.output_modes() -> {depth = {width, height}, color = {...}}
//	bridge.stats() -> {cycles, engine_errors, license_errors, channels = {...}}
//
// Bridge errors raise Lua errors carrying the bridge error text, so scripts
// catch them with pcall. Callbacks run synchronously inside bridge.update; an
// error raised by a callback is re-raised from that update call.
package luahost

import (
	"fmt"
	"log/slog"

	"github.com/Shopify/go-lua"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
)

const callbackKeyPrefix = "sensorbridge.callback."

// Host owns one Lua state bound to one tracker. Like the tracker, it must be
// used from a single goroutine.
type Host struct {
	state   *lua.State
	tracker sensorbridge.Tracker

	// first callback error since the last update
	callbackErr error
}

// New creates a Lua state with the standard libraries and the bridge table.
func New(tracker sensorbridge.Tracker) *Host {
	h := &Host{
		state:   lua.NewState(),
		tracker: tracker,
	}
	lua.OpenLibraries(h.state)
	h.register()
	return h
}

// State exposes the underlying Lua state.
func (h *Host) State() *lua.State { return h.state }

// DoString runs a chunk of Lua source.
func (h *Host) DoString(src string) error {
	if err := lua.DoString(h.state, src); err != nil {
		return fmt.Errorf("luahost: run script: %w", err)
	}
	return nil
}

// DoFile runs the Lua script at path.
func (h *Host) DoFile(path string) error {
	if err := lua.DoFile(h.state, path); err != nil {
		return fmt.Errorf("luahost: run %s: %w", path, err)
	}
	return nil
}

// TakeCallbackError returns and clears the first error raised by a Lua
// callback. Hosts that drive Update from Go check it after each cycle.
func (h *Host) TakeCallbackError() error {
	err := h.callbackErr
	h.callbackErr = nil
	return err
}

func (h *Host) register() {
	l := h.state
	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "init", Function: h.luaInit},
		{Name: "update", Function: h.luaUpdate},
		{Name: "release", Function: h.luaRelease},
		{Name: "output_modes", Function: h.luaOutputModes},
		{Name: "stats", Function: h.luaStats},
		{Name: "on_depth", Function: h.subscribe(sensorbridge.ChannelDepth)},
		{Name: "on_color", Function: h.subscribe(sensorbridge.ChannelColor)},
		{Name: "on_user", Function: h.subscribe(sensorbridge.ChannelUserMask)},
		{Name: "on_skeleton", Function: h.subscribe(sensorbridge.ChannelSkeleton)},
		{Name: "on_hands", Function: h.subscribe(sensorbridge.ChannelHand)},
		{Name: "on_gesture", Function: h.subscribe(sensorbridge.ChannelGesture)},
		{Name: "on_issue", Function: h.subscribe(sensorbridge.ChannelIssue)},
		{Name: "on_face", Function: h.subscribe(sensorbridge.ChannelFace)},
	}, 0)
	l.SetGlobal("bridge")
}

func (h *Host) luaInit(l *lua.State) int {
	path := lua.OptString(l, 1, "")
	if err := h.tracker.Init(path); err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	return 0
}

func (h *Host) luaUpdate(l *lua.State) int {
	h.callbackErr = nil
	if err := h.tracker.Update(); err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	if err := h.TakeCallbackError(); err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	return 0
}

func (h *Host) luaRelease(l *lua.State) int {
	if err := h.tracker.Release(); err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	return 0
}

func (h *Host) luaOutputModes(l *lua.State) int {
	pushOutputModes(l, h.tracker.OutputModes())
	return 1
}

func (h *Host) luaStats(l *lua.State) int {
	pushStats(l, h.tracker.Stats())
	return 1
}

// subscribe returns the on_<channel> function: a Lua function registers the
// callback, nil clears it.
func (h *Host) subscribe(ch sensorbridge.Channel) lua.Function {
	key := callbackKeyPrefix + ch.String()
	return func(l *lua.State) int {
		if l.IsNoneOrNil(1) {
			l.PushNil()
			l.SetField(lua.RegistryIndex, key)
			h.setCallback(ch, false)
			return 0
		}
		lua.CheckType(l, 1, lua.TypeFunction)
		l.PushValue(1)
		l.SetField(lua.RegistryIndex, key)
		h.setCallback(ch, true)
		return 0
	}
}

func (h *Host) setCallback(ch sensorbridge.Channel, on bool) {
	t := h.tracker
	switch ch {
	case sensorbridge.ChannelDepth:
		t.SetDepthCallback(callbackOf(on, h, ch, pushPixels))
	case sensorbridge.ChannelColor:
		t.SetColorCallback(callbackOf(on, h, ch, pushPixels))
	case sensorbridge.ChannelUserMask:
		t.SetUserCallback(callbackOf(on, h, ch, pushPixels))
	case sensorbridge.ChannelSkeleton:
		t.SetSkeletonCallback(callbackOf(on, h, ch, pushSkeletons))
	case sensorbridge.ChannelHand:
		t.SetHandsCallback(callbackOf(on, h, ch, pushHands))
	case sensorbridge.ChannelGesture:
		t.SetGestureCallback(callbackOf(on, h, ch, pushGestures))
	case sensorbridge.ChannelIssue:
		t.SetIssueCallback(callbackOf(on, h, ch, pushIssues))
	case sensorbridge.ChannelFace:
		t.SetFaceCallback(callbackOf(on, h, ch, pushFaces))
	}
}

// callbackOf adapts a Lua callback stored in the registry to a typed bridge
// callback. It returns nil when on is false, which clears the bridge slot.
func callbackOf[T any](on bool, h *Host, ch sensorbridge.Channel, push func(*lua.State, T)) func(T) {
	if !on {
		return nil
	}
	key := callbackKeyPrefix + ch.String()
	return func(v T) {
		l := h.state
		top := l.Top()
		defer l.SetTop(top)

		l.Field(lua.RegistryIndex, key)
		if !l.IsFunction(-1) {
			return
		}
		push(l, v)
		if err := l.ProtectedCall(1, 0, 0); err != nil {
			slog.Warn("sensor-bridge: lua callback failed",
				"channel", ch.String(),
				"error", err,
			)
			if h.callbackErr == nil {
				h.callbackErr = fmt.Errorf("luahost: %s callback: %w", ch, err)
			}
		}
	}
}
