package luahost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine/sim"
)

func newHost(t *testing.T) (*Host, *sensorbridge.Bridge, *sim.Engine) {
	t.Helper()
	eng := sim.New()
	b := sensorbridge.New(eng)
	t.Cleanup(func() {
		if b.State() == sensorbridge.StateRunning {
			_ = b.Release()
		}
	})
	return New(b), b, eng
}

func globalNumber(t *testing.T, h *Host, name string) float64 {
	t.Helper()
	l := h.State()
	l.Global(name)
	defer l.Pop(1)
	v, ok := l.ToNumber(-1)
	require.True(t, ok, "global %s is not a number", name)
	return v
}

func globalString(t *testing.T, h *Host, name string) string {
	t.Helper()
	l := h.State()
	l.Global(name)
	defer l.Pop(1)
	v, ok := l.ToString(-1)
	require.True(t, ok, "global %s is not a string", name)
	return v
}

func TestHost_Lifecycle(t *testing.T) {
	h, b, _ := newHost(t)

	err := h.DoString(`
skeletons = 0
bridge.on_skeleton(function(s)
  skeletons = skeletons + 1
  user_id = s.skeletons[1].user_id
  head_type = s.skeletons[1].joints.head.type
  head_x = s.skeletons[1].joints.head.proj.x
end)
bridge.on_depth(function(d)
  depth_bytes = d.bytes
  depth_center = d.center
end)

bridge.init()
local modes = bridge.output_modes()
color_width = modes.color.width
bridge.update()
bridge.update()
local st = bridge.stats()
cycles = st.cycles
skeleton_dispatched = st.channels.skeleton.dispatched
bridge.release()
`)
	require.NoError(t, err)

	assert.Equal(t, 2.0, globalNumber(t, h, "skeletons"))
	assert.Equal(t, 1.0, globalNumber(t, h, "user_id"))
	assert.Equal(t, "head", globalString(t, h, "head_type"))
	assert.InDelta(t, 320.0, globalNumber(t, h, "head_x"), 60.0)
	assert.Equal(t, 640.0*480*2, globalNumber(t, h, "depth_bytes"))
	assert.Greater(t, globalNumber(t, h, "depth_center"), 0.0)
	assert.Equal(t, 640.0, globalNumber(t, h, "color_width"))
	assert.Equal(t, 2.0, globalNumber(t, h, "cycles"))
	assert.Equal(t, 2.0, globalNumber(t, h, "skeleton_dispatched"))
	assert.Equal(t, sensorbridge.StateReleased, b.State())
}

func TestHost_ErrorsRaise(t *testing.T) {
	h, _, eng := newHost(t)

	err := h.DoString(`bridge.update()`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bridge is not running")

	require.NoError(t, h.DoString(`
bridge.init()
local ok, err = pcall(bridge.update)
first_ok = ok
`))
	assert.Equal(t, 1.0, boolNumber(t, h, "first_ok"))

	eng.RevokeLicense(true)
	require.NoError(t, h.DoString(`
local ok, err = pcall(bridge.update)
license_ok = ok
license_err = err
`))
	assert.Equal(t, 0.0, boolNumber(t, h, "license_ok"))
	assert.Contains(t, globalString(t, h, "license_err"), "License not acquired")
}

// boolNumber reads a boolean global as 1 or 0.
func boolNumber(t *testing.T, h *Host, name string) float64 {
	t.Helper()
	l := h.State()
	l.Global(name)
	defer l.Pop(1)
	if l.ToBoolean(-1) {
		return 1
	}
	return 0
}

func TestHost_CallbackError(t *testing.T) {
	h, _, eng := newHost(t)
	require.NoError(t, h.DoString(`
bridge.on_gesture(function(g) error("boom on " .. g[1].type) end)
bridge.init()
`))

	eng.Enqueue(sim.Cycle{Gestures: &engine.GestureData{Gestures: []engine.Gesture{{UserID: 1, Type: engine.GestureSwipeLeft}}}})
	err := h.DoString(`bridge.update()`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom on swipe_left")

	// The next cycle has no gesture and succeeds.
	eng.Enqueue(sim.Cycle{})
	assert.NoError(t, h.DoString(`bridge.update()`))
}

func TestHost_GoDrivenUpdate(t *testing.T) {
	h, b, eng := newHost(t)
	require.NoError(t, h.DoString(`
issues = {}
bridge.on_issue(function(batch)
  for _, issue in ipairs(batch) do
    issues[#issues + 1] = issue
  end
end)
`))
	require.NoError(t, b.Init(""))

	eng.Enqueue(sim.Cycle{Issues: &engine.IssuesData{
		FrameBorder: map[int]engine.FrameBorderIssue{3: {Left: true}},
		Occlusion:   map[int]engine.OcclusionIssue{5: {}},
	}})
	require.NoError(t, b.Update())
	require.NoError(t, h.TakeCallbackError())

	require.NoError(t, h.DoString(`
issue_count = #issues
first_kind = issues[1].kind
first_user = issues[1].user_id
first_left = issues[1].left and 1 or 0
second_kind = issues[2].kind
second_user = issues[2].user_id
`))
	assert.Equal(t, 2.0, globalNumber(t, h, "issue_count"))
	assert.Equal(t, "frame_border", globalString(t, h, "first_kind"))
	assert.Equal(t, 3.0, globalNumber(t, h, "first_user"))
	assert.Equal(t, 1.0, globalNumber(t, h, "first_left"))
	assert.Equal(t, "occlusion", globalString(t, h, "second_kind"))
	assert.Equal(t, 5.0, globalNumber(t, h, "second_user"))
}

func TestHost_JointOrientation(t *testing.T) {
	h, b, eng := newHost(t)
	require.NoError(t, h.DoString(`
orientation = nil
bridge.on_skeleton(function(s)
  orientation = s.skeletons[1].joints.head.orientation
end)
`))
	require.NoError(t, b.Init(""))

	joints := make([]engine.Joint, engine.JointTypeCount)
	joints[engine.JointHead] = engine.Joint{
		Type:        engine.JointHead,
		Confidence:  0.9,
		Orientation: [9]float32{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}
	eng.Enqueue(sim.Cycle{Skeleton: &engine.SkeletonData{
		Skeletons: []engine.Skeleton{{ID: 1, Joints: joints}},
	}})
	require.NoError(t, b.Update())
	require.NoError(t, h.TakeCallbackError())

	require.NoError(t, h.DoString(`
orientation_len = #orientation
m12 = orientation[2]
m21 = orientation[4]
m33 = orientation[9]
`))
	assert.Equal(t, 9.0, globalNumber(t, h, "orientation_len"))
	assert.Equal(t, 2.0, globalNumber(t, h, "m12"), "row-major order")
	assert.Equal(t, 4.0, globalNumber(t, h, "m21"))
	assert.Equal(t, 9.0, globalNumber(t, h, "m33"))
}

func TestHost_ClearCallback(t *testing.T) {
	h, b, _ := newHost(t)
	require.NoError(t, h.DoString(`
calls = 0
bridge.on_face(function() calls = calls + 1 end)
bridge.init()
bridge.update()
bridge.on_face(nil)
bridge.update()
`))

	assert.Equal(t, 1.0, globalNumber(t, h, "calls"))
	st := b.Stats().Channel(sensorbridge.ChannelFace)
	assert.Equal(t, uint64(1), st.Dispatched)
	assert.Equal(t, uint64(1), st.Skipped)
}

func TestHost_RejectsNonFunction(t *testing.T) {
	h, _, _ := newHost(t)
	err := h.DoString(`bridge.on_hands(42)`)
	assert.Error(t, err)
}
