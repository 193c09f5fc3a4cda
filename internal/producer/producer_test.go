package producer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine/sim"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/snapshot"
)

func initialized(t *testing.T) *sim.Engine {
	t.Helper()
	eng := sim.New()
	require.NoError(t, eng.Init(""))
	return eng
}

func fullSet(t *testing.T, eng *sim.Engine) *Set {
	t.Helper()
	var s Set

	depth, err := NewDepth(eng, func(*engine.DepthFrame) {})
	require.NoError(t, err)
	s.Add(depth)
	color, err := NewColor(eng, func(*engine.RGBFrame) {})
	require.NoError(t, err)
	s.Add(color)
	user, err := NewUser(eng, func(*engine.UserFrame) {})
	require.NoError(t, err)
	s.Add(user)
	skel, err := NewSkeleton(eng, func(*engine.SkeletonData) {})
	require.NoError(t, err)
	s.Add(skel)
	hand, err := NewHand(eng, func(*engine.HandTrackerData) {})
	require.NoError(t, err)
	s.Add(hand)
	gest, err := NewGesture(eng, func(*engine.GestureData) {})
	require.NoError(t, err)
	s.Add(gest)
	s.Add(NewIssue(eng, func(*engine.IssuesData) {}))
	return &s
}

func TestSet(t *testing.T) {
	eng := initialized(t)
	s := fullSet(t, eng)

	assert.Equal(t, 7, s.Len())
	assert.Nil(t, s.Get(snapshot.ChannelFace), "faces have no producer module")
	assert.Equal(t, snapshot.ChannelUserMask, s.Get(snapshot.ChannelUserMask).Channel())
	assert.Nil(t, s.Get(snapshot.ChannelIssue).Module())

	_, _, _, skel, _, _ := eng.Modules()
	assert.Equal(t, engine.Module(skel), s.Pacing())

	depth, color, ok := s.OutputModes()
	require.True(t, ok)
	assert.Equal(t, 640, depth.XRes)
	assert.Equal(t, 480, color.YRes)
}

func TestSet_DuplicatePanics(t *testing.T) {
	eng := initialized(t)
	var s Set
	s.Add(NewIssue(eng, func(*engine.IssuesData) {}))

	assert.PanicsWithValue(t, "producer: duplicate handle for channel issue", func() {
		s.Add(NewIssue(eng, func(*engine.IssuesData) {}))
	})
}

func TestSet_Close(t *testing.T) {
	eng := initialized(t)
	s := fullSet(t, eng)

	depth, color, user, skel, hand, gest := eng.Modules()
	for _, n := range []int{depth.Hooks(), color.Hooks(), user.Hooks(), skel.Hooks(), hand.Hooks(), gest.Hooks(), eng.IssueHooks()} {
		assert.Equal(t, 1, n)
	}

	s.Close()
	for _, n := range []int{depth.Hooks(), color.Hooks(), user.Hooks(), skel.Hooks(), hand.Hooks(), gest.Hooks(), eng.IssueHooks()} {
		assert.Zero(t, n)
	}
	assert.Zero(t, s.Len())
	assert.Nil(t, s.Pacing())

	_, _, ok := s.OutputModes()
	assert.False(t, ok)

	// Closing an empty set is a no-op.
	s.Close()
}

func TestSet_EmptyPacing(t *testing.T) {
	var s Set
	assert.Nil(t, s.Pacing())
	_, _, ok := s.OutputModes()
	assert.False(t, ok)
}

func TestHandles_CreateFault(t *testing.T) {
	eng := initialized(t)
	fault := engine.NewFault(engine.ExceptionModuleNotFound, "no hand model")
	eng.FailCreate(sim.NameHandTracker, fault)

	h, err := NewHand(eng, func(*engine.HandTrackerData) {})
	require.Error(t, err)
	assert.Nil(t, h)
	assert.Contains(t, err.Error(), "producer: create hand tracker")

	var f *engine.Fault
	require.True(t, errors.As(err, &f))
	assert.Equal(t, engine.ExceptionModuleNotFound, f.Type)
}

func TestHandles_CreateBeforeInit(t *testing.T) {
	eng := sim.New()
	_, err := NewSkeleton(eng, func(*engine.SkeletonData) {})
	require.Error(t, err)
	assert.Equal(t, engine.ExceptionModuleNotInitialized, engine.FaultType(err))
}

func TestHandles_HookReceivesFrames(t *testing.T) {
	eng := initialized(t)
	var frames []uint64
	depth, err := NewDepth(eng, func(f *engine.DepthFrame) { frames = append(frames, f.Timestamp) })
	require.NoError(t, err)
	skel, err := NewSkeleton(eng, func(*engine.SkeletonData) {})
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	eng.Enqueue(sim.Cycle{Depth: &engine.DepthFrame{Rows: 1, Cols: 1, Timestamp: 9, Data: []uint16{1}}})
	require.NoError(t, eng.WaitUpdate(skel.Module()))
	assert.Equal(t, []uint64{9}, frames)

	depth.Close()
	eng.Enqueue(sim.Cycle{Depth: &engine.DepthFrame{Rows: 1, Cols: 1, Timestamp: 10, Data: []uint16{1}}})
	require.NoError(t, eng.WaitUpdate(skel.Module()))
	assert.Equal(t, []uint64{9}, frames, "closed handle receives nothing")
}
