package main

import (
	"time"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
)

// cycleMsg is returned by the tea.Cmd that runs one bridge Update.
type cycleMsg struct {
	err      error
	duration time.Duration
	frame    cycleFrame
}

// initMsg is returned by the tea.Cmd that runs bridge Init.
type initMsg struct {
	err   error
	modes sensorbridge.OutputModes
}

// resumeMsg restarts the update chain after a pause or a retry delay.
type resumeMsg struct{}

// cycleFrame is what the callbacks saw during one Update. Nil fields mean
// the channel was not dispatched in that cycle.
type cycleFrame struct {
	skeletons *sensorbridge.SkeletonSnapshot
	hands     *sensorbridge.HandSnapshot
	faces     *sensorbridge.FaceSnapshot
	gestures  sensorbridge.GestureBatch
	issues    sensorbridge.IssueBatch
	depthMid  uint16
	hasDepth  bool
}
