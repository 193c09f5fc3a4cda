package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine/sim"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/backoff"
)

var testRetry = backoff.Config{MaxRetries: 2, RetryDelay: time.Millisecond, MaxRetryDelay: 5 * time.Millisecond}

// step feeds msg to the model and runs the returned command once.
func step(t *testing.T, m tea.Model, msg tea.Msg) (tea.Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	if cmd == nil {
		return next, nil
	}
	return next, cmd()
}

func started(t *testing.T, eng *sim.Engine) (monitorModel, *sensorbridge.Bridge, tea.Msg) {
	t.Helper()
	b := sensorbridge.New(eng)
	m := newMonitorModel(b, "", testRetry)
	t.Cleanup(func() {
		if b.State() == sensorbridge.StateRunning {
			_ = b.Release()
		}
	})

	msg := m.Init()()
	require.IsType(t, initMsg{}, msg)
	require.NoError(t, msg.(initMsg).err)

	next, cycle := step(t, m, msg)
	require.IsType(t, cycleMsg{}, cycle)
	return next.(monitorModel), b, cycle
}

func TestMonitor_RendersChannelsAndUsers(t *testing.T) {
	m, b, msg := started(t, sim.New())

	next, _ := m.Update(msg)
	view := next.View()

	for _, ch := range sensorbridge.Channels() {
		assert.Contains(t, view, ch.String())
	}
	assert.Contains(t, view, "user 1")
	assert.Contains(t, view, "running")
	assert.Contains(t, view, "640x480")
	assert.Equal(t, uint64(1), b.Stats().Cycles)
}

func TestMonitor_ChainsUpdates(t *testing.T) {
	var model tea.Model
	m, b, msg := started(t, sim.New())
	model = m
	// started already ran the first Update.
	base := b.Stats().Cycles
	require.Equal(t, uint64(1), base)

	for i := 0; i < 3; i++ {
		model, msg = step(t, model, msg)
		require.IsType(t, cycleMsg{}, msg)
	}
	assert.Equal(t, base+3, b.Stats().Cycles)
	// The model has applied three cycles; the fourth result is still in msg.
	assert.Equal(t, uint64(3), model.(monitorModel).cycle)
}

func TestMonitor_Pause(t *testing.T) {
	m, _, msg := started(t, sim.New())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.Equal(t, statePaused, next.(monitorModel).state)

	// The in-flight cycle lands but no new one is scheduled.
	next, cmd := next.Update(msg)
	assert.Nil(t, cmd)
	assert.Contains(t, next.View(), "paused")

	next, resume := step(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.Equal(t, stateRunning, next.(monitorModel).state)
	assert.IsType(t, resumeMsg{}, resume)
}

func TestMonitor_Quit(t *testing.T) {
	m, b, _ := started(t, sim.New())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, stateStopped, next.(monitorModel).state)
	assert.Equal(t, sensorbridge.StateReleased, b.State())
}

func TestMonitor_LicenseStops(t *testing.T) {
	eng := sim.New()
	m, b, _ := started(t, eng)
	eng.RevokeLicense(true)

	next, msg := step(t, m, cycleMsg{})
	require.IsType(t, cycleMsg{}, msg)

	next, cmd := next.Update(msg)
	assert.Nil(t, cmd)
	assert.Equal(t, stateStopped, next.(monitorModel).state)
	assert.Contains(t, next.View(), "License")
	assert.Equal(t, uint64(1), b.Stats().LicenseErrors)
}

func TestMonitor_EngineErrorRetries(t *testing.T) {
	eng := sim.New()
	m, _, msg := started(t, eng)
	eng.FailNextWaits(engine.NewFault(engine.ExceptionTerminated, "transient"))

	next, failed := step(t, m, msg)
	require.IsType(t, cycleMsg{}, failed)
	require.ErrorIs(t, failed.(cycleMsg).err, sensorbridge.ErrEngine)

	// The retry is scheduled through a tick that yields resumeMsg.
	next, resume := step(t, next, failed)
	assert.IsType(t, resumeMsg{}, resume)
	assert.Contains(t, next.View(), "retrying (1/2)")

	_, ok := step(t, next, resume)
	require.IsType(t, cycleMsg{}, ok)
	assert.NoError(t, ok.(cycleMsg).err)
}

func TestMonitor_InitFailure(t *testing.T) {
	eng := sim.New()
	eng.FailInit(engine.NewFault(engine.ExceptionBadConfigValue, "bad value"))
	m := newMonitorModel(sensorbridge.New(eng), "", testRetry)

	next, cmd := m.Update(m.Init()())
	assert.Nil(t, cmd)
	assert.Equal(t, stateStopped, next.(monitorModel).state)
	assert.Contains(t, next.View(), "error:")
	assert.Contains(t, next.View(), "stopped")
}

func TestHandsLabel(t *testing.T) {
	assert.Equal(t, "L R", handsLabel(true, true))
	assert.Equal(t, "L -", handsLabel(true, false))
	assert.Equal(t, "- R", handsLabel(false, true))
	assert.Equal(t, "- -", handsLabel(false, false))
}
