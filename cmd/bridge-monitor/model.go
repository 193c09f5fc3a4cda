package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/backoff"
)

// maxEvents is the number of gesture and issue lines kept on screen.
const maxEvents = 8

// runState represents the monitor state machine.
type runState int

const (
	stateStarting runState = iota
	stateRunning
	statePaused
	stateStopped
)

// userView is the last known state of one tracked user.
type userView struct {
	id       int
	head     sensorbridge.Joint
	torso    sensorbridge.Joint
	left     bool
	right    bool
	face     string
	lastSeen uint64
}

// collector receives bridge callbacks. Only the update command touches it,
// and commands are chained, so it is never used concurrently.
type collector struct {
	frame cycleFrame
}

func (c *collector) take() cycleFrame {
	f := c.frame
	c.frame = cycleFrame{}
	return f
}

func (c *collector) subscribe(b *sensorbridge.Bridge) {
	b.SetSkeletonCallback(func(s sensorbridge.SkeletonSnapshot) { c.frame.skeletons = &s })
	b.SetHandsCallback(func(s sensorbridge.HandSnapshot) { c.frame.hands = &s })
	b.SetFaceCallback(func(s sensorbridge.FaceSnapshot) { c.frame.faces = &s })
	b.SetGestureCallback(func(g sensorbridge.GestureBatch) { c.frame.gestures = g })
	b.SetIssueCallback(func(i sensorbridge.IssueBatch) { c.frame.issues = i })
	b.SetDepthCallback(func(p sensorbridge.PixelBuffer) {
		if p.Rows > 0 && p.Cols > 0 {
			c.frame.depthMid = p.Uint16At(p.Rows/2, p.Cols/2)
			c.frame.hasDepth = true
		}
	})
}

// monitorModel is the root bubbletea model.
type monitorModel struct {
	bridge     *sensorbridge.Bridge
	col        *collector
	configPath string
	retry      backoff.Config

	state     runState
	modes     sensorbridge.OutputModes
	cycle     uint64
	users     map[int]*userView
	events    []string
	depthMid  uint16
	failures  int
	lastErr   error
	lastCycle time.Duration
	width     int
}

func newMonitorModel(bridge *sensorbridge.Bridge, configPath string, retry backoff.Config) monitorModel {
	col := &collector{}
	col.subscribe(bridge)
	return monitorModel{
		bridge:     bridge,
		col:        col,
		configPath: configPath,
		retry:      retry,
		users:      map[int]*userView{},
		width:      80,
	}
}

func (m monitorModel) Init() tea.Cmd {
	bridge, path := m.bridge, m.configPath
	return func() tea.Msg {
		err := bridge.Init(path)
		return initMsg{err: err, modes: bridge.OutputModes()}
	}
}

// updateCmd runs one Update and returns what the callbacks collected.
func (m monitorModel) updateCmd() tea.Cmd {
	bridge, col := m.bridge, m.col
	return func() tea.Msg {
		start := time.Now()
		err := bridge.Update()
		return cycleMsg{err: err, duration: time.Since(start), frame: col.take()}
	}
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case initMsg:
		if msg.err != nil {
			m.state = stateStopped
			m.lastErr = msg.err
			return m, nil
		}
		m.state = stateRunning
		m.modes = msg.modes
		return m, m.updateCmd()

	case resumeMsg:
		if m.state != stateRunning {
			return m, nil
		}
		return m, m.updateCmd()

	case cycleMsg:
		return m.handleCycle(msg)
	}
	return m, nil
}

func (m monitorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.state == stateRunning || m.state == statePaused {
			_ = m.bridge.Release()
		}
		m.state = stateStopped
		return m, tea.Quit
	case "p", " ":
		switch m.state {
		case stateRunning:
			m.state = statePaused
		case statePaused:
			m.state = stateRunning
			return m, func() tea.Msg { return resumeMsg{} }
		}
	}
	return m, nil
}

func (m monitorModel) handleCycle(msg cycleMsg) (tea.Model, tea.Cmd) {
	if m.state == stateStopped {
		return m, nil
	}
	m.lastCycle = msg.duration

	switch {
	case msg.err == nil:
		m.failures = 0
		m.cycle++
		m.apply(msg.frame)
	case errors.Is(msg.err, sensorbridge.ErrEngine):
		m.failures++
		m.lastErr = msg.err
		if m.failures > m.retry.MaxRetries {
			m.state = stateStopped
			return m, nil
		}
		delay := backoff.Delay(m.failures, m.retry)
		return m, tea.Tick(delay, func(time.Time) tea.Msg { return resumeMsg{} })
	default:
		// License and lifecycle errors do not go away by retrying.
		m.lastErr = msg.err
		m.state = stateStopped
		return m, nil
	}

	if m.state == statePaused {
		return m, nil
	}
	return m, m.updateCmd()
}

// apply folds one cycle into the per-user view.
func (m *monitorModel) apply(f cycleFrame) {
	if f.hasDepth {
		m.depthMid = f.depthMid
	}
	if f.skeletons != nil {
		seen := map[int]bool{}
		for _, sk := range f.skeletons.Skeletons {
			u := m.user(sk.UserID)
			u.head, _ = sk.Joint(engine.JointHead)
			u.torso, _ = sk.Joint(engine.JointTorso)
			u.lastSeen = m.cycle
			seen[sk.UserID] = true
		}
		for id := range m.users {
			if !seen[id] {
				delete(m.users, id)
			}
		}
	}
	if f.hands != nil {
		for _, uh := range f.hands.Hands {
			if u, ok := m.users[uh.UserID]; ok {
				u.left, u.right = uh.Left != nil, uh.Right != nil
			}
		}
	}
	if f.faces != nil {
		for _, face := range f.faces.Faces {
			if u, ok := m.users[face.UserID]; ok {
				u.face = fmt.Sprintf("%s, %s", face.Gender, face.Age.Type)
			}
		}
	}
	for _, g := range f.gestures {
		m.pushEvent(fmt.Sprintf("#%d gesture %s (user %d)", m.cycle, g.Type, g.UserID))
	}
	for _, issue := range f.issues {
		switch v := issue.(type) {
		case sensorbridge.FrameBorderIssue:
			m.pushEvent(fmt.Sprintf("#%d frame border user %d (left=%v right=%v top=%v)", m.cycle, v.UserID, v.Left, v.Right, v.Top))
		case sensorbridge.OcclusionIssue:
			m.pushEvent(fmt.Sprintf("#%d occlusion user %d", m.cycle, v.UserID))
		}
	}
}

func (m *monitorModel) user(id int) *userView {
	u, ok := m.users[id]
	if !ok {
		u = &userView{id: id}
		m.users[id] = u
	}
	return u
}

func (m *monitorModel) pushEvent(line string) {
	m.events = append(m.events, line)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

func (m monitorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sensor-bridge monitor"))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	st := m.bridge.Stats()
	cs := m.bridge.CycleStats()

	var summary strings.Builder
	fmt.Fprintf(&summary, "%s %s\n", headerStyle.Render("session"), dimStyle.Render(st.SessionID))
	fmt.Fprintf(&summary, "depth %s  color %s\n", m.modes.Depth, m.modes.Color)
	fmt.Fprintf(&summary, "cycles %d  rate %.1f Hz  update %.2f ms (p95 %.2f)\n", st.Cycles, cs.RateMean, cs.UpdateMeanMS, cs.UpdateP95MS)
	fmt.Fprintf(&summary, "engine errors %d  license errors %d  depth@center %d mm", st.EngineErrors, st.LicenseErrors, m.depthMid)
	b.WriteString(panelStyle.Render(summary.String()))
	b.WriteString("\n")

	var channels strings.Builder
	fmt.Fprintf(&channels, "%s\n", headerStyle.Render(fmt.Sprintf("%-10s %10s %10s %10s", "channel", "dispatched", "skipped", "MB copied")))
	for _, ch := range sensorbridge.Channels() {
		c := st.Channel(ch)
		fmt.Fprintf(&channels, "%-10s %10d %10d %10.2f\n", ch, c.Dispatched, c.Skipped, float64(c.BytesCopied)/1024/1024)
	}
	b.WriteString(panelStyle.Render(strings.TrimRight(channels.String(), "\n")))
	b.WriteString("\n")

	var users strings.Builder
	users.WriteString(headerStyle.Render("users"))
	if len(m.users) == 0 {
		users.WriteString("\n" + dimStyle.Render("no users tracked"))
	}
	ids := make([]int, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		u := m.users[id]
		fmt.Fprintf(&users, "\nuser %d  head (%.0f, %.0f) %.0f mm  torso (%.0f, %.0f)  hands %s  %s",
			u.id,
			u.head.Projection.X(), u.head.Projection.Y(), u.head.Projection.Z(),
			u.torso.Projection.X(), u.torso.Projection.Y(),
			handsLabel(u.left, u.right),
			u.face,
		)
	}
	b.WriteString(panelStyle.Render(users.String()))
	b.WriteString("\n")

	if len(m.events) > 0 {
		b.WriteString(panelStyle.Render(headerStyle.Render("events") + "\n" + strings.Join(m.events, "\n")))
		b.WriteString("\n")
	}

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("error: " + m.lastErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("p pause · q quit"))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
}

func (m monitorModel) statusLine() string {
	switch m.state {
	case stateStarting:
		return dimStyle.Render("starting")
	case stateRunning:
		if m.failures > 0 {
			return warnStyle.Render(fmt.Sprintf("retrying (%d/%d)", m.failures, m.retry.MaxRetries))
		}
		return okStyle.Render("running")
	case statePaused:
		return warnStyle.Render("paused")
	default:
		return errorStyle.Render("stopped")
	}
}

func handsLabel(left, right bool) string {
	switch {
	case left && right:
		return "L R"
	case left:
		return "L -"
	case right:
		return "- R"
	default:
		return "- -"
	}
}
