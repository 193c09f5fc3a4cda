package snapshot

import (
	"errors"
	"fmt"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
)

// ErrModesCaptured is returned when output modes are captured twice within
// one Init lifetime.
var ErrModesCaptured = errors.New("snapshot: output modes already captured")

// OutputMode is a negotiated channel resolution.
type OutputMode struct {
	Width  int
	Height int
}

func (m OutputMode) String() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// OutputModes holds the depth and color resolutions.
type OutputModes struct {
	Depth OutputMode
	Color OutputMode
}

// Denormalize scales a normalized projected coordinate into color image
// pixels.
func (m OutputModes) Denormalize(x, y float32) (float32, float32) {
	return x * float32(m.Color.Width), y * float32(m.Color.Height)
}

// ModeRegistry stores the output modes of one Init lifetime. It is written
// once and read-only afterwards.
type ModeRegistry struct {
	modes    OutputModes
	captured bool
}

// Capture records the modes negotiated by the depth and color sensors.
func (r *ModeRegistry) Capture(depth, color engine.OutputMode) error {
	if r.captured {
		return ErrModesCaptured
	}
	r.modes = OutputModes{
		Depth: OutputMode{Width: depth.XRes, Height: depth.YRes},
		Color: OutputMode{Width: color.XRes, Height: color.YRes},
	}
	r.captured = true
	return nil
}

// Modes returns the captured modes (zero before Capture).
func (r *ModeRegistry) Modes() OutputModes { return r.modes }

// Captured reports whether Capture has run.
func (r *ModeRegistry) Captured() bool { return r.captured }

// Reset forgets the captured modes; used on release.
func (r *ModeRegistry) Reset() {
	r.modes = OutputModes{}
	r.captured = false
}
