package sim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
)

// Scene describes what the simulated sensor sees. It is loaded from the
// configuration path given to Init.
type Scene struct {
	Depth Mode `yaml:"depth"`
	Color Mode `yaml:"color"`

	// Realtime paces WaitUpdate at the depth FPS instead of returning
	// immediately.
	Realtime bool `yaml:"realtime"`

	// BackgroundMM is the depth of empty pixels.
	BackgroundMM uint16 `yaml:"background_mm"`

	Users  []User  `yaml:"users"`
	Events []Event `yaml:"events"`
	Faults Faults  `yaml:"faults"`

	// Replay is a msgpack skeleton recording. Relative paths resolve
	// against the scene file. When set, skeletons come from the recording
	// instead of Users.
	Replay string `yaml:"replay"`
}

// Mode is a sensor resolution.
type Mode struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    int     `yaml:"fps"`
	HFOV   float32 `yaml:"hfov"`
}

// User is one simulated person.
type User struct {
	ID int `yaml:"id"`
	// Position is the torso position in millimeters (x right, y up, z away
	// from the sensor).
	Position [3]float32 `yaml:"position"`
	Sway     Sway       `yaml:"sway"`
	Hands    bool       `yaml:"hands"`
	Face     *Face      `yaml:"face"`
	// EnterAt and LeaveAt bound the cycles in which the user is visible.
	// LeaveAt 0 means forever.
	EnterAt uint64 `yaml:"enter_at"`
	LeaveAt uint64 `yaml:"leave_at"`
}

// Sway is a sideways sinusoidal motion.
type Sway struct {
	AmplitudeMM float32 `yaml:"amplitude_mm"`
	Period      int     `yaml:"period"` // cycles
}

// Face is the face data reported for a user.
type Face struct {
	Gender  string  `yaml:"gender"`
	AgeType string  `yaml:"age_type"`
	Age     float32 `yaml:"age"`
}

// Event fires at one cycle.
type Event struct {
	Cycle   uint64        `yaml:"cycle"`
	Gesture *GestureEvent `yaml:"gesture"`
	Issue   *IssueEvent   `yaml:"issue"`
}

// GestureEvent is a scripted gesture.
type GestureEvent struct {
	User int    `yaml:"user"`
	Type string `yaml:"type"`
}

// IssueEvent is a scripted tracking issue.
type IssueEvent struct {
	User        int      `yaml:"user"`
	FrameBorder []string `yaml:"frame_border"` // left, right, top
	Occlusion   bool     `yaml:"occlusion"`
}

// Faults injects engine failures by exception name (see ParseExceptionType).
type Faults struct {
	Init         string      `yaml:"init"`
	Run          string      `yaml:"run"`
	LicenseAfter uint64      `yaml:"license_after"` // 0 disables
	Wait         []WaitFault `yaml:"wait"`
}

// WaitFault fails the WaitUpdate of one cycle.
type WaitFault struct {
	Cycle uint64 `yaml:"cycle"`
	Type  string `yaml:"type"`
}

// DefaultScene is one user standing 2.5 m in front of a VGA sensor.
func DefaultScene() Scene {
	return Scene{
		Depth:        Mode{Width: 640, Height: 480, FPS: 30, HFOV: 1.0123},
		Color:        Mode{Width: 640, Height: 480, FPS: 30, HFOV: 1.0123},
		BackgroundMM: 4000,
		Users: []User{{
			ID:       1,
			Position: [3]float32{0, 0, 2500},
			Sway:     Sway{AmplitudeMM: 80, Period: 90},
			Hands:    true,
			Face:     &Face{Gender: "female", AgeType: "adult", Age: 31},
		}},
	}
}

// LoadScene reads a YAML scene and fills defaults.
func LoadScene(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("sim: read scene: %w", err)
	}

	scene := DefaultScene()
	scene.Users = nil
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return Scene{}, fmt.Errorf("sim: parse scene: %w", err)
	}
	if scene.Replay != "" && !filepath.IsAbs(scene.Replay) {
		scene.Replay = filepath.Join(filepath.Dir(path), scene.Replay)
	}
	if err := scene.Validate(); err != nil {
		return Scene{}, err
	}
	return scene, nil
}

// Validate checks the scene and fills zero values with defaults.
func (s *Scene) Validate() error {
	def := DefaultScene()
	fill := func(m *Mode, d Mode) {
		if m.Width == 0 {
			m.Width = d.Width
		}
		if m.Height == 0 {
			m.Height = d.Height
		}
		if m.FPS == 0 {
			m.FPS = d.FPS
		}
		if m.HFOV == 0 {
			m.HFOV = d.HFOV
		}
	}
	fill(&s.Depth, def.Depth)
	fill(&s.Color, def.Color)
	if s.BackgroundMM == 0 {
		s.BackgroundMM = def.BackgroundMM
	}

	if s.Depth.Width < 0 || s.Depth.Height < 0 || s.Color.Width < 0 || s.Color.Height < 0 {
		return errors.New("sim: resolution must be positive")
	}
	if s.Depth.FPS < 0 || s.Depth.FPS > 120 {
		return fmt.Errorf("sim: depth fps must be in [1, 120], got %d", s.Depth.FPS)
	}

	seen := make(map[int]bool, len(s.Users))
	for _, u := range s.Users {
		if u.ID < 1 || u.ID >= maxUserID {
			return fmt.Errorf("sim: user id must be in [1, %d), got %d", maxUserID, u.ID)
		}
		if seen[u.ID] {
			return fmt.Errorf("sim: duplicate user id %d", u.ID)
		}
		seen[u.ID] = true
		if u.Position[2] <= 0 {
			return fmt.Errorf("sim: user %d must be in front of the sensor (z > 0)", u.ID)
		}
	}

	for _, ev := range s.Events {
		if ev.Gesture != nil {
			if _, ok := engine.ParseGestureType(ev.Gesture.Type); !ok {
				return fmt.Errorf("sim: unknown gesture %q at cycle %d", ev.Gesture.Type, ev.Cycle)
			}
		}
		if ev.Issue != nil {
			for _, side := range ev.Issue.FrameBorder {
				if side != "left" && side != "right" && side != "top" {
					return fmt.Errorf("sim: unknown frame border %q at cycle %d", side, ev.Cycle)
				}
			}
		}
	}

	for _, name := range []string{s.Faults.Init, s.Faults.Run} {
		if name == "" {
			continue
		}
		if _, ok := ParseExceptionType(name); !ok {
			return fmt.Errorf("sim: unknown exception type %q", name)
		}
	}
	for _, wf := range s.Faults.Wait {
		if _, ok := ParseExceptionType(wf.Type); !ok {
			return fmt.Errorf("sim: unknown exception type %q at cycle %d", wf.Type, wf.Cycle)
		}
	}
	return nil
}

// maxUserID bounds user ids so issue slots and mask values stay small.
const maxUserID = 8

var exceptionNames = map[string]engine.ExceptionType{
	"generic":                engine.ExceptionGeneric,
	"terminated":             engine.ExceptionTerminated,
	"bad_config_value":       engine.ExceptionBadConfigValue,
	"config_not_found":       engine.ExceptionConfigNotFound,
	"module_not_found":       engine.ExceptionModuleNotFound,
	"license_not_acquired":   engine.ExceptionLicenseNotAcquired,
	"module_not_initialized": engine.ExceptionModuleNotInitialized,
	"module_not_started":     engine.ExceptionModuleNotStarted,
}

// ParseExceptionType maps a snake_case exception name to its type.
func ParseExceptionType(name string) (engine.ExceptionType, bool) {
	t, ok := exceptionNames[name]
	return t, ok
}
