package snapshot

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
)

// BuildHand converts one raw hand. A missing record or the engine's
// x == -1 sentinel means no hand and yields nil.
func BuildHand(raw *engine.Hand, modes OutputModes) *Hand {
	if raw == nil || raw.X == engine.HandInvalid {
		return nil
	}
	px, py := modes.Denormalize(raw.X, raw.Y)
	return &Hand{
		Click:      raw.Click,
		Pressure:   float32(raw.Pressure),
		Projection: mgl32.Vec2{px, py},
		Real:       mgl32.Vec3{raw.XReal, raw.YReal, raw.ZReal},
	}
}

// BuildHands converts a hand tracker update, preserving user order.
func BuildHands(data *engine.HandTrackerData, modes OutputModes) HandSnapshot {
	snap := HandSnapshot{
		Timestamp: int64(data.Timestamp),
		UserCount: data.NumUsers(),
		Hands:     make([]UserHands, 0, data.NumUsers()),
	}
	for _, uh := range data.UsersHands {
		snap.Hands = append(snap.Hands, UserHands{
			UserID: uh.UserID,
			Left:   BuildHand(uh.LeftHand, modes),
			Right:  BuildHand(uh.RightHand, modes),
		})
	}
	return snap
}
