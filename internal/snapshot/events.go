package snapshot

import "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"

// MaxUsers is the number of user slots scanned for issues each cycle.
const MaxUsers = 8

// BuildGestures maps each reported gesture 1:1, keeping engine order.
func BuildGestures(data *engine.GestureData) GestureBatch {
	batch := make(GestureBatch, 0, len(data.Gestures))
	for _, g := range data.Gestures {
		batch = append(batch, GestureEvent{UserID: g.UserID, Type: g.Type})
	}
	return batch
}

// BuildIssues scans user slots 0..MaxUsers-1, frame-border issue first then
// occlusion. The result is empty when no slot reports anything.
func BuildIssues(data *engine.IssuesData) IssueBatch {
	var batch IssueBatch
	for userID := 0; userID < MaxUsers; userID++ {
		if fb := data.FrameBorderIssue(userID); fb != nil {
			batch = append(batch, FrameBorderIssue{
				UserID: userID,
				Left:   fb.Left,
				Right:  fb.Right,
				Top:    fb.Top,
			})
		}
		if data.OcclusionIssue(userID) != nil {
			batch = append(batch, OcclusionIssue{UserID: userID})
		}
	}
	return batch
}
