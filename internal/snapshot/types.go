// Package snapshot converts engine-owned records into immutable, owned
// values handed to subscribers.
//
// Every builder is a total function over well-formed engine records: it
// never returns an error and never keeps a reference to the input record.
package snapshot

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
)

// Joint is one skeleton joint in host coordinates.
type Joint struct {
	Type       engine.JointType
	Confidence float32
	// Real is the position in millimeters, sensor frame.
	Real mgl32.Vec3
	// Projection holds pixel x, pixel y (color image) and depth z (mm).
	Projection  mgl32.Vec3
	Orientation mgl32.Mat3
}

// Skeleton is one tracked user with joints in CanonicalJoints order.
type Skeleton struct {
	UserID int
	Joints [SkeletonJointCount]Joint
}

// Joint returns the joint of type jt. ok is false for joint types outside
// the canonical order.
func (s *Skeleton) Joint(jt engine.JointType) (Joint, bool) {
	idx, ok := CanonicalIndex(jt)
	if !ok {
		return Joint{}, false
	}
	return s.Joints[idx], true
}

// SkeletonSnapshot is the skeleton channel payload for one cycle.
type SkeletonSnapshot struct {
	Timestamp     int64
	SkeletonCount int
	Skeletons     []Skeleton
}

// Hand is one tracked hand.
type Hand struct {
	Click    bool
	Pressure float32
	// Projection is in color image pixels.
	Projection mgl32.Vec2
	// Real is in millimeters.
	Real mgl32.Vec3
}

// UserHands holds the hands of one user; a nil hand was not detected.
type UserHands struct {
	UserID int
	Left   *Hand
	Right  *Hand
}

// HandSnapshot is the hand channel payload for one cycle.
type HandSnapshot struct {
	Timestamp int64
	UserCount int
	Hands     []UserHands
}

// GestureEvent is one recognized gesture.
type GestureEvent struct {
	UserID int
	Type   engine.GestureType
}

// GestureBatch holds the gestures of one cycle in engine order.
type GestureBatch []GestureEvent

// Issue is either a FrameBorderIssue or an OcclusionIssue.
type Issue interface {
	issueUserID() int
}

// FrameBorderIssue reports a user touching the frame edges.
type FrameBorderIssue struct {
	UserID int
	Left   bool
	Right  bool
	Top    bool
}

// OcclusionIssue reports a partially occluded user.
type OcclusionIssue struct {
	UserID int
}

func (i FrameBorderIssue) issueUserID() int { return i.UserID }
func (i OcclusionIssue) issueUserID() int   { return i.UserID }

// IssueUserID returns the user an issue refers to.
func IssueUserID(i Issue) int { return i.issueUserID() }

// IssueBatch holds the issues of one cycle, ordered by user slot.
type IssueBatch []Issue
