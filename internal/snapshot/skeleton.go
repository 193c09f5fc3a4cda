package snapshot

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
)

// SkeletonJointCount is the number of joints in every Skeleton.
const SkeletonJointCount = 20

// CanonicalJoints is the fixed joint order of Skeleton.Joints. Fingertips
// and feet exist in the engine enumeration but are never tracked, so they
// are left out.
var CanonicalJoints = [SkeletonJointCount]engine.JointType{
	engine.JointHead,
	engine.JointNeck,
	engine.JointTorso,
	engine.JointWaist,
	engine.JointLeftCollar,
	engine.JointLeftShoulder,
	engine.JointLeftElbow,
	engine.JointLeftWrist,
	engine.JointLeftHand,
	engine.JointRightCollar,
	engine.JointRightShoulder,
	engine.JointRightElbow,
	engine.JointRightWrist,
	engine.JointRightHand,
	engine.JointLeftHip,
	engine.JointLeftKnee,
	engine.JointLeftAnkle,
	engine.JointRightHip,
	engine.JointRightKnee,
	engine.JointRightAnkle,
}

var canonicalIndex = func() [engine.JointTypeCount]int {
	var idx [engine.JointTypeCount]int
	for i := range idx {
		idx[i] = -1
	}
	for i, jt := range CanonicalJoints {
		idx[jt] = i
	}
	return idx
}()

// CanonicalIndex returns the position of jt in CanonicalJoints.
func CanonicalIndex(jt engine.JointType) (int, bool) {
	if jt < 0 || int(jt) >= engine.JointTypeCount {
		return 0, false
	}
	i := canonicalIndex[jt]
	return i, i >= 0
}

// BuildJoint converts one raw joint. Projected x/y are denormalized by the
// color output mode; z and the real position stay in millimeters.
func BuildJoint(raw engine.Joint, modes OutputModes) Joint {
	px, py := modes.Denormalize(raw.Proj.X, raw.Proj.Y)
	o := raw.Orientation
	return Joint{
		Type:       raw.Type,
		Confidence: raw.Confidence,
		Real:       mgl32.Vec3{raw.Real.X, raw.Real.Y, raw.Real.Z},
		Projection: mgl32.Vec3{px, py, raw.Proj.Z},
		Orientation: mgl32.Mat3FromRows(
			mgl32.Vec3{o[0], o[1], o[2]},
			mgl32.Vec3{o[3], o[4], o[5]},
			mgl32.Vec3{o[6], o[7], o[8]},
		),
	}
}

// BuildSkeleton converts one raw skeleton into the canonical joint order.
// Joints the record does not carry come out with zero confidence.
func BuildSkeleton(raw engine.Skeleton, modes OutputModes) Skeleton {
	s := Skeleton{UserID: raw.ID}
	for i, jt := range CanonicalJoints {
		if int(jt) < len(raw.Joints) {
			s.Joints[i] = BuildJoint(raw.Joints[jt], modes)
		}
		s.Joints[i].Type = jt
	}
	return s
}

// BuildSkeletons converts a skeleton tracker update, preserving the
// engine's user order.
func BuildSkeletons(data *engine.SkeletonData, modes OutputModes) SkeletonSnapshot {
	snap := SkeletonSnapshot{
		Timestamp:     int64(data.Timestamp),
		SkeletonCount: data.NumSkeletons(),
		Skeletons:     make([]Skeleton, 0, data.NumSkeletons()),
	}
	for _, raw := range data.Skeletons {
		snap.Skeletons = append(snap.Skeletons, BuildSkeleton(raw, modes))
	}
	return snap
}
