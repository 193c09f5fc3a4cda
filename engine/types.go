package engine

// JointType identifies a skeleton joint. Values match the engine's native
// enumeration, so a Skeleton's joint slice is indexed by JointType.
type JointType int

const (
	JointNone JointType = iota
	JointHead
	JointNeck
	JointTorso
	JointWaist
	JointLeftCollar
	JointLeftShoulder
	JointLeftElbow
	JointLeftWrist
	JointLeftHand
	JointLeftFingertip
	JointRightCollar
	JointRightShoulder
	JointRightElbow
	JointRightWrist
	JointRightHand
	JointRightFingertip
	JointLeftHip
	JointLeftKnee
	JointLeftAnkle
	JointLeftFoot
	JointRightHip
	JointRightKnee
	JointRightAnkle
	JointRightFoot
)

// JointTypeCount is the number of values in the native enumeration,
// JointNone included.
const JointTypeCount = int(JointRightFoot) + 1

var jointNames = [JointTypeCount]string{
	"none",
	"head",
	"neck",
	"torso",
	"waist",
	"left_collar",
	"left_shoulder",
	"left_elbow",
	"left_wrist",
	"left_hand",
	"left_fingertip",
	"right_collar",
	"right_shoulder",
	"right_elbow",
	"right_wrist",
	"right_hand",
	"right_fingertip",
	"left_hip",
	"left_knee",
	"left_ankle",
	"left_foot",
	"right_hip",
	"right_knee",
	"right_ankle",
	"right_foot",
}

func (j JointType) String() string {
	if j < 0 || int(j) >= JointTypeCount {
		return "unknown"
	}
	return jointNames[j]
}

// ParseJointType resolves a name produced by JointType.String.
func ParseJointType(name string) (JointType, bool) {
	for i, n := range jointNames {
		if n == name {
			return JointType(i), true
		}
	}
	return JointNone, false
}

// GestureType identifies a recognized gesture.
type GestureType int

const (
	GestureWaving GestureType = iota
	GestureSwipeLeft
	GestureSwipeRight
	GestureSwipeUp
	GestureSwipeDown
	GesturePush
)

var gestureNames = [...]string{
	"waving",
	"swipe_left",
	"swipe_right",
	"swipe_up",
	"swipe_down",
	"push",
}

func (g GestureType) String() string {
	if g < 0 || int(g) >= len(gestureNames) {
		return "unknown"
	}
	return gestureNames[g]
}

// ParseGestureType resolves a name produced by GestureType.String.
func ParseGestureType(name string) (GestureType, bool) {
	for i, n := range gestureNames {
		if n == name {
			return GestureType(i), true
		}
	}
	return GestureWaving, false
}

// OutputMode is the negotiated stream mode of a sensor module.
type OutputMode struct {
	FPS  int
	XRes int
	YRes int
	// HFOV is the horizontal field of view in radians.
	HFOV float32
}

// Vector3 is a raw engine vector.
type Vector3 struct {
	X, Y, Z float32
}

// Color3 is one color pixel in engine (BGR) order.
type Color3 struct {
	Blue, Green, Red uint8
}
