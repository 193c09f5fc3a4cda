package engine

// Records are delivered to hooks by the engine and stay owned by it. Slices
// inside a record alias engine memory and are valid only until the hook
// returns; anything kept past that point must be copied.

// DepthFrame carries one depth image in millimeters, row-major.
type DepthFrame struct {
	Rows      int
	Cols      int
	Timestamp uint64
	Data      []uint16
}

// RGBFrame carries one color image, row-major, BGR pixels.
type RGBFrame struct {
	Rows      int
	Cols      int
	Timestamp uint64
	Data      []Color3
}

// UserFrame carries the user segmentation mask: each pixel holds the id of
// the user it belongs to, 0 for background.
type UserFrame struct {
	Rows      int
	Cols      int
	Timestamp uint64
	Data      []uint16
}

// Joint is one raw tracked joint. Proj X/Y are normalized to [0,1] over the
// color image; Proj Z and Real are millimeters.
type Joint struct {
	Type        JointType
	Confidence  float32
	Real        Vector3
	Proj        Vector3
	Orientation [9]float32 // row-major 3x3
}

// Skeleton is one tracked user. Joints is indexed by JointType and may be
// shorter than JointTypeCount.
type Skeleton struct {
	ID     int
	Joints []Joint
}

// SkeletonData is the skeleton tracker update for one cycle.
type SkeletonData struct {
	Timestamp uint64
	Skeletons []Skeleton
}

// NumSkeletons mirrors the engine accessor.
func (d *SkeletonData) NumSkeletons() int { return len(d.Skeletons) }

// HandInvalid is the sentinel X value of a hand that is not tracked.
const HandInvalid float32 = -1

// Hand is one raw tracked hand. X and Y are normalized projective
// coordinates; X == HandInvalid means no hand.
type Hand struct {
	X        float32
	Y        float32
	Click    bool
	Pressure int
	XReal    float32
	YReal    float32
	ZReal    float32
}

// UserHands holds both hands of one user; either pointer may be nil.
type UserHands struct {
	UserID    int
	LeftHand  *Hand
	RightHand *Hand
}

// HandTrackerData is the hand tracker update for one cycle.
type HandTrackerData struct {
	Timestamp  uint64
	UsersHands []UserHands
}

// NumUsers mirrors the engine accessor.
func (d *HandTrackerData) NumUsers() int { return len(d.UsersHands) }

// Gesture is one recognized gesture.
type Gesture struct {
	UserID int
	Type   GestureType
}

// GestureData is the gesture recognizer update for one cycle.
type GestureData struct {
	Timestamp uint64
	Gestures  []Gesture
}

// FrameBorderIssue reports a user touching the frame edges.
type FrameBorderIssue struct {
	Left  bool
	Right bool
	Top   bool
}

// OcclusionIssue reports a partially occluded user.
type OcclusionIssue struct{}

// IssuesData is the diagnostic update for one cycle, keyed by user id.
type IssuesData struct {
	FrameBorder map[int]FrameBorderIssue
	Occlusion   map[int]OcclusionIssue
}

// FrameBorderIssue returns the frame-border issue of userID, or nil.
func (d *IssuesData) FrameBorderIssue(userID int) *FrameBorderIssue {
	if d == nil {
		return nil
	}
	issue, ok := d.FrameBorder[userID]
	if !ok {
		return nil
	}
	return &issue
}

// OcclusionIssue returns the occlusion issue of userID, or nil.
func (d *IssuesData) OcclusionIssue(userID int) *OcclusionIssue {
	if d == nil {
		return nil
	}
	issue, ok := d.Occlusion[userID]
	if !ok {
		return nil
	}
	return &issue
}
