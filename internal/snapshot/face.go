package snapshot

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tidwall/gjson"
)

// Rect is an axis-aligned rectangle in color image pixels.
type Rect struct {
	X, Y, Width, Height float32
}

// FaceAngles is the head rotation in degrees.
type FaceAngles struct {
	Yaw, Pitch, Roll float32
}

// Emotions holds per-emotion scores in [0,1].
type Emotions struct {
	Neutral  float32
	Angry    float32
	Surprise float32
	Happy    float32
}

// Age is the estimated age bracket and years.
type Age struct {
	Type  string
	Years float32
}

// Face is the face data of one tracked user.
type Face struct {
	UserID    int
	Rect      Rect
	LeftEye   mgl32.Vec2
	RightEye  mgl32.Vec2
	Landmarks []mgl32.Vec2
	Angles    FaceAngles
	Emotions  Emotions
	Age       Age
	Gender    string
}

// FaceSnapshot is the face channel payload for one cycle.
type FaceSnapshot struct {
	Timestamp int64
	Faces     []Face
}

// BuildFaces parses the engine instances document. Positions in the
// document are normalized and are denormalized by the color output mode.
// ok is false when the document is not valid JSON or carries no face.
func BuildFaces(doc string, modes OutputModes) (snap FaceSnapshot, ok bool) {
	if !gjson.Valid(doc) {
		return FaceSnapshot{}, false
	}
	root := gjson.Parse(doc)
	snap.Timestamp = root.Get("Timestamp").Int()

	root.Get("Instances").ForEach(func(_, inst gjson.Result) bool {
		face := inst.Get("face")
		if !face.Exists() {
			return true
		}
		snap.Faces = append(snap.Faces, buildFace(inst.Get("id").Int(), face, modes))
		return true
	})
	return snap, len(snap.Faces) > 0
}

func buildFace(userID int64, face gjson.Result, modes OutputModes) Face {
	rect := face.Get("rectangle")
	x, y := modes.Denormalize(float32(rect.Get("left").Float()), float32(rect.Get("top").Float()))
	w, h := modes.Denormalize(float32(rect.Get("width").Float()), float32(rect.Get("height").Float()))

	f := Face{
		UserID:   int(userID),
		Rect:     Rect{X: x, Y: y, Width: w, Height: h},
		LeftEye:  point(face.Get("left_eye"), modes),
		RightEye: point(face.Get("right_eye"), modes),
		Angles: FaceAngles{
			Yaw:   float32(face.Get("angles.yaw").Float()),
			Pitch: float32(face.Get("angles.pitch").Float()),
			Roll:  float32(face.Get("angles.roll").Float()),
		},
		Emotions: Emotions{
			Neutral:  float32(face.Get("emotions.neutral").Float()),
			Angry:    float32(face.Get("emotions.angry").Float()),
			Surprise: float32(face.Get("emotions.surprise").Float()),
			Happy:    float32(face.Get("emotions.happy").Float()),
		},
		Age: Age{
			Type:  face.Get("age.type").String(),
			Years: float32(face.Get("age.years").Float()),
		},
		Gender: face.Get("gender").String(),
	}
	for _, lm := range face.Get("landmark").Array() {
		f.Landmarks = append(f.Landmarks, point(lm, modes))
	}
	return f
}

func point(p gjson.Result, modes OutputModes) mgl32.Vec2 {
	x, y := modes.Denormalize(float32(p.Get("x").Float()), float32(p.Get("y").Float()))
	return mgl32.Vec2{x, y}
}
