package sim

import (
	"math"
	"strconv"

	"github.com/tidwall/sjson"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
)

// trackedConfidence is reported for every joint the engine tracks.
const trackedConfidence = 0.75

// standingPose is the offset of each tracked joint from the torso, in
// millimeters (x right, y up). Fingertips and feet are not tracked.
var standingPose = map[engine.JointType][2]float32{
	engine.JointHead:          {0, 450},
	engine.JointNeck:          {0, 300},
	engine.JointTorso:         {0, 0},
	engine.JointWaist:         {0, -200},
	engine.JointLeftCollar:    {-80, 280},
	engine.JointLeftShoulder:  {-180, 270},
	engine.JointLeftElbow:     {-200, 20},
	engine.JointLeftWrist:     {-210, -200},
	engine.JointLeftHand:      {-215, -260},
	engine.JointRightCollar:   {80, 280},
	engine.JointRightShoulder: {180, 270},
	engine.JointRightElbow:    {200, 20},
	engine.JointRightWrist:    {210, -200},
	engine.JointRightHand:     {215, -260},
	engine.JointLeftHip:       {-100, -250},
	engine.JointLeftKnee:      {-110, -700},
	engine.JointLeftAnkle:     {-115, -1100},
	engine.JointRightHip:      {100, -250},
	engine.JointRightKnee:     {110, -700},
	engine.JointRightAnkle:    {115, -1100},
}

// generator synthesizes engine records from a Scene. Pixel buffers are
// allocated once and rewritten every cycle.
type generator struct {
	scene Scene
	fx    float64 // color focal length in pixels

	depth []uint16
	color []engine.Color3
	mask  []uint16

	recording *Recording
}

func newGenerator(scene Scene) *generator {
	return &generator{
		scene: scene,
		fx:    float64(scene.Color.Width) / 2 / math.Tan(float64(scene.Color.HFOV)/2),
		depth: make([]uint16, scene.Depth.Width*scene.Depth.Height),
		color: make([]engine.Color3, scene.Color.Width*scene.Color.Height),
		mask:  make([]uint16, scene.Depth.Width*scene.Depth.Height),
	}
}

// timestamp is the engine timestamp of cycle k in microseconds.
func (g *generator) timestamp(k uint64) uint64 {
	return k * 1_000_000 / uint64(g.scene.Depth.FPS)
}

// project maps a real point to normalized color coordinates.
func (g *generator) project(real engine.Vector3) engine.Vector3 {
	w, h := float64(g.scene.Color.Width), float64(g.scene.Color.Height)
	u := w/2 + g.fx*float64(real.X)/float64(real.Z)
	v := h/2 - g.fx*float64(real.Y)/float64(real.Z)
	return engine.Vector3{X: float32(u / w), Y: float32(v / h), Z: real.Z}
}

func (g *generator) visible(u User, k uint64) bool {
	return k >= u.EnterAt && (u.LeaveAt == 0 || k < u.LeaveAt)
}

// torso returns the torso position of u at cycle k.
func (g *generator) torso(u User, k uint64) engine.Vector3 {
	p := engine.Vector3{X: u.Position[0], Y: u.Position[1], Z: u.Position[2]}
	if u.Sway.Period > 0 {
		phase := 2 * math.Pi * float64(k%uint64(u.Sway.Period)) / float64(u.Sway.Period)
		p.X += u.Sway.AmplitudeMM * float32(math.Sin(phase))
	}
	return p
}

func (g *generator) skeleton(u User, k uint64) engine.Skeleton {
	torso := g.torso(u, k)
	s := engine.Skeleton{ID: u.ID, Joints: make([]engine.Joint, engine.JointTypeCount)}
	for jt := range s.Joints {
		s.Joints[jt].Type = engine.JointType(jt)
	}
	for jt, off := range standingPose {
		real := engine.Vector3{X: torso.X + off[0], Y: torso.Y + off[1], Z: torso.Z}
		s.Joints[jt] = engine.Joint{
			Type:        jt,
			Confidence:  trackedConfidence,
			Real:        real,
			Proj:        g.project(real),
			Orientation: [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
		}
	}
	return s
}

func (g *generator) skeletons(k uint64) *engine.SkeletonData {
	data := &engine.SkeletonData{Timestamp: g.timestamp(k)}
	if g.recording != nil {
		if f := g.recording.Frame(k); f != nil {
			data.Skeletons = f.Skeletons
		}
		return data
	}
	for _, u := range g.scene.Users {
		if g.visible(u, k) {
			data.Skeletons = append(data.Skeletons, g.skeleton(u, k))
		}
	}
	return data
}

func (g *generator) hand(j engine.Joint) *engine.Hand {
	if j.Proj.X < 0 || j.Proj.X > 1 || j.Proj.Y < 0 || j.Proj.Y > 1 {
		return &engine.Hand{X: engine.HandInvalid, Y: engine.HandInvalid}
	}
	return &engine.Hand{
		X:     j.Proj.X,
		Y:     j.Proj.Y,
		XReal: j.Real.X,
		YReal: j.Real.Y,
		ZReal: j.Real.Z,
	}
}

func (g *generator) hands(k uint64, skel *engine.SkeletonData) *engine.HandTrackerData {
	data := &engine.HandTrackerData{Timestamp: g.timestamp(k)}
	for _, s := range skel.Skeletons {
		if !g.handsEnabled(s.ID) || len(s.Joints) <= int(engine.JointRightHand) {
			continue
		}
		data.UsersHands = append(data.UsersHands, engine.UserHands{
			UserID:    s.ID,
			LeftHand:  g.hand(s.Joints[engine.JointLeftHand]),
			RightHand: g.hand(s.Joints[engine.JointRightHand]),
		})
	}
	return data
}

func (g *generator) handsEnabled(id int) bool {
	if g.recording != nil {
		return true
	}
	for _, u := range g.scene.Users {
		if u.ID == id {
			return u.Hands
		}
	}
	return false
}

// bounds returns the normalized bounding box of the tracked joints.
func bounds(s engine.Skeleton) (left, top, right, bottom float32) {
	left, top, right, bottom = 2, 2, -1, -1
	for _, j := range s.Joints {
		if j.Confidence == 0 {
			continue
		}
		left = min(left, j.Proj.X)
		right = max(right, j.Proj.X)
		top = min(top, j.Proj.Y)
		bottom = max(bottom, j.Proj.Y)
	}
	return left, top, right, bottom
}

// fillPixels renders the background and one box per user into the depth,
// mask and color buffers.
func (g *generator) fillPixels(k uint64, skel *engine.SkeletonData) {
	for i := range g.depth {
		g.depth[i] = g.scene.BackgroundMM
		g.mask[i] = 0
	}
	cw, ch := g.scene.Color.Width, g.scene.Color.Height
	shade := uint8(k % 64)
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			g.color[y*cw+x] = engine.Color3{Blue: uint8(x) + shade, Green: uint8(y), Red: 64}
		}
	}

	dw, dh := g.scene.Depth.Width, g.scene.Depth.Height
	for _, s := range skel.Skeletons {
		l, t, r, b := bounds(s)
		if r < l {
			continue
		}
		z := uint16(s.Joints[engine.JointTorso].Real.Z)
		x0, x1 := clampPixel(l, dw), clampPixel(r, dw)
		y0, y1 := clampPixel(t, dh), clampPixel(b, dh)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				g.depth[y*dw+x] = z
				g.mask[y*dw+x] = uint16(s.ID)
			}
		}
		cx0, cx1 := clampPixel(l, cw), clampPixel(r, cw)
		cy0, cy1 := clampPixel(t, ch), clampPixel(b, ch)
		for y := cy0; y < cy1; y++ {
			for x := cx0; x < cx1; x++ {
				g.color[y*cw+x] = engine.Color3{Blue: 40, Green: 40 * uint8(s.ID), Red: 200}
			}
		}
	}
}

func clampPixel(v float32, size int) int {
	p := int(v * float32(size))
	return max(0, min(size, p))
}

// issues reports frame-border issues for users whose box leaves the image,
// plus any scripted issue of cycle k.
func (g *generator) issues(k uint64, skel *engine.SkeletonData) *engine.IssuesData {
	data := &engine.IssuesData{
		FrameBorder: map[int]engine.FrameBorderIssue{},
		Occlusion:   map[int]engine.OcclusionIssue{},
	}
	for _, s := range skel.Skeletons {
		l, t, r, _ := bounds(s)
		if r < l {
			continue
		}
		fb := engine.FrameBorderIssue{Left: l < 0, Right: r > 1, Top: t < 0}
		if fb.Left || fb.Right || fb.Top {
			data.FrameBorder[s.ID] = fb
		}
	}
	for _, ev := range g.scene.Events {
		if ev.Cycle != k || ev.Issue == nil {
			continue
		}
		if len(ev.Issue.FrameBorder) > 0 {
			fb := data.FrameBorder[ev.Issue.User]
			for _, side := range ev.Issue.FrameBorder {
				switch side {
				case "left":
					fb.Left = true
				case "right":
					fb.Right = true
				case "top":
					fb.Top = true
				}
			}
			data.FrameBorder[ev.Issue.User] = fb
		}
		if ev.Issue.Occlusion {
			data.Occlusion[ev.Issue.User] = engine.OcclusionIssue{}
		}
	}
	return data
}

func (g *generator) gestures(k uint64) *engine.GestureData {
	var data *engine.GestureData
	for _, ev := range g.scene.Events {
		if ev.Cycle != k || ev.Gesture == nil {
			continue
		}
		gt, _ := engine.ParseGestureType(ev.Gesture.Type)
		if data == nil {
			data = &engine.GestureData{Timestamp: g.timestamp(k)}
		}
		data.Gestures = append(data.Gestures, engine.Gesture{UserID: ev.Gesture.User, Type: gt})
	}
	return data
}

// instances builds the instances document: one entry per tracked user,
// with a face object for users that have one.
func (g *generator) instances(k uint64, skel *engine.SkeletonData) string {
	doc := `{"Timestamp":"` + strconv.FormatUint(g.timestamp(k), 10) + `","Instances":[]}`
	for i, s := range skel.Skeletons {
		base := "Instances." + strconv.Itoa(i)
		doc, _ = sjson.Set(doc, base+".id", s.ID)
		doc, _ = sjson.Set(doc, base+".class", "human")

		face := g.faceOf(s.ID)
		if face == nil || len(s.Joints) <= int(engine.JointHead) {
			continue
		}
		head := s.Joints[engine.JointHead]
		size := float32(g.fx) * 200 / head.Real.Z
		w := size / float32(g.scene.Color.Width)
		h := size / float32(g.scene.Color.Height)
		eye := 0.2 * w

		fields := []struct {
			path  string
			value any
		}{
			{"face.rectangle.left", head.Proj.X - w/2},
			{"face.rectangle.top", head.Proj.Y - h/2},
			{"face.rectangle.width", w},
			{"face.rectangle.height", h},
			{"face.left_eye.x", head.Proj.X - eye},
			{"face.left_eye.y", head.Proj.Y - h/8},
			{"face.right_eye.x", head.Proj.X + eye},
			{"face.right_eye.y", head.Proj.Y - h/8},
			{"face.angles.yaw", (head.Proj.X - 0.5) * 60},
			{"face.angles.pitch", 0},
			{"face.angles.roll", 0},
			{"face.emotions.neutral", 0.8},
			{"face.emotions.angry", 0},
			{"face.emotions.surprise", 0},
			{"face.emotions.happy", 0.2},
			{"face.age.type", face.AgeType},
			{"face.age.years", face.Age},
			{"face.gender", face.Gender},
		}
		for _, f := range fields {
			doc, _ = sjson.Set(doc, base+"."+f.path, f.value)
		}
	}
	return doc
}

func (g *generator) faceOf(id int) *Face {
	for _, u := range g.scene.Users {
		if u.ID == id {
			return u.Face
		}
	}
	return nil
}

// next synthesizes every channel of cycle k.
func (g *generator) next(k uint64) Cycle {
	skel := g.skeletons(k)
	g.fillPixels(k, skel)
	ts := g.timestamp(k)
	return Cycle{
		Depth:     &engine.DepthFrame{Rows: g.scene.Depth.Height, Cols: g.scene.Depth.Width, Timestamp: ts, Data: g.depth},
		Color:     &engine.RGBFrame{Rows: g.scene.Color.Height, Cols: g.scene.Color.Width, Timestamp: ts, Data: g.color},
		User:      &engine.UserFrame{Rows: g.scene.Depth.Height, Cols: g.scene.Depth.Width, Timestamp: ts, Data: g.mask},
		Skeleton:  skel,
		Hands:     g.hands(k, skel),
		Gestures:  g.gestures(k),
		Issues:    g.issues(k, skel),
		Instances: g.instances(k, skel),
	}
}
