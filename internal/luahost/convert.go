package luahost

import (
	"github.com/Shopify/go-lua"
	"github.com/go-gl/mathgl/mgl32"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
)

// Snapshots become plain Lua tables with snake_case keys. Pixel data stays
// on the Go side; scripts get the layout and a center sample.

func setNumber(l *lua.State, key string, v float64) {
	l.PushNumber(v)
	l.SetField(-2, key)
}

func setInteger(l *lua.State, key string, v int) {
	l.PushInteger(v)
	l.SetField(-2, key)
}

func setString(l *lua.State, key, v string) {
	l.PushString(v)
	l.SetField(-2, key)
}

func setBool(l *lua.State, key string, v bool) {
	l.PushBoolean(v)
	l.SetField(-2, key)
}

func pushVec2(l *lua.State, v mgl32.Vec2) {
	l.CreateTable(0, 2)
	setNumber(l, "x", float64(v.X()))
	setNumber(l, "y", float64(v.Y()))
}

func pushVec3(l *lua.State, v mgl32.Vec3) {
	l.CreateTable(0, 3)
	setNumber(l, "x", float64(v.X()))
	setNumber(l, "y", float64(v.Y()))
	setNumber(l, "z", float64(v.Z()))
}

func pushPixels(l *lua.State, p sensorbridge.PixelBuffer) {
	l.CreateTable(0, 7)
	setInteger(l, "timestamp", int(p.Timestamp))
	setInteger(l, "rows", p.Rows)
	setInteger(l, "cols", p.Cols)
	setInteger(l, "channels", p.Channels)
	setInteger(l, "element_width", p.ElementWidth)
	setInteger(l, "bytes", len(p.Data))
	if p.Rows == 0 || p.Cols == 0 {
		return
	}
	row, col := p.Rows/2, p.Cols/2
	switch {
	case p.Channels == 1 && p.ElementWidth == 2:
		setInteger(l, "center", int(p.Uint16At(row, col)))
	case p.Channels == 3 && p.ElementWidth == 1:
		b, g, r := p.BGRAt(row, col)
		l.CreateTable(0, 3)
		setInteger(l, "b", int(b))
		setInteger(l, "g", int(g))
		setInteger(l, "r", int(r))
		l.SetField(-2, "center")
	}
}

func pushJoint(l *lua.State, j sensorbridge.Joint) {
	l.CreateTable(0, 5)
	setString(l, "type", j.Type.String())
	setNumber(l, "confidence", float64(j.Confidence))
	pushVec3(l, j.Projection)
	l.SetField(-2, "proj")
	pushVec3(l, j.Real)
	l.SetField(-2, "real")
	pushMat3(l, j.Orientation)
	l.SetField(-2, "orientation")
}

// pushMat3 pushes m as a 9-entry array in row-major order. mgl32 stores
// matrices column-major, so entry (row, col) is m.At(row, col).
func pushMat3(l *lua.State, m mgl32.Mat3) {
	l.CreateTable(9, 0)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			l.PushNumber(float64(m.At(row, col)))
			l.RawSetInt(-2, row*3+col+1)
		}
	}
}

func pushSkeletons(l *lua.State, s sensorbridge.SkeletonSnapshot) {
	l.CreateTable(0, 3)
	setInteger(l, "timestamp", int(s.Timestamp))
	setInteger(l, "count", s.SkeletonCount)

	l.CreateTable(len(s.Skeletons), 0)
	for i, sk := range s.Skeletons {
		l.CreateTable(0, 2)
		setInteger(l, "user_id", sk.UserID)
		// joints keyed by name: snapshot.skeletons[1].joints.head
		l.CreateTable(0, len(sk.Joints))
		for _, j := range sk.Joints {
			pushJoint(l, j)
			l.SetField(-2, j.Type.String())
		}
		l.SetField(-2, "joints")
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "skeletons")
}

func pushHand(l *lua.State, key string, h *sensorbridge.Hand) {
	if h == nil {
		return
	}
	l.CreateTable(0, 4)
	setBool(l, "click", h.Click)
	setNumber(l, "pressure", float64(h.Pressure))
	pushVec2(l, h.Projection)
	l.SetField(-2, "proj")
	pushVec3(l, h.Real)
	l.SetField(-2, "real")
	l.SetField(-2, key)
}

func pushHands(l *lua.State, s sensorbridge.HandSnapshot) {
	l.CreateTable(0, 3)
	setInteger(l, "timestamp", int(s.Timestamp))
	setInteger(l, "count", s.UserCount)

	l.CreateTable(len(s.Hands), 0)
	for i, uh := range s.Hands {
		l.CreateTable(0, 3)
		setInteger(l, "user_id", uh.UserID)
		pushHand(l, "left", uh.Left)
		pushHand(l, "right", uh.Right)
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "users")
}

func pushGestures(l *lua.State, batch sensorbridge.GestureBatch) {
	l.CreateTable(len(batch), 0)
	for i, g := range batch {
		l.CreateTable(0, 2)
		setInteger(l, "user_id", g.UserID)
		setString(l, "type", g.Type.String())
		l.RawSetInt(-2, i+1)
	}
}

func pushIssues(l *lua.State, batch sensorbridge.IssueBatch) {
	l.CreateTable(len(batch), 0)
	for i, issue := range batch {
		l.CreateTable(0, 5)
		setInteger(l, "user_id", sensorbridge.IssueUserID(issue))
		switch v := issue.(type) {
		case sensorbridge.FrameBorderIssue:
			setString(l, "kind", "frame_border")
			setBool(l, "left", v.Left)
			setBool(l, "right", v.Right)
			setBool(l, "top", v.Top)
		case sensorbridge.OcclusionIssue:
			setString(l, "kind", "occlusion")
		}
		l.RawSetInt(-2, i+1)
	}
}

func pushFaces(l *lua.State, s sensorbridge.FaceSnapshot) {
	l.CreateTable(0, 2)
	setInteger(l, "timestamp", int(s.Timestamp))

	l.CreateTable(len(s.Faces), 0)
	for i, f := range s.Faces {
		l.CreateTable(0, 8)
		setInteger(l, "user_id", f.UserID)
		setString(l, "gender", f.Gender)

		l.CreateTable(0, 4)
		setNumber(l, "x", float64(f.Rect.X))
		setNumber(l, "y", float64(f.Rect.Y))
		setNumber(l, "width", float64(f.Rect.Width))
		setNumber(l, "height", float64(f.Rect.Height))
		l.SetField(-2, "rect")

		pushVec2(l, f.LeftEye)
		l.SetField(-2, "left_eye")
		pushVec2(l, f.RightEye)
		l.SetField(-2, "right_eye")

		l.CreateTable(0, 3)
		setNumber(l, "yaw", float64(f.Angles.Yaw))
		setNumber(l, "pitch", float64(f.Angles.Pitch))
		setNumber(l, "roll", float64(f.Angles.Roll))
		l.SetField(-2, "angles")

		l.CreateTable(0, 4)
		setNumber(l, "neutral", float64(f.Emotions.Neutral))
		setNumber(l, "angry", float64(f.Emotions.Angry))
		setNumber(l, "surprise", float64(f.Emotions.Surprise))
		setNumber(l, "happy", float64(f.Emotions.Happy))
		l.SetField(-2, "emotions")

		l.CreateTable(0, 2)
		setString(l, "type", f.Age.Type)
		setNumber(l, "years", float64(f.Age.Years))
		l.SetField(-2, "age")

		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "faces")
}

func pushOutputModes(l *lua.State, m sensorbridge.OutputModes) {
	l.CreateTable(0, 2)
	for _, kv := range []struct {
		key  string
		mode sensorbridge.OutputMode
	}{{"depth", m.Depth}, {"color", m.Color}} {
		l.CreateTable(0, 2)
		setInteger(l, "width", kv.mode.Width)
		setInteger(l, "height", kv.mode.Height)
		l.SetField(-2, kv.key)
	}
}

func pushStats(l *lua.State, s sensorbridge.BridgeStats) {
	l.CreateTable(0, 6)
	setString(l, "session_id", s.SessionID)
	setString(l, "state", s.State)
	setInteger(l, "cycles", int(s.Cycles))
	setInteger(l, "engine_errors", int(s.EngineErrors))
	setInteger(l, "license_errors", int(s.LicenseErrors))

	l.CreateTable(0, sensorbridge.ChannelCount)
	for _, ch := range sensorbridge.Channels() {
		cs := s.Channel(ch)
		l.CreateTable(0, 4)
		setInteger(l, "built", int(cs.Built))
		setInteger(l, "dispatched", int(cs.Dispatched))
		setInteger(l, "skipped", int(cs.Skipped))
		setInteger(l, "bytes_copied", int(cs.BytesCopied))
		l.SetField(-2, ch.String())
	}
	l.SetField(-2, "channels")
}
