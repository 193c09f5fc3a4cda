package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/config"
)

// captureSink receives bridge snapshots: it logs events and saves frames.
type captureSink struct {
	out   config.OutputConfig
	cycle int

	saved  int
	failed int
}

func newCaptureSink(out config.OutputConfig) (*captureSink, error) {
	if out.Dir != "" {
		if err := os.MkdirAll(out.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		slog.Info("sensor-bridge: frame saving enabled",
			"directory", out.Dir,
			"format", out.Format,
			"save_every", out.SaveEvery,
		)
	}
	return &captureSink{out: out}, nil
}

func (s *captureSink) subscribe(bridge *sensorbridge.Bridge, channels []sensorbridge.Channel) {
	for _, ch := range channels {
		switch ch {
		case sensorbridge.ChannelDepth:
			bridge.SetDepthCallback(func(p sensorbridge.PixelBuffer) { s.savePixels("depth", p) })
		case sensorbridge.ChannelColor:
			bridge.SetColorCallback(func(p sensorbridge.PixelBuffer) { s.savePixels("color", p) })
		case sensorbridge.ChannelUserMask:
			bridge.SetUserCallback(func(p sensorbridge.PixelBuffer) { s.savePixels("user_mask", p) })
		case sensorbridge.ChannelSkeleton:
			bridge.SetSkeletonCallback(s.onSkeleton)
		case sensorbridge.ChannelHand:
			bridge.SetHandsCallback(s.onHands)
		case sensorbridge.ChannelGesture:
			bridge.SetGestureCallback(s.onGestures)
		case sensorbridge.ChannelIssue:
			bridge.SetIssueCallback(s.onIssues)
		case sensorbridge.ChannelFace:
			bridge.SetFaceCallback(s.onFaces)
		}
	}
}

func (s *captureSink) onSkeleton(snap sensorbridge.SkeletonSnapshot) {
	for _, sk := range snap.Skeletons {
		head, _ := sk.Joint(engine.JointHead)
		torso, _ := sk.Joint(engine.JointTorso)
		fmt.Printf("[cycle %-6d] skeleton user=%d head=(%.0f,%.0f %.0fmm) torso=(%.0f,%.0f) conf=%.2f\n",
			s.cycle, sk.UserID,
			head.Projection.X(), head.Projection.Y(), head.Projection.Z(),
			torso.Projection.X(), torso.Projection.Y(),
			head.Confidence,
		)
	}
}

func (s *captureSink) onHands(snap sensorbridge.HandSnapshot) {
	for _, uh := range snap.Hands {
		slog.Debug("sensor-bridge: hands",
			"cycle", s.cycle,
			"user_id", uh.UserID,
			"left", uh.Left != nil,
			"right", uh.Right != nil,
		)
	}
}

func (s *captureSink) onGestures(batch sensorbridge.GestureBatch) {
	for _, g := range batch {
		slog.Info("sensor-bridge: gesture",
			"cycle", s.cycle,
			"user_id", g.UserID,
			"gesture", g.Type.String(),
		)
	}
}

func (s *captureSink) onIssues(batch sensorbridge.IssueBatch) {
	for _, issue := range batch {
		switch v := issue.(type) {
		case sensorbridge.FrameBorderIssue:
			slog.Warn("sensor-bridge: user at frame border",
				"cycle", s.cycle,
				"user_id", v.UserID,
				"left", v.Left,
				"right", v.Right,
				"top", v.Top,
			)
		case sensorbridge.OcclusionIssue:
			slog.Warn("sensor-bridge: user occluded",
				"cycle", s.cycle,
				"user_id", v.UserID,
			)
		}
	}
}

func (s *captureSink) onFaces(snap sensorbridge.FaceSnapshot) {
	for _, f := range snap.Faces {
		slog.Debug("sensor-bridge: face",
			"cycle", s.cycle,
			"user_id", f.UserID,
			"gender", f.Gender,
			"age", f.Age.Type,
		)
	}
}

// savePixels writes every SaveEvery-th frame of a channel. Depth and user
// masks are 16-bit grayscale PNG; color follows the configured format.
func (s *captureSink) savePixels(channel string, p sensorbridge.PixelBuffer) {
	if s.out.Dir == "" || s.cycle%s.out.SaveEvery != 0 {
		return
	}
	if err := saveFrame(s.out, channel, s.cycle, p); err != nil {
		slog.Error("sensor-bridge: failed to save frame", "channel", channel, "cycle", s.cycle, "error", err)
		s.failed++
		return
	}
	s.saved++
}

// saveFrame saves a frame to disk as PNG or JPEG
func saveFrame(out config.OutputConfig, channel string, cycle int, p sensorbridge.PixelBuffer) error {
	img, err := p.Image()
	if err != nil {
		return err
	}

	format := out.Format
	if p.Channels == 1 {
		format = "png" // JPEG cannot hold 16-bit samples
	}
	filename := fmt.Sprintf("%s_%06d_%d.%s", channel, cycle, p.Timestamp, format)
	path := filepath.Join(out.Dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return encode(file, img, format, out.JPEGQuality)
}

func encode(file *os.File, img image.Image, format string, quality int) error {
	switch format {
	case "png":
		if err := png.Encode(file, img); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
	case "jpeg":
		if err := jpeg.Encode(file, img, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("failed to encode JPEG: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return nil
}
