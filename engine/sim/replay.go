package sim

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
)

// recordingVersion is bumped when the recording layout changes.
const recordingVersion = 1

// Recording is a sequence of skeleton tracker updates, replayed in a loop.
type Recording struct {
	Version int             `msgpack:"version"`
	FPS     int             `msgpack:"fps"`
	Frames  []RecordedFrame `msgpack:"frames"`
}

// RecordedFrame is one skeleton tracker update.
type RecordedFrame struct {
	Timestamp uint64            `msgpack:"ts"`
	Skeletons []engine.Skeleton `msgpack:"skeletons"`
}

// Frame returns the frame replayed at cycle, looping over the recording.
func (r *Recording) Frame(cycle uint64) *RecordedFrame {
	if len(r.Frames) == 0 {
		return nil
	}
	return &r.Frames[cycle%uint64(len(r.Frames))]
}

// WriteRecording encodes rec as msgpack.
func WriteRecording(w io.Writer, rec *Recording) error {
	rec.Version = recordingVersion
	if err := msgpack.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("sim: encode recording: %w", err)
	}
	return nil
}

// ReadRecording decodes a msgpack recording.
func ReadRecording(r io.Reader) (*Recording, error) {
	var rec Recording
	if err := msgpack.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("sim: decode recording: %w", err)
	}
	if rec.Version != recordingVersion {
		return nil, fmt.Errorf("sim: unsupported recording version %d", rec.Version)
	}
	return &rec, nil
}

// LoadRecording reads a recording file.
func LoadRecording(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sim: open recording: %w", err)
	}
	defer f.Close()
	return ReadRecording(bufio.NewReader(f))
}

// SaveRecording writes a recording file.
func SaveRecording(path string, rec *Recording) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sim: create recording: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := WriteRecording(w, rec); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("sim: flush recording: %w", err)
	}
	return f.Close()
}

// Record synthesizes n skeleton updates from scene.
func Record(scene Scene, n int) (*Recording, error) {
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	g := newGenerator(scene)
	rec := &Recording{FPS: scene.Depth.FPS, Frames: make([]RecordedFrame, 0, n)}
	for i := 0; i < n; i++ {
		data := g.skeletons(uint64(i))
		rec.Frames = append(rec.Frames, RecordedFrame{
			Timestamp: data.Timestamp,
			Skeletons: data.Skeletons,
		})
	}
	return rec, nil
}
