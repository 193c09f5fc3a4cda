package main

import (
	"encoding/binary"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sensorbridge "github.com/e7canasta/orion-care-sensor/modules/sensor-bridge"
	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/internal/config"
)

func TestSaveFrame_DepthIsGray16PNG(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 2*3*2)
	for i := 0; i < 6; i++ {
		binary.NativeEndian.PutUint16(data[i*2:], uint16(1000+i))
	}
	p := sensorbridge.PixelBuffer{Timestamp: 5, Rows: 2, Cols: 3, Channels: 1, ElementWidth: 2, Data: data}

	out := config.OutputConfig{Dir: dir, Format: "jpeg", JPEGQuality: 90}
	require.NoError(t, saveFrame(out, "depth", 7, p))

	f, err := os.Open(filepath.Join(dir, "depth_000007_5.png"))
	require.NoError(t, err, "depth is always saved as PNG")
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray16)
	require.True(t, ok)
	assert.Equal(t, uint16(1004), gray.Gray16At(1, 1).Y)
}

func TestSaveFrame_ColorJPEG(t *testing.T) {
	dir := t.TempDir()
	p := sensorbridge.PixelBuffer{Rows: 2, Cols: 2, Channels: 3, ElementWidth: 1, Data: make([]byte, 12)}
	out := config.OutputConfig{Dir: dir, Format: "jpeg", JPEGQuality: 80}

	require.NoError(t, saveFrame(out, "color", 1, p))
	_, err := os.Stat(filepath.Join(dir, "color_000001_0.jpeg"))
	assert.NoError(t, err)
}

func TestCaptureSink_SaveEvery(t *testing.T) {
	dir := t.TempDir()
	sink, err := newCaptureSink(config.OutputConfig{Dir: dir, Format: "png", SaveEvery: 2, JPEGQuality: 90})
	require.NoError(t, err)

	p := sensorbridge.PixelBuffer{Rows: 1, Cols: 1, Channels: 1, ElementWidth: 2, Data: make([]byte, 2)}
	for cycle := 1; cycle <= 4; cycle++ {
		sink.cycle = cycle
		sink.savePixels("depth", p)
	}
	assert.Equal(t, 2, sink.saved)
	assert.Zero(t, sink.failed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
