package snapshot

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"unsafe"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
)

// PixelBuffer is an owned, row-major copy of one image. Multi-byte elements
// are stored in native byte order; color pixels keep the engine BGR order.
type PixelBuffer struct {
	Timestamp    int64
	Rows         int
	Cols         int
	Channels     int
	ElementWidth int
	Data         []byte
}

// Uint16At returns the element at (row, col) of a 1-channel, 2-byte buffer.
func (p PixelBuffer) Uint16At(row, col int) uint16 {
	off := (row*p.Cols + col) * 2
	return binary.NativeEndian.Uint16(p.Data[off : off+2])
}

// BGRAt returns the pixel at (row, col) of a 3-channel, 1-byte buffer.
func (p PixelBuffer) BGRAt(row, col int) (b, g, r uint8) {
	off := (row*p.Cols + col) * 3
	return p.Data[off], p.Data[off+1], p.Data[off+2]
}

// Image converts the buffer into a standard library image: Gray16 for
// 2-byte single-channel buffers, RGBA for BGR buffers.
func (p PixelBuffer) Image() (image.Image, error) {
	rect := image.Rect(0, 0, p.Cols, p.Rows)
	switch {
	case p.Channels == 1 && p.ElementWidth == 2:
		img := image.NewGray16(rect)
		for y := 0; y < p.Rows; y++ {
			for x := 0; x < p.Cols; x++ {
				img.SetGray16(x, y, color.Gray16{Y: p.Uint16At(y, x)})
			}
		}
		return img, nil
	case p.Channels == 3 && p.ElementWidth == 1:
		img := image.NewRGBA(rect)
		for y := 0; y < p.Rows; y++ {
			for x := 0; x < p.Cols; x++ {
				b, g, r := p.BGRAt(y, x)
				img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("snapshot: unsupported pixel layout %dx%d bytes", p.Channels, p.ElementWidth)
	}
}

// BuildDepth copies a depth frame (1 channel, 2 bytes per element).
func BuildDepth(frame *engine.DepthFrame) PixelBuffer {
	return copyPixels(uint16View(frame.Data), frame.Rows, frame.Cols, 1, 2, frame.Timestamp)
}

// BuildUserMask copies a user segmentation frame (1 channel, 2 bytes).
func BuildUserMask(frame *engine.UserFrame) PixelBuffer {
	return copyPixels(uint16View(frame.Data), frame.Rows, frame.Cols, 1, 2, frame.Timestamp)
}

// BuildColor copies a color frame (3 channels, 1 byte, BGR).
func BuildColor(frame *engine.RGBFrame) PixelBuffer {
	return copyPixels(color3View(frame.Data), frame.Rows, frame.Cols, 3, 1, frame.Timestamp)
}

// copyPixels materializes an owned copy of view. The destination is always
// rows*cols*channels*width bytes; a short source leaves the tail zeroed.
func copyPixels(view []byte, rows, cols, channels, width int, ts uint64) PixelBuffer {
	size := rows * cols * channels * width
	if size < 0 {
		size = 0
	}
	data := make([]byte, size)
	copy(data, view)
	return PixelBuffer{
		Timestamp:    int64(ts),
		Rows:         rows,
		Cols:         cols,
		Channels:     channels,
		ElementWidth: width,
		Data:         data,
	}
}

// uint16View reinterprets engine memory as bytes without copying. The view
// must not escape the hook that received src.
func uint16View(src []uint16) []byte {
	if len(src) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(src))), len(src)*2)
}

func color3View(src []engine.Color3) []byte {
	if len(src) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(src))), len(src)*int(unsafe.Sizeof(engine.Color3{})))
}
