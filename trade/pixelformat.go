package trade

import "fmt"

// PixelFormat describes the layout of a single pixel in ImageData2D.
type PixelFormat int

// Supported pixel formats. All of them are 8 bits per channel, unsigned and
// normalized.
const (
	PixelFormatUnknown PixelFormat = iota
	R8Unorm
	RG8Unorm
	RGB8Unorm
	RGBA8Unorm
)

// PixelSize returns the size of one pixel in bytes.
func (f PixelFormat) PixelSize() int {
	switch f {
	case R8Unorm:
		return 1
	case RG8Unorm:
		return 2
	case RGB8Unorm:
		return 3
	case RGBA8Unorm:
		return 4
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case R8Unorm:
		return "R8Unorm"
	case RG8Unorm:
		return "RG8Unorm"
	case RGB8Unorm:
		return "RGB8Unorm"
	case RGBA8Unorm:
		return "RGBA8Unorm"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}
