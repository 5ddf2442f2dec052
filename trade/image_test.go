package trade

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelFormat(t *testing.T) {
	tests := []struct {
		format PixelFormat
		size   int
		name   string
	}{
		{R8Unorm, 1, "R8Unorm"},
		{RG8Unorm, 2, "RG8Unorm"},
		{RGB8Unorm, 3, "RGB8Unorm"},
		{RGBA8Unorm, 4, "RGBA8Unorm"},
		{PixelFormatUnknown, 0, "PixelFormat(0)"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.size, test.format.PixelSize())
			assert.Equal(t, test.name, test.format.String())
		})
	}
}

func TestFromImageGray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.SetGray(0, 0, color.Gray{Y: 10})
	src.SetGray(1, 0, color.Gray{Y: 200})

	img := FromImage(src)
	assert.Equal(t, R8Unorm, img.Format)
	assert.Equal(t, image.Pt(2, 1), img.Size)
	assert.Equal(t, []byte{10, 200}, img.Data)
	assert.NoError(t, img.Validate())
}

func TestFromImageOpaque(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	src.SetNRGBA(0, 1, color.NRGBA{R: 4, G: 5, B: 6, A: 255})

	img := FromImage(src)
	assert.Equal(t, RGB8Unorm, img.Format)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, img.Data)
	assert.Equal(t, 3, img.Stride())
}

func TestFromImageTranslucent(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.SetNRGBA(5, 5, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	src.SetNRGBA(6, 5, color.NRGBA{R: 0, G: 0, B: 0, A: 0})

	img := FromImage(src)
	assert.Equal(t, RGBA8Unorm, img.Format)
	assert.Equal(t, image.Pt(2, 1), img.Size)
	assert.Equal(t, []byte{1, 2, 3, 255, 0, 0, 0, 0}, img.Data)
}

func TestRGBA(t *testing.T) {
	tests := []struct {
		name     string
		image    ImageData2D
		expected []byte
	}{
		{
			name:     "r8",
			image:    ImageData2D{Format: R8Unorm, Size: image.Pt(2, 1), Data: []byte{7, 9}},
			expected: []byte{7, 0, 0, 255, 9, 0, 0, 255},
		},
		{
			name:     "rg8",
			image:    ImageData2D{Format: RG8Unorm, Size: image.Pt(1, 1), Data: []byte{7, 9}},
			expected: []byte{7, 9, 0, 255},
		},
		{
			name:     "rgb8",
			image:    ImageData2D{Format: RGB8Unorm, Size: image.Pt(1, 1), Data: []byte{1, 2, 3}},
			expected: []byte{1, 2, 3, 255},
		},
		{
			name:     "rgba8",
			image:    ImageData2D{Format: RGBA8Unorm, Size: image.Pt(1, 1), Data: []byte{1, 2, 3, 4}},
			expected: []byte{1, 2, 3, 4},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.NoError(t, test.image.Validate())
			assert.Equal(t, test.expected, test.image.RGBA())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		image ImageData2D
	}{
		{"unknown format", ImageData2D{Size: image.Pt(1, 1), Data: []byte{1}}},
		{"empty size", ImageData2D{Format: R8Unorm}},
		{"short data", ImageData2D{Format: RGB8Unorm, Size: image.Pt(2, 2), Data: make([]byte, 11)}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Error(t, test.image.Validate())
		})
	}
}
