package main

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-video-example/trade"
)

func TestTextureFormat(t *testing.T) {
	tests := []struct {
		format   trade.PixelFormat
		expected vk.Format
	}{
		{format: trade.R8Unorm, expected: vk.FormatR8Unorm},
		{format: trade.RG8Unorm, expected: vk.FormatR8g8Unorm},
		{format: trade.RGB8Unorm, expected: vk.FormatR8g8b8a8Unorm},
		{format: trade.RGBA8Unorm, expected: vk.FormatR8g8b8a8Unorm},
	}

	for _, test := range tests {
		t.Run(test.format.String(), func(t *testing.T) {
			format, err := textureFormat(test.format)
			require.NoError(t, err)
			assert.Equal(t, test.expected, format)
		})
	}

	_, err := textureFormat(trade.PixelFormatUnknown)
	assert.Error(t, err)
}

func TestTextureData(t *testing.T) {
	rgb := &trade.ImageData2D{
		Format: trade.RGB8Unorm,
		Size:   image.Pt(2, 1),
		Data:   []byte{1, 2, 3, 4, 5, 6},
	}
	assert.Equal(t, []byte{1, 2, 3, 255, 4, 5, 6, 255}, textureData(rgb))

	gray := &trade.ImageData2D{
		Format: trade.R8Unorm,
		Size:   image.Pt(2, 1),
		Data:   []byte{7, 8},
	}
	assert.Equal(t, []byte{7, 8}, textureData(gray))
}
