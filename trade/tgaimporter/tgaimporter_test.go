package tgaimporter

import (
	"encoding/binary"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsmile/vulkan-video-example/pluginmanager"
	"github.com/ironsmile/vulkan-video-example/trade"
)

// makeTGA builds an uncompressed true color TGA file. Pixels are given top
// row first in BGR(A) order and stored bottom row first like most TGA
// writers do.
func makeTGA(width, height, depth int, rows [][]byte) []byte {
	header := make([]byte, 18)
	header[2] = 2
	binary.LittleEndian.PutUint16(header[12:14], uint16(width))
	binary.LittleEndian.PutUint16(header[14:16], uint16(height))
	header[16] = byte(depth)
	if depth == 32 {
		header[17] = 8
	}

	data := header
	for i := len(rows) - 1; i >= 0; i-- {
		data = append(data, rows[i]...)
	}
	return data
}

func TestImport24Bit(t *testing.T) {
	data := makeTGA(2, 2, 24, [][]byte{
		{3, 2, 1, 6, 5, 4},
		{9, 8, 7, 12, 11, 10},
	})

	importer := New()
	require.NoError(t, importer.OpenData(data))

	img, err := importer.Image2D(0)
	require.NoError(t, err)
	assert.Equal(t, trade.RGB8Unorm, img.Format)
	assert.Equal(t, image.Pt(2, 2), img.Size)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, img.Data)
}

func TestImport32Bit(t *testing.T) {
	data := makeTGA(2, 1, 32, [][]byte{
		{30, 20, 10, 255, 0, 0, 0, 0},
	})

	importer := New()
	require.NoError(t, importer.OpenData(data))

	img, err := importer.Image2D(0)
	require.NoError(t, err)
	assert.Equal(t, trade.RGBA8Unorm, img.Format)
	assert.Equal(t, []byte{10, 20, 30, 255, 0, 0, 0, 0}, img.Data)
}

func TestImportInvalid(t *testing.T) {
	importer := New()
	assert.Error(t, importer.OpenData([]byte{0, 1, 2}))
	assert.False(t, importer.IsOpened())
}

func TestRegister(t *testing.T) {
	m := pluginmanager.New[trade.Importer](trade.PluginInterface)
	require.NoError(t, Register(m))

	importer, err := m.LoadAndInstantiate(Name)
	require.NoError(t, err)
	assert.False(t, importer.IsOpened())
}
