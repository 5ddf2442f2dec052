package anyimageimporter

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsmile/vulkan-video-example/pluginmanager"
	"github.com/ironsmile/vulkan-video-example/trade"
	"github.com/ironsmile/vulkan-video-example/trade/imageimporter"
	"github.com/ironsmile/vulkan-video-example/trade/tgaimporter"
)

func TestPluginForFile(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"stone.tga", "TgaImporter"},
		{"/some/dir/STONE.TGA", "TgaImporter"},
		{"image.png", "PngImporter"},
		{"photo.jpeg", "JpegImporter"},
		{"photo.JPG", "JpegImporter"},
		{"old.bmp", "BmpImporter"},
	}

	for _, test := range tests {
		t.Run(test.filename, func(t *testing.T) {
			name, err := PluginForFile(test.filename)
			require.NoError(t, err)
			assert.Equal(t, test.expected, name)
		})
	}

	_, err := PluginForFile("video.mkv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestPluginForData(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n...."), "PngImporter"},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, "JpegImporter"},
		{"bmp", []byte("BM......"), "BmpImporter"},
		{"tga", append(make([]byte, 20), tgaFooter...), "TgaImporter"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			name, err := PluginForData(test.data)
			require.NoError(t, err)
			assert.Equal(t, test.expected, name)
		})
	}

	_, err := PluginForData([]byte("plain text"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func newManager(t *testing.T) *pluginmanager.Manager[trade.Importer] {
	t.Helper()

	m := pluginmanager.New[trade.Importer](trade.PluginInterface)
	require.NoError(t, tgaimporter.Register(m))
	require.NoError(t, imageimporter.Register(m))
	require.NoError(t, Register(m))
	return m
}

func pngData(t *testing.T) []byte {
	t.Helper()

	src := image.NewGray(image.Rect(0, 0, 3, 1))
	src.SetGray(2, 0, color.Gray{Y: 77})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	return buf.Bytes()
}

func TestDelegatesOpenData(t *testing.T) {
	importer, err := newManager(t).LoadAndInstantiate(Name)
	require.NoError(t, err)

	require.NoError(t, importer.OpenData(pngData(t)))
	assert.True(t, importer.IsOpened())
	assert.Equal(t, 1, importer.Image2DCount())

	img, err := importer.Image2D(0)
	require.NoError(t, err)
	assert.Equal(t, trade.R8Unorm, img.Format)
	assert.Equal(t, []byte{0, 0, 77}, img.Data)

	importer.Close()
	assert.False(t, importer.IsOpened())
	assert.Equal(t, 0, importer.Image2DCount())

	_, err = importer.Image2D(0)
	assert.ErrorIs(t, err, trade.ErrNotOpened)
}

func TestDelegatesOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gray.png")
	require.NoError(t, os.WriteFile(path, pngData(t), 0o644))

	importer := New(newManager(t))
	require.NoError(t, importer.OpenFile(path))
	assert.True(t, importer.IsOpened())

	err := importer.OpenFile(filepath.Join(t.TempDir(), "gray.webp"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.False(t, importer.IsOpened())
}

func TestMissingConcreteImporter(t *testing.T) {
	m := pluginmanager.New[trade.Importer](trade.PluginInterface)
	require.NoError(t, Register(m))

	importer := New(m)
	err := importer.OpenData(pngData(t))
	assert.ErrorIs(t, err, pluginmanager.ErrNotFound)
}
