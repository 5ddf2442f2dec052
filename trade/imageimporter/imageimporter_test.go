package imageimporter

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/ironsmile/vulkan-video-example/pluginmanager"
	"github.com/ironsmile/vulkan-video-example/trade"
)

// testImage returns an opaque 4x3 gradient.
func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 100), B: 80, A: 0xff})
		}
	}
	return img
}

func encodeJpeg(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
}

func TestImport(t *testing.T) {
	tests := []struct {
		name     string
		factory  func() trade.Importer
		encode   func(io.Writer, image.Image) error
		lossless bool
	}{
		{name: PngImporter, factory: NewPng, encode: png.Encode, lossless: true},
		{name: JpegImporter, factory: NewJpeg, encode: encodeJpeg},
		{name: BmpImporter, factory: NewBmp, encode: bmp.Encode, lossless: true},
	}

	src := testImage()

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, test.encode(&buf, src))

			importer := test.factory()
			require.NoError(t, importer.OpenData(buf.Bytes()))
			assert.True(t, importer.IsOpened())
			assert.Equal(t, 1, importer.Image2DCount())

			img, err := importer.Image2D(0)
			require.NoError(t, err)
			assert.Equal(t, trade.RGB8Unorm, img.Format)
			assert.Equal(t, image.Pt(4, 3), img.Size)
			assert.NoError(t, img.Validate())

			if test.lossless {
				// Bottom right pixel, three bytes per pixel.
				last := img.Data[len(img.Data)-3:]
				assert.Equal(t, []byte{180, 200, 80}, last)
			}

			_, err = importer.Image2D(1)
			assert.ErrorIs(t, err, trade.ErrImageOutOfRange)

			importer.Close()
			assert.False(t, importer.IsOpened())
		})
	}
}

func TestImportGray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.SetGray(1, 1, color.Gray{Y: 42})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	importer := NewPng()
	require.NoError(t, importer.OpenData(buf.Bytes()))

	img, err := importer.Image2D(0)
	require.NoError(t, err)
	assert.Equal(t, trade.R8Unorm, img.Format)
	assert.Equal(t, []byte{0, 0, 0, 42}, img.Data)
}

func TestImportWrongFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))

	for _, importer := range []trade.Importer{NewJpeg(), NewBmp()} {
		assert.Error(t, importer.OpenData(buf.Bytes()))
		assert.False(t, importer.IsOpened())
	}
}

func TestRegister(t *testing.T) {
	m := pluginmanager.New[trade.Importer](trade.PluginInterface)
	require.NoError(t, Register(m))

	for _, name := range []string{PngImporter, JpegImporter, BmpImporter} {
		importer, err := m.LoadAndInstantiate(name)
		require.NoError(t, err, name)
		assert.False(t, importer.IsOpened())
	}

	assert.ErrorIs(t, Register(m), pluginmanager.ErrAlreadyRegistered)
}
