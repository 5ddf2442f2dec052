package textures

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsmile/vulkan-video-example/trade"
	"github.com/ironsmile/vulkan-video-example/trade/tgaimporter"
)

func TestStoneTexture(t *testing.T) {
	data, err := FS.ReadFile(StoneTGA)
	require.NoError(t, err)

	importer := tgaimporter.New()
	require.NoError(t, importer.OpenData(data))
	defer importer.Close()

	require.Equal(t, 1, importer.Image2DCount())
	img, err := importer.Image2D(0)
	require.NoError(t, err)

	assert.Equal(t, trade.RGB8Unorm, img.Format)
	assert.Equal(t, image.Pt(64, 64), img.Size)
	assert.NoError(t, img.Validate())
}
