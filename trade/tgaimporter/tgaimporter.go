// Package tgaimporter provides the TgaImporter plugin, reading Truevision TGA
// images.
package tgaimporter

import (
	"github.com/ftrvxmtrx/tga"

	"github.com/ironsmile/vulkan-video-example/pluginmanager"
	"github.com/ironsmile/vulkan-video-example/trade"
)

// Name is the plugin name.
const Name = "TgaImporter"

// New returns a new TgaImporter instance.
func New() trade.Importer {
	return trade.NewSingleImageImporter(Name, tga.Decode)
}

// Register adds the plugin to m.
func Register(m *pluginmanager.Manager[trade.Importer]) error {
	return m.Register(Name, New)
}
