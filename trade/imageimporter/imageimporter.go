// Package imageimporter provides importer plugins for the common image formats
// decoded by the Go image packages: PngImporter, JpegImporter and BmpImporter.
package imageimporter

import (
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"

	"github.com/ironsmile/vulkan-video-example/pluginmanager"
	"github.com/ironsmile/vulkan-video-example/trade"
)

// Plugin names.
const (
	PngImporter  = "PngImporter"
	JpegImporter = "JpegImporter"
	BmpImporter  = "BmpImporter"
)

// NewPng returns a new PngImporter instance.
func NewPng() trade.Importer {
	return trade.NewSingleImageImporter(PngImporter, png.Decode)
}

// NewJpeg returns a new JpegImporter instance.
func NewJpeg() trade.Importer {
	return trade.NewSingleImageImporter(JpegImporter, jpeg.Decode)
}

// NewBmp returns a new BmpImporter instance.
func NewBmp() trade.Importer {
	return trade.NewSingleImageImporter(BmpImporter, bmp.Decode)
}

// Register adds all plugins of this package to m.
func Register(m *pluginmanager.Manager[trade.Importer]) error {
	plugins := []struct {
		name    string
		factory func() trade.Importer
	}{
		{PngImporter, NewPng},
		{JpegImporter, NewJpeg},
		{BmpImporter, NewBmp},
	}

	for _, p := range plugins {
		if err := m.Register(p.name, p.factory); err != nil {
			return err
		}
	}

	return nil
}
