// Package anyimageimporter provides the AnyImageImporter plugin. It detects
// the file type and forwards everything to the concrete importer for it.
package anyimageimporter

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsmile/vulkan-video-example/pluginmanager"
	"github.com/ironsmile/vulkan-video-example/trade"
)

// Name is the plugin name.
const Name = "AnyImageImporter"

// ErrUnknownFormat is returned when the file type cannot be detected.
var ErrUnknownFormat = errors.New("cannot determine the image format")

var extensions = map[string]string{
	".tga":  "TgaImporter",
	".png":  "PngImporter",
	".jpg":  "JpegImporter",
	".jpeg": "JpegImporter",
	".jpe":  "JpegImporter",
	".bmp":  "BmpImporter",
}

var signatures = []struct {
	prefix []byte
	plugin string
}{
	{[]byte("\x89PNG\r\n\x1a\n"), "PngImporter"},
	{[]byte{0xff, 0xd8, 0xff}, "JpegImporter"},
	{[]byte("BM"), "BmpImporter"},
}

// tgaFooter ends every TGA 2.0 file. Older TGA files have no signature at
// all and cannot be detected from their contents.
var tgaFooter = []byte("TRUEVISION-XFILE.\x00")

// Importer is the AnyImageImporter implementation.
type Importer struct {
	manager *pluginmanager.Manager[trade.Importer]
	current trade.Importer
}

// New returns an importer which instantiates concrete importers from m.
func New(m *pluginmanager.Manager[trade.Importer]) *Importer {
	return &Importer{manager: m}
}

// Register adds the plugin to m.
func Register(m *pluginmanager.Manager[trade.Importer]) error {
	return m.Register(Name, func() trade.Importer {
		return New(m)
	})
}

// PluginForFile returns the name of the importer handling filename.
func PluginForFile(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%s: %w", filename, ErrUnknownFormat)
	}
	return name, nil
}

// PluginForData returns the name of the importer handling data.
func PluginForData(data []byte) (string, error) {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.prefix) {
			return sig.plugin, nil
		}
	}

	if bytes.HasSuffix(data, tgaFooter) {
		return "TgaImporter", nil
	}

	return "", ErrUnknownFormat
}

// OpenData implements trade.Importer.
func (i *Importer) OpenData(data []byte) error {
	i.Close()

	name, err := PluginForData(data)
	if err != nil {
		return fmt.Errorf("%s: %w", Name, err)
	}

	importer, err := i.instantiate(name)
	if err != nil {
		return err
	}

	if err := importer.OpenData(data); err != nil {
		return err
	}

	i.current = importer
	return nil
}

// OpenFile implements trade.Importer.
func (i *Importer) OpenFile(filename string) error {
	i.Close()

	name, err := PluginForFile(filename)
	if err != nil {
		return fmt.Errorf("%s: %w", Name, err)
	}

	importer, err := i.instantiate(name)
	if err != nil {
		return err
	}

	if err := importer.OpenFile(filename); err != nil {
		return err
	}

	i.current = importer
	return nil
}

func (i *Importer) instantiate(name string) (trade.Importer, error) {
	importer, err := i.manager.LoadAndInstantiate(name)
	if err != nil {
		return nil, fmt.Errorf("%s: cannot load %s: %w", Name, name, err)
	}
	return importer, nil
}

// IsOpened implements trade.Importer.
func (i *Importer) IsOpened() bool {
	return i.current != nil && i.current.IsOpened()
}

// Close implements trade.Importer.
func (i *Importer) Close() {
	if i.current == nil {
		return
	}

	i.current.Close()
	i.current = nil
}

// Image2DCount implements trade.Importer.
func (i *Importer) Image2DCount() int {
	if i.current == nil {
		return 0
	}
	return i.current.Image2DCount()
}

// Image2D implements trade.Importer.
func (i *Importer) Image2D(id int) (*trade.ImageData2D, error) {
	if i.current == nil {
		return nil, fmt.Errorf("%s: %w", Name, trade.ErrNotOpened)
	}
	return i.current.Image2D(id)
}
