// Package trade defines image importer plugins and the image data they
// produce.
package trade

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
)

// PluginInterface is the plugin interface string of image importers.
const PluginInterface = "trade.Importer/1"

var (
	// ErrNotOpened is returned when asking for images before opening a file.
	ErrNotOpened = errors.New("no file opened")

	// ErrImageOutOfRange is returned for image IDs past Image2DCount.
	ErrImageOutOfRange = errors.New("image index out of range")
)

// Importer opens image files and gives access to the images within.
type Importer interface {
	// OpenData opens an image from memory. The importer keeps a reference
	// to data only until OpenData returns.
	OpenData(data []byte) error

	// OpenFile opens an image from the file system.
	OpenFile(filename string) error

	IsOpened() bool
	Close()

	Image2DCount() int
	Image2D(id int) (*ImageData2D, error)
}

// DecodeFunc decodes one image from r.
type DecodeFunc func(r io.Reader) (image.Image, error)

// SingleImageImporter implements Importer for formats holding one image per
// file, decoding with the supplied function.
type SingleImageImporter struct {
	name   string
	decode DecodeFunc
	image  *ImageData2D
}

// NewSingleImageImporter returns an importer which decodes with decode. The
// name is used in error messages.
func NewSingleImageImporter(name string, decode DecodeFunc) *SingleImageImporter {
	return &SingleImageImporter{
		name:   name,
		decode: decode,
	}
}

// OpenData implements Importer.
func (i *SingleImageImporter) OpenData(data []byte) error {
	i.Close()

	if len(data) == 0 {
		return fmt.Errorf("%s: empty data", i.name)
	}

	return i.open(bytes.NewReader(data))
}

// OpenFile implements Importer.
func (i *SingleImageImporter) OpenFile(filename string) error {
	i.Close()

	fh, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("%s: %w", i.name, err)
	}
	defer fh.Close()

	return i.open(fh)
}

func (i *SingleImageImporter) open(r io.Reader) error {
	img, err := i.decode(r)
	if err != nil {
		return fmt.Errorf("%s: decoding: %w", i.name, err)
	}

	data := FromImage(img)
	if err := data.Validate(); err != nil {
		return fmt.Errorf("%s: %w", i.name, err)
	}

	i.image = data
	return nil
}

// IsOpened implements Importer.
func (i *SingleImageImporter) IsOpened() bool {
	return i.image != nil
}

// Close implements Importer.
func (i *SingleImageImporter) Close() {
	i.image = nil
}

// Image2DCount implements Importer.
func (i *SingleImageImporter) Image2DCount() int {
	if i.image == nil {
		return 0
	}
	return 1
}

// Image2D implements Importer.
func (i *SingleImageImporter) Image2D(id int) (*ImageData2D, error) {
	if i.image == nil {
		return nil, fmt.Errorf("%s: %w", i.name, ErrNotOpened)
	}
	if id != 0 {
		return nil, fmt.Errorf("%s: image %d: %w", i.name, id, ErrImageOutOfRange)
	}
	return i.image, nil
}
