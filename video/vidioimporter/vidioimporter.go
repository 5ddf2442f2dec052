// Package vidioimporter provides the VidioVideoImporter plugin, reading
// frames with github.com/AlexEidt/Vidio.
package vidioimporter

import (
	"fmt"
	"image"
	"os"
	"time"

	vidio "github.com/AlexEidt/Vidio"

	"github.com/ironsmile/vulkan-video-example/pluginmanager"
	"github.com/ironsmile/vulkan-video-example/video"
)

// Name is the plugin name.
const Name = "VidioVideoImporter"

// frameSource is the part of *vidio.Video used for playback.
type frameSource interface {
	Read() bool
	FrameBuffer() []byte
	Close()
}

type openFunc func(filename string) (frameSource, video.Info, error)

func openVidio(filename string) (frameSource, video.Info, error) {
	v, err := vidio.NewVideo(filename)
	if err != nil {
		return nil, video.Info{}, err
	}

	info := video.Info{
		Size:       image.Pt(v.Width(), v.Height()),
		FrameRate:  v.FPS(),
		FrameCount: v.Frames(),
		Duration:   time.Duration(v.Duration() * float64(time.Second)),
		Codec:      v.Codec(),
	}

	return v, info, nil
}

// Importer is the VidioVideoImporter implementation. Frames are decoded on
// the calling goroutine.
type Importer struct {
	open openFunc

	filename string
	info     video.Info
	source   frameSource

	playback video.Playback
	decoded  int
}

// New returns a new VidioVideoImporter instance.
func New() video.Importer {
	return newImporter(openVidio)
}

func newImporter(open openFunc) *Importer {
	return &Importer{open: open}
}

// Register adds the plugin to m.
func Register(m *pluginmanager.Manager[video.Importer]) error {
	return m.Register(Name, New, video.AnyVideoImporter)
}

// OpenFile implements video.Importer.
func (i *Importer) OpenFile(filename string) error {
	i.Close()

	if _, err := os.Stat(filename); err != nil {
		return fmt.Errorf("%s: %w", Name, err)
	}

	source, info, err := i.open(filename)
	if err != nil {
		return fmt.Errorf("%s: opening %s: %w", Name, filename, err)
	}

	i.filename = filename
	i.source = source
	i.info = info
	i.playback.SetFrameRate(info.FrameRate)

	return nil
}

// IsOpened implements video.Importer.
func (i *Importer) IsOpened() bool {
	return i.filename != ""
}

// Close implements video.Importer.
func (i *Importer) Close() error {
	i.closeSource()
	i.playback.Stop()
	i.filename = ""
	i.info = video.Info{}

	return nil
}

func (i *Importer) closeSource() {
	if i.source != nil {
		i.source.Close()
		i.source = nil
	}
	i.decoded = 0
}

// Info implements video.Importer.
func (i *Importer) Info() video.Info {
	return i.info
}

// Play implements video.Importer.
func (i *Importer) Play() {
	if !i.IsOpened() {
		return
	}
	i.playback.Play()
}

// Pause implements video.Importer.
func (i *Importer) Pause() {
	i.playback.Pause()
}

// Stop implements video.Importer. The video is reopened on the next frame so
// playback starts over.
func (i *Importer) Stop() {
	i.playback.Stop()
	i.closeSource()
}

// State implements video.Importer.
func (i *Importer) State() video.PlaybackState {
	return i.playback.State()
}

// IsPlaying implements video.Importer.
func (i *Importer) IsPlaying() bool {
	return i.playback.State() == video.Playing
}

// Advance implements video.Importer.
func (i *Importer) Advance(dt time.Duration) (*video.Frame, error) {
	if !i.IsOpened() {
		return nil, fmt.Errorf("%s: %w", Name, video.ErrNotOpened)
	}

	due := i.playback.Advance(dt)
	if due == 0 {
		return nil, nil
	}

	if i.source == nil {
		source, _, err := i.open(i.filename)
		if err != nil {
			i.playback.Stop()
			return nil, fmt.Errorf("%s: reopening %s: %w", Name, i.filename, err)
		}
		i.source = source
	}

	for n := 0; n < due; n++ {
		if !i.source.Read() {
			i.Stop()
			return nil, video.ErrEndOfStream
		}
		i.decoded++
	}

	// The frame buffer is reused by the next Read.
	buf := i.source.FrameBuffer()
	pix := make([]byte, len(buf))
	copy(pix, buf)

	return &video.Frame{
		Index: i.decoded - 1,
		Size:  i.info.Size,
		Pix:   pix,
	}, nil
}
