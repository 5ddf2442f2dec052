// Package ffmpegimporter provides the FfmpegVideoImporter plugin. Metadata
// comes from ffprobe and frames are decoded by an ffmpeg process writing raw
// RGBA frames to a pipe.
package ffmpegimporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	"github.com/ironsmile/vulkan-video-example/pluginmanager"
	"github.com/ironsmile/vulkan-video-example/video"
)

// Name is the plugin name.
const Name = "FfmpegVideoImporter"

// bufferedFrames is how many decoded frames may wait for the render loop.
const bufferedFrames = 4

type (
	probeFunc  func(filename string) (string, error)
	streamFunc func(filename string, w io.Writer) error
)

func ffprobe(filename string) (string, error) {
	return ffmpeg.Probe(filename)
}

func ffmpegStream(filename string, w io.Writer) error {
	return ffmpeg.Input(filename).
		Output("pipe:", ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgba",
		}).
		WithOutput(w).
		Run()
}

// Importer is the FfmpegVideoImporter implementation.
type Importer struct {
	probe  probeFunc
	stream streamFunc

	filename string
	info     video.Info
	opened   bool

	playback video.Playback
	decoder  *decoder

	// pending counts frames which are due but were not decoded in time.
	pending int
	decoded int
}

// New returns a new FfmpegVideoImporter instance.
func New() video.Importer {
	return newImporter(ffprobe, ffmpegStream)
}

func newImporter(probe probeFunc, stream streamFunc) *Importer {
	return &Importer{
		probe:  probe,
		stream: stream,
	}
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

	out, err := i.probe(filename)
	if err != nil {
		return fmt.Errorf("%s: probing %s: %w", Name, filename, err)
	}

	info, err := parseProbe(out)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", Name, filename, err)
	}

	i.filename = filename
	i.info = info
	i.opened = true
	i.playback.SetFrameRate(info.FrameRate)

	return nil
}

// IsOpened implements video.Importer.
func (i *Importer) IsOpened() bool {
	return i.opened
}

// Close implements video.Importer.
func (i *Importer) Close() error {
	i.stopDecoder()

	i.playback.Stop()
	i.opened = false
	i.filename = ""
	i.info = video.Info{}

	return nil
}

// Info implements video.Importer.
func (i *Importer) Info() video.Info {
	return i.info
}

// Play implements video.Importer.
func (i *Importer) Play() {
	if !i.opened {
		return
	}
	i.playback.Play()
}

// Pause implements video.Importer.
func (i *Importer) Pause() {
	i.playback.Pause()
}

// Stop implements video.Importer. The next Play starts from the beginning.
func (i *Importer) Stop() {
	i.playback.Stop()
	i.stopDecoder()
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
	if !i.opened {
		return nil, fmt.Errorf("%s: %w", Name, video.ErrNotOpened)
	}

	if !i.IsPlaying() {
		return nil, nil
	}

	i.pending += i.playback.Advance(dt)
	if i.pending == 0 {
		return nil, nil
	}

	if i.decoder == nil {
		i.decoder = startDecoder(i.filename, i.info.FrameSize(), i.stream)
	}

	var last []byte
	for i.pending > 0 {
		pix, ok, ready := i.decoder.next()
		if !ready {
			break
		}

		if !ok {
			err := i.decoder.wait()
			i.decoder = nil
			i.pending = 0
			i.decoded = 0
			i.playback.Stop()
			if err != nil {
				return nil, fmt.Errorf("%s: decoding: %w", Name, err)
			}
			return nil, video.ErrEndOfStream
		}

		last = pix
		i.decoded++
		i.pending--
	}

	if last == nil {
		return nil, nil
	}

	return &video.Frame{
		Index: i.decoded - 1,
		Size:  i.info.Size,
		Pix:   last,
	}, nil
}

func (i *Importer) stopDecoder() {
	if i.decoder == nil {
		return
	}

	i.decoder.abort()
	i.decoder = nil
	i.pending = 0
	i.decoded = 0
}

// decoder runs the stream function in the background and splits its output
// into frames.
type decoder struct {
	frames chan []byte
	cancel context.CancelFunc
	reader *io.PipeReader
	group  *errgroup.Group
}

func startDecoder(filename string, frameSize int, stream streamFunc) *decoder {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	pr, pw := io.Pipe()

	d := &decoder{
		frames: make(chan []byte, bufferedFrames),
		cancel: cancel,
		reader: pr,
		group:  group,
	}

	group.Go(func() error {
		err := stream(filename, pw)
		pw.CloseWithError(err)
		return err
	})

	group.Go(func() error {
		defer close(d.frames)

		for {
			buf := make([]byte, frameSize)
			if _, err := io.ReadFull(pr, buf); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					return nil
				}
				return err
			}

			select {
			case d.frames <- buf:
			case <-ctx.Done():
				return nil
			}
		}
	})

	return d
}

// next returns the next decoded frame without blocking. ready is false when
// no frame is decoded yet, ok is false once the stream is exhausted.
func (d *decoder) next() (pix []byte, ok bool, ready bool) {
	select {
	case pix, ok := <-d.frames:
		return pix, ok, true
	default:
		return nil, false, false
	}
}

// wait returns the first decoding error once the stream has ended on its own.
func (d *decoder) wait() error {
	defer d.cancel()
	return d.group.Wait()
}

// abort stops a stream which may still be running. Errors caused by closing
// the pipe under the stream are expected and dropped.
func (d *decoder) abort() {
	d.cancel()
	d.reader.CloseWithError(io.ErrClosedPipe)
	_ = d.group.Wait()
}
