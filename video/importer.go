// Package video defines video importer plugins and their playback model.
package video

import (
	"errors"
	"fmt"
	"image"
	"time"
)

// PluginInterface is the plugin interface string of video importers.
const PluginInterface = "video.Importer/1"

// AnyVideoImporter is the alias provided by every video importer in this
// module.
const AnyVideoImporter = "AnyVideoImporter"

var (
	// ErrNotOpened is returned when playing back before opening a file.
	ErrNotOpened = errors.New("no video opened")

	// ErrEndOfStream is returned by Advance once the last frame was shown.
	ErrEndOfStream = errors.New("end of video stream")
)

// Importer opens video files and decodes their frames during playback.
type Importer interface {
	OpenFile(filename string) error
	IsOpened() bool
	Close() error

	// Info describes the opened video.
	Info() Info

	Play()
	Pause()
	Stop()
	State() PlaybackState
	IsPlaying() bool

	// Advance moves playback forward by dt. It returns the newest frame which
	// became due or nil when the previously returned frame is still current.
	// Once the stream ends playback stops and ErrEndOfStream is returned.
	Advance(dt time.Duration) (*Frame, error)
}

// Info describes a video stream.
type Info struct {
	Size       image.Point
	FrameRate  float64
	FrameCount int
	Duration   time.Duration
	Codec      string
}

func (i Info) String() string {
	return fmt.Sprintf("%dx%d %s, %.2f fps, %d frames, %s",
		i.Size.X, i.Size.Y, i.Codec, i.FrameRate, i.FrameCount, i.Duration)
}

// FrameSize returns the size in bytes of one RGBA frame.
func (i Info) FrameSize() int {
	return i.Size.X * i.Size.Y * 4
}

// Frame is one decoded RGBA8 video frame, top row first.
type Frame struct {
	Index int
	Size  image.Point
	Pix   []byte
}
