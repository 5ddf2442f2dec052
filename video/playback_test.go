package video

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlaybackStates(t *testing.T) {
	var p Playback
	assert.Equal(t, Stopped, p.State())
	assert.Equal(t, 0, p.Advance(time.Second), "stopped clock does not advance")

	p.Pause()
	assert.Equal(t, Stopped, p.State(), "pausing a stopped clock keeps it stopped")

	p.Play()
	assert.Equal(t, Playing, p.State())

	p.Pause()
	assert.Equal(t, Paused, p.State())
	assert.Equal(t, 0, p.Advance(time.Second))

	assert.Equal(t, "playing", Playing.String())
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "stopped", Stopped.String())
}

func TestPlaybackFrameRate(t *testing.T) {
	var p Playback
	p.SetFrameRate(25)
	p.Play()

	assert.Equal(t, 1, p.Advance(0), "first frame is due immediately")
	assert.Equal(t, 0, p.Advance(20*time.Millisecond))
	assert.Equal(t, 1, p.Advance(20*time.Millisecond))
	assert.Equal(t, 25, p.Advance(time.Second))
	assert.Equal(t, 27, p.Presented())
	assert.Equal(t, 1040*time.Millisecond, p.Position())

	p.Pause()
	p.Play()
	assert.Equal(t, 0, p.Advance(time.Millisecond), "resuming keeps the position")

	p.Stop()
	assert.Equal(t, time.Duration(0), p.Position())
	assert.Equal(t, 0, p.Presented())

	p.Play()
	assert.Equal(t, 1, p.Advance(0))
}

func TestPlaybackUnknownFrameRate(t *testing.T) {
	var p Playback
	p.Play()

	for i := 0; i < 3; i++ {
		assert.Equal(t, 1, p.Advance(time.Millisecond))
	}
	assert.Equal(t, 0, p.Advance(-time.Millisecond))
	assert.Equal(t, 3, p.Presented())
}

func TestInfo(t *testing.T) {
	info := Info{
		Size:       image.Pt(4, 2),
		FrameRate:  30,
		FrameCount: 90,
		Duration:   3 * time.Second,
		Codec:      "h264",
	}

	assert.Equal(t, 32, info.FrameSize())
	assert.Equal(t, "4x2 h264, 30.00 fps, 90 frames, 3s", info.String())
}
