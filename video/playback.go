package video

import (
	"math"
	"time"
)

// PlaybackState is the state of a video importer.
type PlaybackState int

// Playback states.
const (
	Stopped PlaybackState = iota
	Playing
	Paused
)

func (s PlaybackState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Playback is the playback clock shared by the importers. It counts how much
// playing time passed and how many frames are due at the stream frame rate.
// The zero value is a stopped clock.
type Playback struct {
	state     PlaybackState
	frameRate float64
	position  time.Duration
	presented int
}

// SetFrameRate sets the frame rate of the stream. With a frame rate of zero
// every Advance makes exactly one frame due.
func (p *Playback) SetFrameRate(fps float64) {
	p.frameRate = fps
}

// State returns the current state.
func (p *Playback) State() PlaybackState {
	return p.state
}

// Play starts or resumes playback.
func (p *Playback) Play() {
	p.state = Playing
}

// Pause stops the clock, keeping the position.
func (p *Playback) Pause() {
	if p.state == Playing {
		p.state = Paused
	}
}

// Stop stops the clock and rewinds to the start.
func (p *Playback) Stop() {
	p.state = Stopped
	p.position = 0
	p.presented = 0
}

// Position returns the playing time since the start.
func (p *Playback) Position() time.Duration {
	return p.position
}

// Presented returns the number of frames made due so far.
func (p *Playback) Presented() int {
	return p.presented
}

// Advance moves the clock by dt and returns how many frames became due. The
// first frame is due as soon as playback starts.
func (p *Playback) Advance(dt time.Duration) int {
	if p.state != Playing || dt < 0 {
		return 0
	}

	if p.frameRate <= 0 {
		p.position += dt
		p.presented++
		return 1
	}

	p.position += dt
	// The epsilon keeps frame boundaries from being lost to rounding.
	target := int(math.Floor(p.position.Seconds()*p.frameRate+1e-9)) + 1
	due := target - p.presented
	if due < 0 {
		due = 0
	}
	p.presented += due

	return due
}
