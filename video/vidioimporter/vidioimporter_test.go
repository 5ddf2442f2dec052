package vidioimporter

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsmile/vulkan-video-example/pluginmanager"
	"github.com/ironsmile/vulkan-video-example/video"
)

// fakeSource yields count 1x1 frames, frame n filled with the value n.
type fakeSource struct {
	count  int
	read   int
	buf    []byte
	closed bool
}

func (s *fakeSource) Read() bool {
	if s.read >= s.count {
		return false
	}
	for i := range s.buf {
		s.buf[i] = byte(s.read)
	}
	s.read++
	return true
}

func (s *fakeSource) FrameBuffer() []byte { return s.buf }
func (s *fakeSource) Close()              { s.closed = true }

type fakeOpener struct {
	count   int
	sources []*fakeSource
	err     error
}

func (o *fakeOpener) open(string) (frameSource, video.Info, error) {
	if o.err != nil {
		return nil, video.Info{}, o.err
	}

	src := &fakeSource{count: o.count, buf: make([]byte, 4)}
	o.sources = append(o.sources, src)

	return src, video.Info{
		Size:       image.Pt(1, 1),
		FrameRate:  10,
		FrameCount: o.count,
		Duration:   time.Duration(o.count) * 100 * time.Millisecond,
		Codec:      "fake",
	}, nil
}

func videoFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "video.mp4")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func TestOpenAndClose(t *testing.T) {
	opener := &fakeOpener{count: 3}
	importer := newImporter(opener.open)

	require.NoError(t, importer.OpenFile(videoFile(t)))
	assert.True(t, importer.IsOpened())
	assert.Equal(t, "fake", importer.Info().Codec)

	require.NoError(t, importer.Close())
	assert.False(t, importer.IsOpened())
	require.Len(t, opener.sources, 1)
	assert.True(t, opener.sources[0].closed)
}

func TestOpenErrors(t *testing.T) {
	openErr := errors.New("ffprobe not found")
	importer := newImporter((&fakeOpener{err: openErr}).open)

	assert.ErrorIs(t, importer.OpenFile(videoFile(t)), openErr)
	assert.ErrorIs(t, importer.OpenFile("/does/not/exist.mp4"), os.ErrNotExist)
	assert.False(t, importer.IsOpened())

	importer.Play()
	assert.Equal(t, video.Stopped, importer.State())

	_, err := importer.Advance(time.Second)
	assert.ErrorIs(t, err, video.ErrNotOpened)
}

func TestPlayback(t *testing.T) {
	opener := &fakeOpener{count: 5}
	importer := newImporter(opener.open)
	require.NoError(t, importer.OpenFile(videoFile(t)))

	frame, err := importer.Advance(time.Second)
	require.NoError(t, err)
	assert.Nil(t, frame, "not playing yet")

	importer.Play()
	assert.True(t, importer.IsPlaying())

	frame, err = importer.Advance(0)
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, 0, frame.Index)
	assert.Equal(t, []byte{0, 0, 0, 0}, frame.Pix)

	frame, err = importer.Advance(50 * time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, frame)

	frame, err = importer.Advance(250 * time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, 3, frame.Index, "frames in between are skipped")
	assert.Equal(t, byte(3), frame.Pix[0])

	_, err = importer.Advance(time.Second)
	assert.ErrorIs(t, err, video.ErrEndOfStream)
	assert.Equal(t, video.Stopped, importer.State())
	assert.True(t, importer.IsOpened())
}

func TestStopReopens(t *testing.T) {
	opener := &fakeOpener{count: 5}
	importer := newImporter(opener.open)
	require.NoError(t, importer.OpenFile(videoFile(t)))

	importer.Play()
	_, err := importer.Advance(200 * time.Millisecond)
	require.NoError(t, err)

	importer.Stop()
	require.Len(t, opener.sources, 1)
	assert.True(t, opener.sources[0].closed)

	importer.Play()
	frame, err := importer.Advance(0)
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, 0, frame.Index)
	assert.Len(t, opener.sources, 2)
}

func TestRegister(t *testing.T) {
	m := pluginmanager.New[video.Importer](video.PluginInterface)
	require.NoError(t, Register(m))

	importer, err := m.LoadAndInstantiate(Name)
	require.NoError(t, err)
	assert.IsType(t, &Importer{}, importer)
	assert.Equal(t, []string{video.AnyVideoImporter}, m.AliasList())
}
