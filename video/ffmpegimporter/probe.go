package ffmpegimporter

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ironsmile/vulkan-video-example/video"
)

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
}

// parseProbe extracts the first video stream from ffprobe JSON output.
func parseProbe(data string) (video.Info, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return video.Info{}, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	for _, stream := range out.Streams {
		if stream.CodecType != "video" {
			continue
		}

		if stream.Width <= 0 || stream.Height <= 0 {
			return video.Info{}, fmt.Errorf("video stream has invalid size %dx%d",
				stream.Width, stream.Height)
		}

		info := video.Info{
			Size:  image.Pt(stream.Width, stream.Height),
			Codec: stream.CodecName,
		}

		info.FrameRate = parseFrameRate(stream.AvgFrameRate)
		if info.FrameRate == 0 {
			info.FrameRate = parseFrameRate(stream.RFrameRate)
		}

		info.Duration = parseSeconds(stream.Duration)
		if info.Duration == 0 {
			info.Duration = parseSeconds(out.Format.Duration)
		}

		if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
			info.FrameCount = n
		} else if info.FrameRate > 0 {
			info.FrameCount = int(math.Round(info.Duration.Seconds() * info.FrameRate))
		}

		return info, nil
	}

	return video.Info{}, fmt.Errorf("no video stream found")
}

// parseFrameRate parses ffprobe rationals such as "30000/1001". Anything
// malformed or with a zero denominator yields zero.
func parseFrameRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	if !found {
		den = "1"
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}

	return n / d
}

func parseSeconds(s string) time.Duration {
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
