// Package flacfile decodes FLAC streams into mono sample slices.
package flacfile

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// Read decodes every frame of a FLAC stream, averaging all channels into
// one. It returns samples normalized by the stream's bit depth and the
// stream's sample rate.
func Read(r io.Reader) ([]float64, int, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, 0, fmt.Errorf("flacfile: open stream: %w", err)
	}

	scale := fullScale(int(stream.Info.BitsPerSample))

	var out []float64
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, 0, fmt.Errorf("flacfile: parse frame after %d samples: %w", len(out), err)
		}

		channels := make([][]int32, len(frame.Subframes))
		for i, sub := range frame.Subframes {
			channels[i] = sub.Samples
		}

		out = mixdown(out, channels, scale)
	}

	return out, int(stream.Info.SampleRate), nil
}

// fullScale returns the magnitude of the largest positive sample value for
// the given bit depth.
func fullScale(bits int) float64 {
	if bits <= 1 {
		return 1
	}
	return float64(int64(1)<<(bits-1) - 1)
}

// mixdown appends the per-sample channel average of channels, divided by
// scale, to dst. Channels shorter than the first are treated as silent.
func mixdown(dst []float64, channels [][]int32, scale float64) []float64 {
	if len(channels) == 0 {
		return dst
	}

	n := len(channels[0])
	norm := 1 / (scale * float64(len(channels)))

	for i := range n {
		sum := 0.0
		for _, ch := range channels {
			if i < len(ch) {
				sum += float64(ch[i])
			}
		}
		dst = append(dst, sum*norm)
	}

	return dst
}
