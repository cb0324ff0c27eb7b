// Package wavfile reads and writes RIFF/WAVE containers as mono sample
// slices.
package wavfile

import (
	"errors"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

const (
	streamChunk = 512
	precision16 = 2
	precision24 = 3
)

var errSampleRate = errors.New("wav sample rate must be > 0")

// Read decodes a WAV stream, averaging all channels into one. It returns the
// samples in [-1, 1] and the stream's sample rate.
func Read(r io.Reader) ([]float64, int, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, 0, fmt.Errorf("wavfile: decode: %w", err)
	}
	defer streamer.Close()

	var (
		out   []float64
		buf   = make([][2]float64, streamChunk)
		scale = decodeScale(format.Precision) / 2
	)

	for {
		n, ok := streamer.Stream(buf)
		for _, frame := range buf[:n] {
			out = append(out, (frame[0]+frame[1])*scale)
		}

		if !ok {
			break
		}
	}

	if err := streamer.Err(); err != nil {
		return nil, 0, fmt.Errorf("wavfile: stream: %w", err)
	}

	return out, int(format.SampleRate), nil
}

// decodeScale maps beep's decoded range back to full scale. beep divides
// 16- and 24-bit samples by 2^bits-1 rather than by the positive peak.
func decodeScale(precision int) float64 {
	switch precision {
	case precision16:
		return float64(1<<16-1) / float64(1<<15-1)
	case precision24:
		return float64(1<<24-1) / float64(1<<23-1)
	default:
		return 1
	}
}

// Write encodes samples as a 16-bit mono WAV file. Values outside [-1, 1]
// are clamped by the encoder.
func Write(w io.WriteSeeker, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wavfile: %w: %d", errSampleRate, sampleRate)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 1,
		Precision:   precision16,
	}

	pos := 0
	streamer := beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}

		n := min(len(buf), len(samples)-pos)
		for i := range n {
			v := samples[pos+i]
			buf[i] = [2]float64{v, v}
		}
		pos += n

		return n, true
	})

	if err := wav.Encode(w, streamer, format); err != nil {
		return fmt.Errorf("wavfile: encode: %w", err)
	}

	return nil
}
