// Package pcm reads and writes headerless little-endian 16-bit mono PCM.
//
// Samples are normalized by 32767, so -32768 decodes slightly below -1.
// Encoding clamps to [-1, 1] and truncates toward zero.
package pcm

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cwbudde/algo-pvoc/dsp/core"
)

// MaxInt16 is the full-scale value used for normalization.
const MaxInt16 = 32767

// Int16ToSample converts a PCM value to a normalized sample.
func Int16ToSample(v int16) float64 {
	return float64(v) / MaxInt16
}

// SampleToInt16 clamps x to [-1, 1] and scales it to a PCM value,
// truncating toward zero.
func SampleToInt16(x float64) int16 {
	return int16(core.Clamp(x, -1, 1) * MaxInt16)
}

// Decode reads samples until EOF. A trailing odd byte is ignored.
func Decode(r io.Reader) ([]float64, error) {
	br := bufio.NewReader(r)

	var (
		out []float64
		buf [2]byte
	)

	for {
		_, err := io.ReadFull(br, buf[:])
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return out, nil
		}

		if err != nil {
			return nil, fmt.Errorf("pcm: read sample %d: %w", len(out), err)
		}

		out = append(out, Int16ToSample(int16(binary.LittleEndian.Uint16(buf[:]))))
	}
}

// Encode writes samples as 16-bit little-endian PCM.
func Encode(w io.Writer, samples []float64) error {
	bw := bufio.NewWriter(w)

	var buf [2]byte
	for i, x := range samples {
		binary.LittleEndian.PutUint16(buf[:], uint16(SampleToInt16(x)))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("pcm: write sample %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("pcm: flush: %w", err)
	}

	return nil
}
