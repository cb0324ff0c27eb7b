package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return DC(1.0, n)
}

// DeterministicComplex generates complex noise with a fixed seed.
func DeterministicComplex(seed int64, length int) []complex128 {
	out := make([]complex128, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
	}
	return out
}

// DominantBin returns the index of the largest-magnitude bin in the lower
// half of a naive DFT of data. It is a reference check independent of the
// package under test.
func DominantBin(data []float64) int {
	n := len(data)
	best, bestMag := 0, -1.0
	for k := 0; k <= n/2; k++ {
		re, im := 0.0, 0.0
		for j, v := range data {
			angle := -2 * math.Pi * float64(k*j) / float64(n)
			re += v * math.Cos(angle)
			im += v * math.Sin(angle)
		}
		if mag := re*re + im*im; mag > bestMag {
			best, bestMag = k, mag
		}
	}
	return best
}
