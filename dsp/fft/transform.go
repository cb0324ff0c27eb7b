package fft

import (
	"math"
	"math/cmplx"
)

// Transform replaces buf with its discrete Fourier transform.
//
// len(buf) must be a power of two. Lengths 0 and 1 are returned unchanged.
func Transform(buf []complex128) {
	if len(buf) <= 1 {
		return
	}

	radix2(buf, make([]complex128, len(buf)))
}

// InverseTransform replaces buf with its inverse discrete Fourier transform,
// scaled by 1/len(buf).
func InverseTransform(buf []complex128) {
	n := len(buf)
	if n == 0 {
		return
	}

	conjugate(buf)
	Transform(buf)
	conjugate(buf)

	scale := 1 / float64(n)
	for i, v := range buf {
		buf[i] = complex(real(v)*scale, imag(v)*scale)
	}
}

// radix2 transforms buf using scratch (same length) for the even/odd split.
// After the split buf holds nothing live, so its halves become the scratch
// space of the two recursive calls.
func radix2(buf, scratch []complex128) {
	n := len(buf)
	if n <= 1 {
		return
	}

	half := n / 2
	even := scratch[:half]
	odd := scratch[half:n]

	for i := range half {
		even[i] = buf[2*i]
		odd[i] = buf[2*i+1]
	}

	radix2(even, buf[:half])
	radix2(odd, buf[half:])

	step := -2 * math.Pi / float64(n)
	for k := range half {
		t := cmplx.Rect(1, step*float64(k)) * odd[k]
		buf[k] = even[k] + t
		buf[k+half] = even[k] - t
	}
}

func conjugate(buf []complex128) {
	for i, v := range buf {
		buf[i] = cmplx.Conj(v)
	}
}
