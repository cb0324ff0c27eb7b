// Command pvstretch time-stretches mono audio with a phase vocoder while
// preserving pitch.
//
// Usage:
//
//	pvstretch [flags] <sample_rate>
//
// By default it reads headerless 16-bit little-endian PCM from stdin and
// writes the stretched signal in the same format to stdout.
//
// Examples:
//
//	pvstretch 44100 < in.raw > out.raw
//	pvstretch -stretch 2 -window 2048 44100 < in.raw > out.raw
//	pvstretch -in-format wav -in in.wav -out-format wav -out out.wav 44100
//	pvstretch -fft plan -normalize 48000 < in.raw > out.raw
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
