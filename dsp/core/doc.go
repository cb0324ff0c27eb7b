// Package core holds small numeric and buffer helpers shared by the dsp packages.
package core
