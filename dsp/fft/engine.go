package fft

import (
	"fmt"
	"strings"
)

// Engine performs in-place forward and inverse transforms of a fixed size.
//
// Implementations are not safe for concurrent use.
type Engine interface {
	// Size returns the transform length.
	Size() int
	// Forward replaces buf with its DFT.
	Forward(buf []complex128) error
	// Inverse replaces buf with its inverse DFT scaled by 1/Size().
	Inverse(buf []complex128) error
}

// Backend selects an [Engine] implementation.
type Backend int

const (
	BackendRadix2 Backend = iota
	BackendPlan
	BackendGonum
	BackendGoDSP
)

var backendNames = map[Backend]string{
	BackendRadix2: "radix2",
	BackendPlan:   "plan",
	BackendGonum:  "gonum",
	BackendGoDSP:  "godsp",
}

// Backends lists every supported backend in declaration order.
func Backends() []Backend {
	return []Backend{BackendRadix2, BackendPlan, BackendGonum, BackendGoDSP}
}

func (b Backend) String() string {
	if name, ok := backendNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// ParseBackend resolves a backend by its String name (case-insensitive).
func ParseBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for b, n := range backendNames {
		if n == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown fft backend %q", name)
}

// NewEngine returns an engine of the given backend and size.
func NewEngine(backend Backend, size int) (Engine, error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}

	switch backend {
	case BackendRadix2:
		return newRadix2Engine(size), nil
	case BackendPlan:
		return newPlanEngine(size)
	case BackendGonum:
		return newGonumEngine(size), nil
	case BackendGoDSP:
		return newGoDSPEngine(size), nil
	default:
		return nil, fmt.Errorf("unknown fft backend: %v", backend)
	}
}

type radix2Engine struct {
	size    int
	scratch []complex128
}

func newRadix2Engine(size int) *radix2Engine {
	return &radix2Engine{size: size, scratch: make([]complex128, size)}
}

func (e *radix2Engine) Size() int { return e.size }

func (e *radix2Engine) Forward(buf []complex128) error {
	if err := checkLen(buf, e.size); err != nil {
		return err
	}
	radix2(buf, e.scratch)
	return nil
}

func (e *radix2Engine) Inverse(buf []complex128) error {
	if err := checkLen(buf, e.size); err != nil {
		return err
	}
	InverseTransform(buf)
	return nil
}
