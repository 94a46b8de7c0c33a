package faults

import (
	"context"
	"errors"
	"fmt"
)

// #region selectors
// Connectivity selects which neighbours are adjacent when classifying a point.
type Connectivity int

const (
	// PiecewiseLinear uses the Freudenthal triangulation of the grid:
	// 2 neighbours in 1D, 6 in 2D, 14 in 3D.
	PiecewiseLinear Connectivity = 0
	// FullConnectivity uses every point of the surrounding 3^d block.
	FullConnectivity Connectivity = 1
)

// Accelerator selects the execution backend.
type Accelerator int

const (
	AcceleratorNone Accelerator = iota
	AcceleratorParallel
	AcceleratorCUDA
	AcceleratorHIP
)

// ParseAccelerator maps a config name onto an Accelerator.
func ParseAccelerator(name string) (Accelerator, error) {
	switch name {
	case "", "none":
		return AcceleratorNone, nil
	case "parallel":
		return AcceleratorParallel, nil
	case "cuda":
		return AcceleratorCUDA, nil
	case "hip":
		return AcceleratorHIP, nil
	}
	return 0, fmt.Errorf("unknown accelerator %q", name)
}

// #endregion selectors

// #region request
// Dims is the structured grid shape. Width varies fastest.
type Dims struct {
	Width  int
	Height int
	Depth  int
}

// Len returns the number of grid points.
func (d Dims) Len() int {
	return d.Width * d.Height * d.Depth
}

// Request is one fault-counting invocation over two same-shaped fields.
type Request struct {
	Original      []float64
	Reconstructed []float64
	Dims          Dims
	Connectivity  Connectivity
	Accelerator   Accelerator
}

// Counts are only meaningful when CountFaults returned a nil error.
type Counts struct {
	FalseMin    int
	FalseMax    int
	FalseLabels int
}

// Counter classifies both fields and counts points whose classification differs.
type Counter interface {
	CountFaults(ctx context.Context, req Request) (Counts, error)
}

// #endregion request

// #region status
// Status codes reported by a Counter. 1 and 2 are reserved for callers.
const (
	StatusOK                      = 0
	StatusInvalidShape            = 3
	StatusSizeMismatch            = 4
	StatusUnsupportedConnectivity = 5
	StatusUnsupportedAccelerator  = 6
	StatusTransport               = 7
	StatusInternal                = 8
)

// Error is a non-zero status from a Counter.
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("fault counting status %d: %s", e.Code, e.Msg)
}

func errorf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Code returns the status carried by err: 0 for nil, the Error code when err
// wraps an *Error, StatusInternal otherwise.
func Code(err error) int {
	if err == nil {
		return StatusOK
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return StatusInternal
}

// #endregion status
