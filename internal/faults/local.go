package faults

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// #region label
// Label is the critical-point classification of one grid point.
type Label uint8

const (
	Regular Label = iota
	Minimum
	Maximum
)

func (l Label) String() string {
	switch l {
	case Minimum:
		return "minimum"
	case Maximum:
		return "maximum"
	default:
		return "regular"
	}
}

// #endregion label

// #region local
// Local counts faults in-process.
type Local struct {
	// Workers bounds the goroutines used by AcceleratorParallel.
	// Zero means runtime.NumCPU().
	Workers int
}

// NewLocal returns a Local counter with the given worker bound.
func NewLocal(workers int) *Local {
	return &Local{Workers: workers}
}

// CountFaults implements Counter.
func (l *Local) CountFaults(ctx context.Context, req Request) (Counts, error) {
	if err := validate(req); err != nil {
		return Counts{}, err
	}
	offsets, err := neighbourOffsets(req.Connectivity)
	if err != nil {
		return Counts{}, err
	}

	switch req.Accelerator {
	case AcceleratorNone:
		if err := ctx.Err(); err != nil {
			return Counts{}, errorf(StatusInternal, "cancelled: %v", err)
		}
		return countRange(req, offsets, 0, req.Dims.Len()), nil
	case AcceleratorParallel:
		return l.countParallel(ctx, req, offsets)
	default:
		return Counts{}, errorf(StatusUnsupportedAccelerator, "accelerator %d not available", req.Accelerator)
	}
}

func (l *Local) countParallel(ctx context.Context, req Request, offsets [][3]int) (Counts, error) {
	workers := l.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	n := req.Dims.Len()
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	partial := make([]Counts, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partial[w] = countRange(req, offsets, lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Counts{}, errorf(StatusInternal, "cancelled: %v", err)
	}

	var total Counts
	for _, c := range partial {
		total.FalseMin += c.FalseMin
		total.FalseMax += c.FalseMax
		total.FalseLabels += c.FalseLabels
	}
	return total, nil
}

// #endregion local

// #region classify
func validate(req Request) error {
	d := req.Dims
	if d.Width < 1 || d.Height < 1 || d.Depth < 1 {
		return errorf(StatusInvalidShape, "dims %dx%dx%d", d.Width, d.Height, d.Depth)
	}
	if d.Len() != len(req.Original) {
		return errorf(StatusInvalidShape, "dims %dx%dx%d do not cover %d samples", d.Width, d.Height, d.Depth, len(req.Original))
	}
	if len(req.Reconstructed) != len(req.Original) {
		return errorf(StatusSizeMismatch, "original has %d samples, reconstructed %d", len(req.Original), len(req.Reconstructed))
	}
	return nil
}

// neighbourOffsets lists the (dx, dy, dz) steps that are adjacent under c.
// Piecewise-linear keeps steps whose non-zero components share a sign.
func neighbourOffsets(c Connectivity) ([][3]int, error) {
	if c != PiecewiseLinear && c != FullConnectivity {
		return nil, errorf(StatusUnsupportedConnectivity, "connectivity %d", c)
	}
	var out [][3]int
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				if c == PiecewiseLinear {
					hasPos := dx > 0 || dy > 0 || dz > 0
					hasNeg := dx < 0 || dy < 0 || dz < 0
					if hasPos && hasNeg {
						continue
					}
				}
				out = append(out, [3]int{dx, dy, dz})
			}
		}
	}
	return out, nil
}

func countRange(req Request, offsets [][3]int, lo, hi int) Counts {
	var c Counts
	for i := lo; i < hi; i++ {
		a := classify(req.Original, req.Dims, offsets, i)
		b := classify(req.Reconstructed, req.Dims, offsets, i)
		if (a == Minimum) != (b == Minimum) {
			c.FalseMin++
		}
		if (a == Maximum) != (b == Maximum) {
			c.FalseMax++
		}
		if a != b {
			c.FalseLabels++
		}
	}
	return c
}

// classify labels point i. Equal values are ordered by linear index so every
// field has a strict total order. A point with no neighbours is regular.
func classify(values []float64, d Dims, offsets [][3]int, i int) Label {
	x := i % d.Width
	y := (i / d.Width) % d.Height
	z := i / (d.Width * d.Height)

	lower, upper := 0, 0
	for _, o := range offsets {
		nx, ny, nz := x+o[0], y+o[1], z+o[2]
		if nx < 0 || nx >= d.Width || ny < 0 || ny >= d.Height || nz < 0 || nz >= d.Depth {
			continue
		}
		j := nx + d.Width*(ny+d.Height*nz)
		if below(values, j, i) {
			lower++
		} else {
			upper++
		}
	}

	switch {
	case lower+upper == 0:
		return Regular
	case lower == 0:
		return Minimum
	case upper == 0:
		return Maximum
	}
	return Regular
}

func below(values []float64, a, b int) bool {
	if values[a] != values[b] {
		return values[a] < values[b]
	}
	return a < b
}

// #endregion classify

// #region override
type acceleratorOverride struct {
	next Counter
	acc  Accelerator
}

// WithAccelerator returns a Counter that runs every request on acc, whatever
// the caller asked for. AcceleratorNone returns next unchanged.
func WithAccelerator(next Counter, acc Accelerator) Counter {
	if acc == AcceleratorNone {
		return next
	}
	return acceleratorOverride{next: next, acc: acc}
}

func (o acceleratorOverride) CountFaults(ctx context.Context, req Request) (Counts, error) {
	req.Accelerator = o.acc
	return o.next.CountFaults(ctx, req)
}

// #endregion override
