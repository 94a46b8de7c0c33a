package metrics

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/falselabel/internal/faults"
	"github.com/danielpatrickdp/falselabel/internal/field"
	"github.com/danielpatrickdp/falselabel/internal/options"
)

// #region constants
const (
	// FalseLabelRatioID keys the plugin in the registry and prefixes its options.
	FalseLabelRatioID = "msz_false_label_ratio"

	KeyFalseLabelRatio = FalseLabelRatioID + ":false_label_ratio"
	KeyStability       = "pressio:stability"
	KeyThreadSafe      = "pressio:thread_safe"
	KeyDescription     = "pressio:description"
)

// #endregion constants

// #region plugin-struct
// FalseLabelRatio reports the fraction of grid points whose critical-point
// classification changed across a compress/decompress round trip.
type FalseLabelRatio struct {
	counter faults.Counter
	ratio   Ratio
	lastErr error
}

// NewFalseLabelRatio returns a plugin that delegates classification to counter.
func NewFalseLabelRatio(counter faults.Counter) *FalseLabelRatio {
	return &FalseLabelRatio{counter: counter}
}

// #endregion plugin-struct

// #region lifecycle
// BeginCompress does nothing: the metric needs both fields.
func (p *FalseLabelRatio) BeginCompress(_, _ *field.Buffer) error {
	return nil
}

// EndDecompress compares input against output and stores the ratio. Any
// failure leaves the ratio absent so results never describe an earlier run.
func (p *FalseLabelRatio) EndDecompress(input, output *field.Buffer) error {
	if input == nil || output == nil {
		return p.fail(&StatusError{Code: StatusMissingInput, Err: ErrMissingInput})
	}

	orig, err := field.View(input)
	if err != nil {
		return p.fail(&StatusError{Code: StatusInvalidField, Err: fmt.Errorf("%w: original: %w", ErrInvalidField, err)})
	}
	recon, err := field.View(output)
	if err != nil {
		return p.fail(&StatusError{Code: StatusInvalidField, Err: fmt.Errorf("%w: reconstructed: %w", ErrInvalidField, err)})
	}

	dims := faults.Dims{Width: orig.Width, Height: orig.Height, Depth: orig.Depth}
	if got := (faults.Dims{Width: recon.Width, Height: recon.Height, Depth: recon.Depth}); got != dims {
		return p.fail(&StatusError{Code: faults.StatusSizeMismatch, Err: fmt.Errorf(
			"%w: original %dx%dx%d, reconstructed %dx%dx%d", field.ErrShapeMismatch,
			dims.Width, dims.Height, dims.Depth, got.Width, got.Height, got.Depth)})
	}
	counts, err := p.counter.CountFaults(context.Background(), faults.Request{
		Original:      orig.Samples,
		Reconstructed: recon.Samples,
		Dims:          dims,
		Connectivity:  faults.PiecewiseLinear,
		Accelerator:   faults.AcceleratorNone,
	})
	if err != nil {
		return p.fail(&StatusError{Code: faults.Code(err), Err: fmt.Errorf("%w: %w", ErrFaultCounting, err)})
	}

	p.ratio = Present(float64(counts.FalseLabels) / float64(dims.Len()))
	p.lastErr = nil
	return nil
}

func (p *FalseLabelRatio) fail(err error) error {
	p.ratio = Absent()
	p.lastErr = err
	return err
}

// LastError returns the error recorded by the most recent failed call, or
// nil if the last EndDecompress succeeded.
func (p *FalseLabelRatio) LastError() error {
	return p.lastErr
}

// #endregion lifecycle

// #region describe
// Configuration reports stability and thread-safety.
func (p *FalseLabelRatio) Configuration() options.Options {
	opts := options.Options{}
	opts.Set(KeyStability, "stable")
	opts.Set(KeyThreadSafe, options.ThreadSafeMultiple)
	return opts
}

// Documentation describes the metric and its result key.
func (p *FalseLabelRatio) Documentation() options.Options {
	opts := options.Options{}
	opts.Set(KeyDescription, "Computes the ratio of false labeled points in decompressed data")
	opts.Set(KeyFalseLabelRatio, "The ratio of false labeled points to total points")
	return opts
}

// Results exports the ratio, or a type-only double when none is stored.
func (p *FalseLabelRatio) Results() options.Options {
	opts := options.Options{}
	if v, ok := p.ratio.Get(); ok {
		opts.Set(KeyFalseLabelRatio, v)
	} else {
		opts.SetType(KeyFalseLabelRatio, options.TypeDouble)
	}
	return opts
}

// Clone returns an independent copy. The counter is shared; it holds no
// per-run state.
func (p *FalseLabelRatio) Clone() Plugin {
	c := *p
	return &c
}

// Prefix returns FalseLabelRatioID.
func (p *FalseLabelRatio) Prefix() string {
	return FalseLabelRatioID
}

// #endregion describe
