package metrics

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/falselabel/internal/field"
	"github.com/danielpatrickdp/falselabel/internal/options"
)

// #region plugin
// Plugin is the capability set the host drives for every metric.
//
// A single instance is called by one round trip at a time; independent
// instances may run concurrently. Buffers are borrowed for the duration of
// a call and must not be retained.
type Plugin interface {
	BeginCompress(input, compressed *field.Buffer) error
	EndDecompress(input, output *field.Buffer) error
	Configuration() options.Options
	Documentation() options.Options
	Results() options.Options
	Clone() Plugin
	Prefix() string
}

// #endregion plugin

// #region ratio
// Ratio is an optional metric value: either Absent or Present(v).
type Ratio struct {
	present bool
	value   float64
}

// Absent returns a Ratio holding no value.
func Absent() Ratio { return Ratio{} }

// Present returns a Ratio holding v.
func Present(v float64) Ratio { return Ratio{present: true, value: v} }

// Get returns the value and whether one is present.
func (r Ratio) Get() (float64, bool) { return r.value, r.present }

func (r Ratio) String() string {
	if !r.present {
		return "absent"
	}
	return fmt.Sprintf("%g", r.value)
}

// #endregion ratio

// #region errors
var (
	ErrMissingInput  = errors.New("input or output data is missing")
	ErrInvalidField  = errors.New("field cannot be viewed as a 1-3D grid")
	ErrFaultCounting = errors.New("fault counting failed")
	ErrUnknownMetric = errors.New("unknown metric")
)

// Local status codes. Fault-counting failures carry the counter's own code.
const (
	StatusMissingInput = 1
	StatusInvalidField = 2
)

// StatusError pairs a host status code with its cause.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %v", e.Code, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode returns the host status for err: 0 for nil, the StatusError code
// when err wraps one, 1 otherwise.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 1
}

// #endregion errors
