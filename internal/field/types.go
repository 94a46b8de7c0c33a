package field

import "errors"

// #region dtype
// DType identifies the element type stored in a Buffer.
type DType int

const (
	Float64 DType = iota
	Float32
)

func (d DType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	default:
		return "unknown"
	}
}

// #endregion dtype

// #region errors
var (
	ErrUnsupportedRank = errors.New("field has more than 3 dimensions")
	ErrUnsupportedType = errors.New("unsupported element type")
	ErrShapeMismatch   = errors.New("dimensions do not match element count")
)

// #endregion errors

// #region field
// Field is a fixed-rank view over a Buffer: Width*Height*Depth samples in
// row-major order with Width varying fastest.
type Field struct {
	Width   int
	Height  int
	Depth   int
	Samples []float64
}

// Len returns the number of grid points.
func (f Field) Len() int {
	return f.Width * f.Height * f.Depth
}

// #endregion field
