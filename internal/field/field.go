package field

import "fmt"

// #region buffer
// Buffer is a dimension-erased block of samples as handed around by the host.
// It carries its declared extents and element type but no fixed rank.
type Buffer struct {
	dims  []int
	dtype DType
	f64   []float64
	f32   []float32
}

// NewFloat64 wraps data without copying. With no dims the buffer is a scalar.
func NewFloat64(data []float64, dims ...int) (*Buffer, error) {
	if err := checkDims(len(data), dims); err != nil {
		return nil, err
	}
	return &Buffer{dims: append([]int(nil), dims...), dtype: Float64, f64: data}, nil
}

// NewFloat32 wraps data without copying. With no dims the buffer is a scalar.
func NewFloat32(data []float32, dims ...int) (*Buffer, error) {
	if err := checkDims(len(data), dims); err != nil {
		return nil, err
	}
	return &Buffer{dims: append([]int(nil), dims...), dtype: Float32, f32: data}, nil
}

// Dims returns a copy of the declared extents.
func (b *Buffer) Dims() []int {
	return append([]int(nil), b.dims...)
}

// DType returns the element type.
func (b *Buffer) DType() DType {
	return b.dtype
}

// NumElements returns the total element count.
func (b *Buffer) NumElements() int {
	if b.dtype == Float32 {
		return len(b.f32)
	}
	return len(b.f64)
}

// Float64s returns the float64 backing slice, or nil for other element types.
func (b *Buffer) Float64s() []float64 {
	return b.f64
}

// Float32s returns the float32 backing slice, or nil for other element types.
func (b *Buffer) Float32s() []float32 {
	return b.f32
}

func checkDims(n int, dims []int) error {
	total := 1
	for i, d := range dims {
		if d < 1 {
			return fmt.Errorf("dimension %d is %d: %w", i, d, ErrShapeMismatch)
		}
		total *= d
	}
	if total != n {
		return fmt.Errorf("dims %v hold %d elements, data has %d: %w", dims, total, n, ErrShapeMismatch)
	}
	return nil
}

// #endregion buffer

// #region view
// View converts a Buffer into the (width, height, depth) triple used by the
// fault counter. Axes beyond the declared rank are 1, so a 1D buffer of
// length N is N×1×1 and a 2D buffer N×M is N×M×1. Buffers with more than
// three axes are rejected with ErrUnsupportedRank rather than truncated.
//
// Float64 samples are shared with the buffer; float32 samples are widened
// into a new slice.
func View(b *Buffer) (Field, error) {
	if len(b.dims) > 3 {
		return Field{}, fmt.Errorf("view %v: %w", b.dims, ErrUnsupportedRank)
	}

	f := Field{Width: 1, Height: 1, Depth: 1}
	if len(b.dims) > 0 {
		f.Width = b.dims[0]
	}
	if len(b.dims) > 1 {
		f.Height = b.dims[1]
	}
	if len(b.dims) > 2 {
		f.Depth = b.dims[2]
	}

	switch b.dtype {
	case Float64:
		f.Samples = b.f64
	case Float32:
		f.Samples = make([]float64, len(b.f32))
		for i, v := range b.f32 {
			f.Samples[i] = float64(v)
		}
	default:
		return Field{}, fmt.Errorf("view %s: %w", b.dtype, ErrUnsupportedType)
	}

	if f.Len() != len(f.Samples) {
		return Field{}, fmt.Errorf("view %dx%dx%d over %d samples: %w", f.Width, f.Height, f.Depth, len(f.Samples), ErrShapeMismatch)
	}
	return f, nil
}

// #endregion view
