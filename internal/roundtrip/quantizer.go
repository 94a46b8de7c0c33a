package roundtrip

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/danielpatrickdp/falselabel/internal/field"
)

// #region codec
// Codec is the compressor under evaluation.
type Codec interface {
	Name() string
	Compress(in *field.Buffer) ([]byte, error)
	// Decompress rebuilds a float64 buffer with the given dims.
	Decompress(data []byte, dims []int) (*field.Buffer, error)
}

// #endregion codec

// #region quantizer
const quantizerMagic = 'Q'

var ErrCorruptStream = errors.New("corrupt quantizer stream")

// Quantizer is a uniform scalar quantizer with an absolute error bound.
// Codes are delta-coded along the linear index. Samples that cannot be
// quantized (non-finite, out of range, or a bound that is not positive and
// finite) are stored verbatim.
type Quantizer struct {
	ErrorBound float64
}

// Name implements Codec.
func (q Quantizer) Name() string {
	return fmt.Sprintf("quantizer(abs=%g)", q.ErrorBound)
}

// Compress implements Codec.
func (q Quantizer) Compress(in *field.Buffer) ([]byte, error) {
	vals, err := samples(in)
	if err != nil {
		return nil, err
	}
	step := 2 * q.ErrorBound
	verbatim := !(step > 0) || math.IsInf(step, 0)

	buf := make([]byte, 0, 16+len(vals))
	buf = append(buf, quantizerMagic)
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(step))
	buf = binary.AppendUvarint(buf, uint64(len(vals)))

	var prev int64
	for _, v := range vals {
		c := math.Round(v / step)
		if verbatim || math.IsNaN(c) || math.IsInf(c, 0) || math.Abs(c) > 1<<52 {
			buf = binary.AppendUvarint(buf, 1)
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
			continue
		}
		code := int64(c)
		d := code - prev
		prev = code
		zz := uint64(d<<1) ^ uint64(d>>63)
		buf = binary.AppendUvarint(buf, zz<<1)
	}
	return buf, nil
}

// Decompress implements Codec.
func (q Quantizer) Decompress(data []byte, dims []int) (*field.Buffer, error) {
	if len(data) < 9 || data[0] != quantizerMagic {
		return nil, ErrCorruptStream
	}
	step := math.Float64frombits(binary.LittleEndian.Uint64(data[1:9]))
	data = data[9:]

	n, k := binary.Uvarint(data)
	if k <= 0 {
		return nil, fmt.Errorf("read length: %w", ErrCorruptStream)
	}
	data = data[k:]
	// every sample takes at least one byte
	if n > uint64(len(data)) {
		return nil, fmt.Errorf("length %d exceeds %d remaining bytes: %w", n, len(data), ErrCorruptStream)
	}

	out := make([]float64, 0, n)
	var prev int64
	for uint64(len(out)) < n {
		tag, k := binary.Uvarint(data)
		if k <= 0 {
			return nil, fmt.Errorf("read sample %d: %w", len(out), ErrCorruptStream)
		}
		data = data[k:]
		if tag&1 == 1 {
			if len(data) < 8 {
				return nil, fmt.Errorf("read raw sample %d: %w", len(out), ErrCorruptStream)
			}
			out = append(out, math.Float64frombits(binary.LittleEndian.Uint64(data)))
			data = data[8:]
			continue
		}
		zz := tag >> 1
		d := int64(zz>>1) ^ -int64(zz&1)
		prev += d
		out = append(out, float64(prev)*step)
	}
	return field.NewFloat64(out, dims...)
}

func samples(b *field.Buffer) ([]float64, error) {
	if b == nil {
		return nil, errors.New("compress: nil buffer")
	}
	switch b.DType() {
	case field.Float64:
		return b.Float64s(), nil
	case field.Float32:
		src := b.Float32s()
		out := make([]float64, len(src))
		for i, v := range src {
			out[i] = float64(v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("compress %s: %w", b.DType(), field.ErrUnsupportedType)
}

// #endregion quantizer
