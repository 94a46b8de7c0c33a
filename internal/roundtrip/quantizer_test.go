package roundtrip

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/danielpatrickdp/falselabel/internal/field"
	"github.com/google/go-cmp/cmp"
)

func sineField(t *testing.T, w, h int) *field.Buffer {
	t.Helper()
	data := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			data[x+y*w] = math.Sin(float64(x)*0.7) * math.Cos(float64(y)*0.45)
		}
	}
	b, err := field.NewFloat64(data, w, h)
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	return b
}

func roundTrip(t *testing.T, q Quantizer, in *field.Buffer) *field.Buffer {
	t.Helper()
	data, err := q.Compress(in)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	out, err := q.Decompress(data, in.Dims())
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	return out
}

// 1. Every sample stays within the error bound.
func TestQuantizer_ErrorBounded(t *testing.T) {
	in := sineField(t, 32, 24)
	for _, bound := range []float64{1e-1, 1e-3, 1e-6} {
		q := Quantizer{ErrorBound: bound}
		out := roundTrip(t, q, in)
		if diff := cmp.Diff(in.Dims(), out.Dims()); diff != "" {
			t.Fatalf("dims mismatch (-want +got):\n%s", diff)
		}
		orig, recon := in.Float64s(), out.Float64s()
		for i := range orig {
			if d := math.Abs(orig[i] - recon[i]); d > bound*(1+1e-9) {
				t.Fatalf("bound %g: sample %d off by %g", bound, i, d)
			}
		}
	}
}

// 2. A non-positive bound is a lossless copy.
func TestQuantizer_ZeroBoundLossless(t *testing.T) {
	in := sineField(t, 8, 8)
	out := roundTrip(t, Quantizer{}, in)
	if diff := cmp.Diff(in.Float64s(), out.Float64s()); diff != "" {
		t.Errorf("expected bit-exact copy (-want +got):\n%s", diff)
	}
}

// 2b. An infinite or NaN bound cannot quantize and falls back to a copy.
func TestQuantizer_NonFiniteBoundLossless(t *testing.T) {
	in := sineField(t, 8, 8)
	for _, bound := range []float64{math.Inf(1), math.NaN(), math.MaxFloat64} {
		out := roundTrip(t, Quantizer{ErrorBound: bound}, in)
		if diff := cmp.Diff(in.Float64s(), out.Float64s()); diff != "" {
			t.Errorf("bound %g: expected bit-exact copy (-want +got):\n%s", bound, diff)
		}
	}
}

// 3. Non-finite samples survive verbatim.
func TestQuantizer_NonFinite(t *testing.T) {
	data := []float64{1, math.Inf(1), 2, math.Inf(-1), 3}
	in, err := field.NewFloat64(data, len(data))
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	out := roundTrip(t, Quantizer{ErrorBound: 0.01}, in).Float64s()
	if !math.IsInf(out[1], 1) || !math.IsInf(out[3], -1) {
		t.Errorf("expected infinities preserved, got %v", out)
	}
	if math.Abs(out[4]-3) > 0.01 {
		t.Errorf("expected delta chain to resume after raw sample, got %v", out[4])
	}

	nan, _ := field.NewFloat64([]float64{math.NaN()}, 1)
	if got := roundTrip(t, Quantizer{ErrorBound: 0.01}, nan).Float64s()[0]; !math.IsNaN(got) {
		t.Errorf("expected NaN preserved, got %v", got)
	}
}

// 4. Float32 input decompresses as float64.
func TestQuantizer_Float32Input(t *testing.T) {
	in, err := field.NewFloat32([]float32{0.5, -1.25, 3}, 3)
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	out := roundTrip(t, Quantizer{}, in)
	if out.DType() != field.Float64 {
		t.Fatalf("expected float64 output, got %s", out.DType())
	}
	if diff := cmp.Diff([]float64{0.5, -1.25, 3}, out.Float64s()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

// 5. Smooth data compresses below its raw size.
func TestQuantizer_Compresses(t *testing.T) {
	in := sineField(t, 64, 64)
	data, err := Quantizer{ErrorBound: 1e-2}.Compress(in)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if raw := 8 * in.NumElements(); len(data) >= raw {
		t.Errorf("expected fewer than %d bytes, got %d", raw, len(data))
	}
}

func TestQuantizer_Corrupt(t *testing.T) {
	q := Quantizer{ErrorBound: 0.1}
	in := sineField(t, 4, 4)
	data, err := q.Compress(in)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	cases := map[string][]byte{
		"empty":     nil,
		"bad magic": append([]byte{'X'}, data[1:]...),
		"truncated": data[:len(data)-2],
		"huge length": binary.AppendUvarint(append([]byte{}, data[:9]...), 1<<62),
		"length past end": binary.AppendUvarint(append([]byte{}, data[:9]...), 4),
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := q.Decompress(b, in.Dims()); !errors.Is(err, ErrCorruptStream) {
				t.Errorf("expected ErrCorruptStream, got %v", err)
			}
		})
	}
}

func TestQuantizer_WrongDims(t *testing.T) {
	q := Quantizer{ErrorBound: 0.1}
	data, err := q.Compress(sineField(t, 4, 4))
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if _, err := q.Decompress(data, []int{5, 4}); !errors.Is(err, field.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestQuantizer_NilBuffer(t *testing.T) {
	if _, err := (Quantizer{}).Compress(nil); err == nil {
		t.Error("expected error for nil buffer")
	}
}

func TestQuantizer_Name(t *testing.T) {
	if got := (Quantizer{ErrorBound: 0.001}).Name(); got != "quantizer(abs=0.001)" {
		t.Errorf("unexpected name %q", got)
	}
}
