package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/falselabel/internal/field"
	"github.com/danielpatrickdp/falselabel/internal/metrics"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Metric      string        `json:"metric"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one EndDecompress call. A null original or reconstructed
// array stands for a missing buffer. ExpectedRatio is null when the ratio
// must be absent afterwards.
type FixtureCase struct {
	Name              string    `json:"name"`
	DType             string    `json:"dtype,omitempty"` // "float64" (default) or "float32"
	Dims              []int     `json:"dims"`
	ReconstructedDims []int     `json:"reconstructed_dims,omitempty"` // defaults to Dims
	Original          []float64 `json:"original"`
	Reconstructed     []float64 `json:"reconstructed"`
	ExpectedRatio     *float64  `json:"expected_ratio"`
	ExpectedStatus    int       `json:"expected_status"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Metric == "" {
		f.Metric = metrics.FalseLabelRatioID
	}
	return &f, nil
}

// ToCase converts a FixtureCase to a domain Case.
func (fc *FixtureCase) ToCase() (Case, error) {
	c := Case{
		Name:           fc.Name,
		ExpectedStatus: fc.ExpectedStatus,
		ExpectedRatio:  metrics.Absent(),
	}
	if fc.ExpectedRatio != nil {
		c.ExpectedRatio = metrics.Present(*fc.ExpectedRatio)
	}

	reconDims := fc.ReconstructedDims
	if reconDims == nil {
		reconDims = fc.Dims
	}
	var err error
	if c.Input, err = fc.buffer(fc.Original, fc.Dims); err != nil {
		return Case{}, fmt.Errorf("case %s: original: %w", fc.Name, err)
	}
	if c.Output, err = fc.buffer(fc.Reconstructed, reconDims); err != nil {
		return Case{}, fmt.Errorf("case %s: reconstructed: %w", fc.Name, err)
	}
	return c, nil
}

func (fc *FixtureCase) buffer(data []float64, dims []int) (*field.Buffer, error) {
	if data == nil {
		return nil, nil
	}
	switch fc.DType {
	case "", "float64":
		return field.NewFloat64(data, dims...)
	case "float32":
		narrow := make([]float32, len(data))
		for i, v := range data {
			narrow[i] = float32(v)
		}
		return field.NewFloat32(narrow, dims...)
	}
	return nil, fmt.Errorf("dtype %q: %w", fc.DType, field.ErrUnsupportedType)
}

// ToCases converts every fixture case.
func (f *Fixture) ToCases() ([]Case, error) {
	out := make([]Case, 0, len(f.Cases))
	for i := range f.Cases {
		c, err := f.Cases[i].ToCase()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// #endregion fixture-loader
