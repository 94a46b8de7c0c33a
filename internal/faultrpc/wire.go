package faultrpc

import (
	"fmt"

	"github.com/danielpatrickdp/falselabel/internal/faults"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region encode
func encodeRequest(req faults.Request) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"original":      numberList(req.Original),
		"reconstructed": numberList(req.Reconstructed),
		"width":         structpb.NewNumberValue(float64(req.Dims.Width)),
		"height":        structpb.NewNumberValue(float64(req.Dims.Height)),
		"depth":         structpb.NewNumberValue(float64(req.Dims.Depth)),
		"connectivity":  structpb.NewNumberValue(float64(req.Connectivity)),
		"accelerator":   structpb.NewNumberValue(float64(req.Accelerator)),
	}}
}

func encodeResponse(counts faults.Counts, err error) *structpb.Struct {
	msg := ""
	if err != nil {
		msg = err.Error()
		counts = faults.Counts{}
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"status":       structpb.NewNumberValue(float64(faults.Code(err))),
		"message":      structpb.NewStringValue(msg),
		"false_min":    structpb.NewNumberValue(float64(counts.FalseMin)),
		"false_max":    structpb.NewNumberValue(float64(counts.FalseMax)),
		"false_labels": structpb.NewNumberValue(float64(counts.FalseLabels)),
	}}
}

func numberList(v []float64) *structpb.Value {
	vals := make([]*structpb.Value, len(v))
	for i, x := range v {
		vals[i] = structpb.NewNumberValue(x)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

// #endregion encode

// #region decode
func decodeRequest(s *structpb.Struct) (faults.Request, error) {
	f := s.GetFields()
	for _, k := range []string{"original", "reconstructed", "width", "height", "depth"} {
		if _, ok := f[k]; !ok {
			return faults.Request{}, fmt.Errorf("missing field %q", k)
		}
	}
	return faults.Request{
		Original:      numbers(f["original"]),
		Reconstructed: numbers(f["reconstructed"]),
		Dims: faults.Dims{
			Width:  int(f["width"].GetNumberValue()),
			Height: int(f["height"].GetNumberValue()),
			Depth:  int(f["depth"].GetNumberValue()),
		},
		Connectivity: faults.Connectivity(f["connectivity"].GetNumberValue()),
		Accelerator:  faults.Accelerator(f["accelerator"].GetNumberValue()),
	}, nil
}

func decodeResponse(s *structpb.Struct) (faults.Counts, error) {
	f := s.GetFields()
	st, ok := f["status"].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return faults.Counts{}, &faults.Error{Code: faults.StatusTransport, Msg: "response missing status"}
	}
	if code := int(st.NumberValue); code != faults.StatusOK {
		return faults.Counts{}, &faults.Error{Code: code, Msg: f["message"].GetStringValue()}
	}
	return faults.Counts{
		FalseMin:    int(f["false_min"].GetNumberValue()),
		FalseMax:    int(f["false_max"].GetNumberValue()),
		FalseLabels: int(f["false_labels"].GetNumberValue()),
	}, nil
}

func numbers(v *structpb.Value) []float64 {
	vals := v.GetListValue().GetValues()
	out := make([]float64, len(vals))
	for i, x := range vals {
		out[i] = x.GetNumberValue()
	}
	return out
}

// #endregion decode
