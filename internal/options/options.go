package options

import (
	"encoding/json"
	"fmt"
	"sort"
)

// #region types
// Type is the declared type of an option value.
type Type int

const (
	TypeUnset Type = iota
	TypeDouble
	TypeInt
	TypeString
	TypeThreadSafety
)

func (t Type) String() string {
	switch t {
	case TypeDouble:
		return "double"
	case TypeInt:
		return "int32"
	case TypeString:
		return "charptr"
	case TypeThreadSafety:
		return "thread_safety"
	default:
		return "unset"
	}
}

// ThreadSafety advertises how a plugin may be used across goroutines.
type ThreadSafety int

const (
	// ThreadSafeSingle: one instance at a time in the whole process.
	ThreadSafeSingle ThreadSafety = iota
	// ThreadSafeSerialized: many instances, calls serialized by the host.
	ThreadSafeSerialized
	// ThreadSafeMultiple: independent instances may run concurrently.
	ThreadSafeMultiple
)

func (s ThreadSafety) String() string {
	switch s {
	case ThreadSafeSingle:
		return "single"
	case ThreadSafeSerialized:
		return "serialized"
	default:
		return "multiple"
	}
}

// Option is a typed value. An option with a type but no value declares the
// key without reporting anything for it.
type Option struct {
	Type     Type
	HasValue bool
	Value    any
}

// Options maps "<prefix>:<name>" keys to typed values.
type Options map[string]Option

// #endregion types

// #region setters
// Set stores v under key, inferring the type from v.
func (o Options) Set(key string, v any) {
	var t Type
	switch x := v.(type) {
	case float64:
		t = TypeDouble
	case int:
		t = TypeInt
		v = int32(x)
	case int32:
		t = TypeInt
	case string:
		t = TypeString
	case ThreadSafety:
		t = TypeThreadSafety
	default:
		panic(fmt.Sprintf("options: unsupported value type %T for %s", v, key))
	}
	o[key] = Option{Type: t, HasValue: true, Value: v}
}

// SetType declares key with type t and no value.
func (o Options) SetType(key string, t Type) {
	o[key] = Option{Type: t}
}

// Merge copies every entry of other into o, overwriting on conflict.
func (o Options) Merge(other Options) {
	for k, v := range other {
		o[k] = v
	}
}

// #endregion setters

// #region getters
// Double returns the float64 stored under key. ok is false when the key is
// missing, typed differently, or declared without a value.
func (o Options) Double(key string) (v float64, ok bool) {
	opt, found := o[key]
	if !found || !opt.HasValue || opt.Type != TypeDouble {
		return 0, false
	}
	return opt.Value.(float64), true
}

// Text returns the string stored under key.
func (o Options) Text(key string) (string, bool) {
	opt, found := o[key]
	if !found || !opt.HasValue || opt.Type != TypeString {
		return "", false
	}
	return opt.Value.(string), true
}

// Keys returns the keys in sorted order.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion getters

// #region json
type jsonOption struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// MarshalJSON renders each option as {"type": ..., "value": ...}; a
// type-only option has a null value.
func (o Options) MarshalJSON() ([]byte, error) {
	out := make(map[string]jsonOption, len(o))
	for k, opt := range o {
		jo := jsonOption{Type: opt.Type.String()}
		if opt.HasValue {
			jo.Value = opt.Value
			if ts, ok := opt.Value.(ThreadSafety); ok {
				jo.Value = ts.String()
			}
		}
		out[k] = jo
	}
	return json.Marshal(out)
}

// #endregion json
