package metrics

import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/falselabel/internal/faults"
)

// #region registry
// Factory builds a fresh plugin instance.
type Factory func() Plugin

// Entry binds a metric id to its factory.
type Entry struct {
	ID  string
	New Factory
}

// Registry is an immutable table of metric factories built once at startup.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds a table from entries. Duplicate ids are rejected.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{factories: make(map[string]Factory, len(entries))}
	for _, e := range entries {
		if _, dup := r.factories[e.ID]; dup {
			return nil, fmt.Errorf("register %s: duplicate id", e.ID)
		}
		r.factories[e.ID] = e.New
	}
	return r, nil
}

// Builtin returns the registry of metrics shipped with this module, wired to counter.
func Builtin(counter faults.Counter) *Registry {
	r, _ := NewRegistry(Entry{
		ID:  FalseLabelRatioID,
		New: func() Plugin { return NewFalseLabelRatio(counter) },
	})
	return r
}

// Build returns a new instance of the metric registered under id.
func (r *Registry) Build(id string) (Plugin, error) {
	f, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("build %q: %w", id, ErrUnknownMetric)
	}
	return f(), nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// #endregion registry
