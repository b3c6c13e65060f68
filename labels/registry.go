// Package labels implements the value-label registry: named code → label
// dictionaries shared by the columns of a table.
//
// A name maps to exactly one dictionary content. Registering a second,
// different dictionary under a taken name fails with errs.ErrLabelConflict;
// registering an equal one is a no-op, which lets several columns share a
// label set.
package labels

import (
	"fmt"
	"slices"

	"github.com/arloliu/statfile/errs"
)

type entry struct {
	dict        *Dict
	fingerprint uint64
}

// Registry is a name-keyed collection of value-label dictionaries.
//
// A Registry is owned by one table under construction. Once the table is
// handed to a codec the registry is frozen and every mutation fails with
// errs.ErrFrozen. It is not safe for concurrent mutation.
type Registry struct {
	entries map[string]entry
	names   []string
	frozen  bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Assign registers d under name.
//
// If name is already taken by an equal dictionary nothing changes. If it is
// taken by a different one the call fails with errs.ErrLabelConflict. The
// registry stores a copy, so later changes to d are not observed.
func (r *Registry) Assign(name string, d *Dict) error {
	if r.frozen {
		return errs.ErrFrozen
	}
	if name == "" {
		return fmt.Errorf("%w: empty value label name", errs.ErrInvalidOption)
	}

	fp := d.Fingerprint()
	if existing, ok := r.entries[name]; ok {
		if existing.fingerprint == fp && existing.dict.Equal(d) {
			return nil
		}

		return fmt.Errorf("%w: %q", errs.ErrLabelConflict, name)
	}

	r.entries[name] = entry{dict: d.Clone(), fingerprint: fp}
	r.names = append(r.names, name)

	return nil
}

// AssignColumn registers d for a column. An empty requested name defaults to
// the column name. It returns the name the dictionary was registered under.
func (r *Registry) AssignColumn(column, requested string, d *Dict) (string, error) {
	name := requested
	if name == "" {
		name = column
	}

	if err := r.Assign(name, d); err != nil {
		return "", err
	}

	return name, nil
}

// Lookup returns a copy of the dictionary registered under name.
func (r *Registry) Lookup(name string) (*Dict, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}

	return e.dict.Clone(), true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of registered dictionaries.
func (r *Registry) Len() int {
	return len(r.names)
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether the registry is read-only.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Clone returns an unfrozen deep copy.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		entries: make(map[string]entry, len(r.entries)),
		names:   slices.Clone(r.names),
	}
	for name, e := range r.entries {
		c.entries[name] = entry{dict: e.dict.Clone(), fingerprint: e.fingerprint}
	}

	return c
}

// Equal reports whether both registries hold the same names with equal dictionaries.
// Registration order is ignored.
func (r *Registry) Equal(o *Registry) bool {
	if r.Len() != o.Len() {
		return false
	}
	for name, e := range r.entries {
		oe, ok := o.entries[name]
		if !ok || oe.fingerprint != e.fingerprint || !oe.dict.Equal(e.dict) {
			return false
		}
	}

	return true
}
