// Package collision tracks column names while a table is assembled and
// rejects empty or repeated names.
package collision

import (
	"fmt"

	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/internal/hash"
)

// Tracker records column names in order. Names are bucketed by their
// xxHash64 so that lookups stay cheap for wide tables; names that share a
// hash but differ are still distinct columns.
type Tracker struct {
	buckets map[uint64][]int // hash → positions in names
	names   []string
}

// NewTracker creates an empty tracker sized for n columns.
func NewTracker(n int) *Tracker {
	return &Tracker{
		buckets: make(map[uint64][]int, n),
		names:   make([]string, 0, n),
	}
}

// Track records name and returns its position.
//
// Returns errs.ErrInvalidColumnName for an empty name and
// errs.ErrDuplicateColumn when name was tracked before.
func (t *Tracker) Track(name string) (int, error) {
	if name == "" {
		return -1, errs.ErrInvalidColumnName
	}

	h := hash.ID(name)
	for _, pos := range t.buckets[h] {
		if t.names[pos] == name {
			return -1, fmt.Errorf("%w: %q (first seen at column %d)", errs.ErrDuplicateColumn, name, pos)
		}
	}

	pos := len(t.names)
	t.buckets[h] = append(t.buckets[h], pos)
	t.names = append(t.names, name)

	return pos, nil
}

// Index returns the position of name, or -1 when it was not tracked.
func (t *Tracker) Index(name string) int {
	for _, pos := range t.buckets[hash.ID(name)] {
		if t.names[pos] == name {
			return pos
		}
	}

	return -1
}

// Names returns the tracked names in order. The slice is owned by the tracker.
func (t *Tracker) Names() []string {
	return t.names
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.names)
}
