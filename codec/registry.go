package codec

import (
	"fmt"
	"slices"
	"sync"

	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
)

// Registry maps extensions to codecs. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[format.Extension]Codec
}

var defaultRegistry = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[format.Extension]Codec)}
}

// Default returns the process-wide registry used by Register and Lookup.
func Default() *Registry {
	return defaultRegistry
}

// Register adds c, replacing any codec registered for the same extension.
//
// Returns errs.ErrUnsupportedFormat when c.Ext is not a supported extension
// and errs.ErrInvalidOption when c has no encoder factory.
func (r *Registry) Register(c Codec) error {
	p, ok := format.Lookup(c.Ext)
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, c.Ext)
	}
	if c.NewEncoder == nil {
		return fmt.Errorf("%w: codec for %s has no encoder", errs.ErrInvalidOption, p.Ext)
	}
	c.Ext = p.Ext

	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Ext] = c

	return nil
}

// Lookup returns the codec registered for ext.
func (r *Registry) Lookup(ext format.Extension) (Codec, error) {
	p, ok := format.Lookup(ext)
	if !ok {
		return Codec{}, fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, ext)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.codecs[p.Ext]
	if !ok {
		return Codec{}, fmt.Errorf("%w: no codec registered for %s", errs.ErrUnsupportedFormat, p.Ext)
	}

	return c, nil
}

// Extensions returns the extensions with a registered codec, sorted.
func (r *Registry) Extensions() []format.Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]format.Extension, 0, len(r.codecs))
	for ext := range r.codecs {
		out = append(out, ext)
	}
	slices.Sort(out)

	return out
}

// Register adds c to the default registry.
func Register(c Codec) error {
	return defaultRegistry.Register(c)
}

// MustRegister is like Register but panics on error. It is meant for init functions.
func MustRegister(c Codec) {
	if err := Register(c); err != nil {
		panic(err)
	}
}

// Lookup returns the codec registered for ext in the default registry.
func Lookup(ext format.Extension) (Codec, error) {
	return defaultRegistry.Lookup(ext)
}
