// Package hash computes xxHash64 fingerprints used to compare value-label
// dictionaries and names without walking their contents.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Hasher accumulates typed fields into a single xxHash64 digest.
//
// Strings are length-prefixed so that ("ab", "c") and ("a", "bc") hash
// differently. A Hasher is not safe for concurrent use.
type Hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

// New returns an empty Hasher.
func New() *Hasher {
	return &Hasher{d: xxhash.New()}
}

// Byte adds a single tag byte.
func (h *Hasher) Byte(b byte) *Hasher {
	h.buf[0] = b
	_, _ = h.d.Write(h.buf[:1])

	return h
}

// Int32 adds v in little-endian order.
func (h *Hasher) Int32(v int32) *Hasher {
	binary.LittleEndian.PutUint32(h.buf[:4], uint32(v))
	_, _ = h.d.Write(h.buf[:4])

	return h
}

// Uint64 adds v in little-endian order.
func (h *Hasher) Uint64(v uint64) *Hasher {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:])

	return h
}

// String adds s preceded by its length.
func (h *Hasher) String(s string) *Hasher {
	h.Uint64(uint64(len(s)))
	_, _ = h.d.WriteString(s)

	return h
}

// Sum64 returns the digest of everything added so far.
func (h *Hasher) Sum64() uint64 {
	return h.d.Sum64()
}
