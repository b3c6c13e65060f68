// Package endian describes the byte order a statistical file is written in.
//
// Every supported format records its byte order in the file header, and
// readers swap on load. Files are written in host order unless the caller
// asks otherwise; the order travels with the table in its file metadata.
//
//	meta.Endianness = endian.Host()
//	engine := meta.Endianness.Engine()
//	buf = engine.AppendUint32(buf, rows)
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface. binary.LittleEndian and binary.BigEndian satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Order is a byte order recorded in file metadata.
type Order uint8

const (
	// Little is least-significant byte first.
	Little Order = 0x1
	// Big is most-significant byte first.
	Big Order = 0x2
)

func (o Order) String() string {
	switch o {
	case Little:
		return "little"
	case Big:
		return "big"
	default:
		return "unknown"
	}
}

// Engine returns the encoder for o. An unset order resolves to the host order.
func (o Order) Engine() EndianEngine {
	switch o {
	case Little:
		return binary.LittleEndian
	case Big:
		return binary.BigEndian
	default:
		return Host().Engine()
	}
}

// IsNative reports whether o matches the host byte order.
func (o Order) IsNative() bool {
	return o == Host()
}

// Parse converts "little"/"le" or "big"/"be" into an Order, ignoring case.
// An empty string yields the host order.
func Parse(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Host(), nil
	case "little", "le":
		return Little, nil
	case "big", "be":
		return Big, nil
	default:
		return 0, fmt.Errorf("unknown byte order %q", s)
	}
}

// Host returns the byte order of the running machine.
func Host() Order {
	if CheckEndianness() == binary.BigEndian {
		return Big
	}

	return Little
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// OrderOf maps a standard library byte order onto an Order.
func OrderOf(bo binary.ByteOrder) Order {
	if bo == binary.BigEndian {
		return Big
	}

	return Little
}
