// Package hostorder isolates the one byte-order decision the QPack wire
// format makes: multi-byte lengths, integers and doubles are written in
// the packing process's native order, not a fixed wire order. A process
// that writes host integers straight into its output buffer gets this "for
// free"; Go has to pick one of binary.LittleEndian / binary.BigEndian
// explicitly and say so.
//
// Engine composes encoding/binary's ByteOrder and AppendByteOrder into one
// interface so callers can use either the Put* or the Append* style
// without an extra allocation.
package hostorder

import (
	"encoding/binary"
	"unsafe"
)

// Engine is encoding/binary's ByteOrder plus AppendByteOrder, satisfied by
// both binary.LittleEndian and binary.BigEndian.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// nativeOrder reports the byte order of the process this binary is
// running on, probed at init time rather than hardcoded per-GOARCH so the
// same code runs correctly if the list of supported architectures grows.
func nativeOrder() binary.ByteOrder {
	var probe uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&probe))
	if b[0] == 0x01 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

var native Engine = mustEngine(nativeOrder())

func mustEngine(order binary.ByteOrder) Engine {
	if e, ok := order.(Engine); ok {
		return e
	}
	// encoding/binary's two exported ByteOrder values both implement
	// AppendByteOrder; this only fails if the standard library changes
	// that, which would be a much bigger problem than this codec.
	panic("hostorder: byte order does not implement AppendByteOrder")
}

// Native returns the byte-order engine matching the running process. This
// is the default Engine the qpack packer and unpacker use, writing
// multi-byte fields the same way the running process stores them in
// memory rather than standardizing on one portable order.
func Native() Engine { return native }

// LittleEndian and BigEndian are offered for callers who want an
// explicitly portable wire format instead of native order. This package
// does not pick one for them; qpack.Packer/Unpacker default to Native.
var (
	LittleEndian Engine = binary.LittleEndian
	BigEndian    Engine = binary.BigEndian
)

// IsNativeLittleEndian reports whether the running process is little-endian.
func IsNativeLittleEndian() bool {
	return native == Engine(binary.LittleEndian)
}
