// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

import "encoding"

// A Marshaler produces the qpack-packable value a type should be encoded
// as, letting a type control its own wire shape instead of falling through
// to the reflect-based struct/slice/map handling in Packer.packReflect. It
// returns the value tree to pack rather than already-encoded bytes, since
// the narrowest-encoding choice for that tree still has to happen in
// Packer.
type Marshaler interface {
	MarshalQPack() (interface{}, error)
}

// Marshal is Pack, except that it first checks whether v implements
// Marshaler or encoding.BinaryMarshaler and defers to that before falling
// back to the direct-type and reflect-based encoding that Pack uses
// otherwise.
func Marshal(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case Marshaler:
		inner, err := t.MarshalQPack()
		if err != nil {
			return nil, err
		}
		return Pack(inner)
	case encoding.BinaryMarshaler:
		b, err := t.MarshalBinary()
		if err != nil {
			return nil, err
		}
		return Pack(b)
	}
	return Pack(v)
}
