// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

// Package qpack has no single concrete Value type; callers pack and unpack
// ordinary Go values directly. The types below fill in for the two
// composite shapes the wire format needs that the language does not give
// us for free: an ordered sequence with mixed element types, and an
// ordered key-value mapping whose keys are not constrained to be strings.

// Seq is an ordered sequence of values, packed as a fixed tag for five or
// fewer elements and an open/close bracket pair otherwise. A plain
// []interface{} works too; Seq exists so callers who want the sequence
// semantics spelled out in a signature can use it.
type Seq []interface{}

// Pair is one key-value entry of a Map, in wire order.
type Pair struct {
	Key   interface{}
	Value interface{}
}

// Map is an ordered key-value mapping. Unlike a Go map, iteration order is
// exactly insertion order, which the packer preserves on the wire: the
// codec never sorts keys. Keys are not constrained to any particular type.
type Map []Pair

// Get returns the value for the first pair whose key equals k, and whether
// it was found. Comparison uses ==, so keys must be comparable.
func (m Map) Get(k interface{}) (interface{}, bool) {
	for _, p := range m {
		if p.Key == k {
			return p.Value, true
		}
	}
	return nil, false
}

// Text is the decoded form of a raw payload when an unpack call requests
// text decoding (see DecodeUTF8, DecodeLatin1). The packer never produces
// a Text value itself: it always emits text input as raw bytes, since the
// wire format draws no distinction between text and opaque byte strings.
type Text struct {
	Bytes    []byte
	Encoding Decode
}

func (t Text) String() string {
	if t.Encoding == DecodeLatin1 {
		return latin1ToUTF8(t.Bytes)
	}
	return string(t.Bytes)
}

func latin1ToUTF8(b []byte) string {
	rs := make([]rune, len(b))
	for i, c := range b {
		rs[i] = rune(c)
	}
	return string(rs)
}
