// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Package qpack implements a compact, self-describing, tag-prefixed binary
// serialization codec for a fixed set of primitive and composite values:
// nil, bool, signed integers up to 64 bits, IEEE-754 doubles, raw byte
// strings, ordered sequences, and ordered key-value mappings.
//
// Every byte value in [0,255] is the first byte ("tag") of some encoded
// value and names its kind directly, or for small magnitudes carries the
// value itself:
//
//	0..63     positive integer literal, value = tag
//	64..123   negative integer literal, value = 63 - tag
//	124       reserved
//	125..127  double literal -1.0, 0.0, 1.0
//	128..227  short raw, length = tag - 128 (0..99)
//	228..231  raw8/raw16/raw32/raw64, length prefix then bytes
//	232..235  int8/int16/int32/int64
//	236       double, 8 bytes
//	237..242  fixed sequence of 0..5 values
//	243..248  fixed mapping of 0..5 pairs
//	249..251  true, false, null
//	252..253  open sequence / open mapping, read until a close tag
//	254..255  array-close / map-close
//
// Pack always chooses the narrowest tag that round-trips its input. Unpack
// walks the tag table in the other direction, dispatching on one byte at a
// time and recursing into sequences and mappings.
//
// The wire format has no magic header, version byte, or checksum, and
// multi-byte fields are written in the packing process's native byte
// order by default — see the internal/hostorder package for how to opt
// into a fixed byte order instead.
package qpack
