// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

import "errors"

// Sentinel errors, one per distinguishable failure kind the codec can
// report. Call sites wrap these with fmt.Errorf("...: %w", Err...) to add
// context; callers identify the kind with errors.Is.
var (
	// ErrType is returned for a wrong argument arity or kind at the public
	// API, or for a value of an unsupported variant during packing.
	ErrType = errors.New("qpack: unsupported type")

	// ErrOverflow is returned when an integer exceeds the signed 64-bit
	// range the wire format can represent.
	ErrOverflow = errors.New("qpack: integer overflow")

	// ErrMemory is returned when the packer's output buffer failed to grow.
	ErrMemory = errors.New("qpack: buffer allocation failed")

	// ErrTruncated is returned when the unpacker runs past the end of the
	// input, or encounters a close sentinel where a value was expected.
	ErrTruncated = errors.New("qpack: truncated input")

	// ErrLookup is returned for an unknown or ill-typed decode option.
	ErrLookup = errors.New("qpack: unknown decode option")

	// ErrDecode is returned when a raw payload fails UTF-8 validation
	// while UTF-8 decoding was requested.
	ErrDecode = errors.New("qpack: invalid UTF-8")
)
