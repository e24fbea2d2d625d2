// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

import (
	"fmt"
	"strings"
)

// Decode selects how the unpacker surfaces raw payloads.
type Decode int

const (
	// DecodeNone surfaces raw payloads as []byte.
	DecodeNone Decode = iota
	// DecodeUTF8 surfaces raw payloads as UTF-8 text; malformed input is
	// ErrDecode.
	DecodeUTF8
	// DecodeLatin1 surfaces raw payloads as Latin-1 text. Latin-1 has no
	// invalid byte sequences, so this mode never fails on its input.
	DecodeLatin1
)

func (d Decode) String() string {
	switch d {
	case DecodeNone:
		return "none"
	case DecodeUTF8:
		return "utf-8"
	case DecodeLatin1:
		return "latin-1"
	default:
		return fmt.Sprintf("Decode(%d)", int(d))
	}
}

// Option configures an Unpack/Unpacker call using the functional-options
// idiom: each Option mutates a private config struct, so new settings can
// be added without changing the signature of existing callers.
type Option func(*config)

type config struct {
	decode Decode
}

// WithDecode sets how raw payloads are surfaced. The default, if no
// Option is given, is DecodeNone.
func WithDecode(d Decode) Option {
	return func(c *config) { c.decode = d }
}

func resolveConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ParseDecodeLabel maps a textual decode-mode label onto a Decode value:
// the empty string behaves like "none"; the match is case-insensitive over
// "utf-8", "utf8", "latin-1", "latin1". Any other label is ErrLookup. This
// exists for callers bridging from a textual configuration source (CLI
// flags, JSON config) into the typed Option API; qpack.Unpack itself never
// takes a string.
func ParseDecodeLabel(label string) (Decode, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "none":
		return DecodeNone, nil
	case "utf-8", "utf8":
		return DecodeUTF8, nil
	case "latin-1", "latin1":
		return DecodeLatin1, nil
	default:
		return DecodeNone, fmt.Errorf("%w: %q", ErrLookup, label)
	}
}
