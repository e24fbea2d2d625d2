// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

import (
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/cesbit/qpack-go/internal/hostorder"
)

// closeKind distinguishes the two container-terminator sentinels from an
// ordinary decoded value, without exposing either sentinel's identity to
// callers. Neither sentinel carries any payload; closeKind alone is all
// the information the recursive step needs to report container
// termination to its caller.
type closeKind int

const (
	noClose closeKind = iota
	closeSeq
	closeMap
)

// Unpacker consumes a read cursor over a fixed byte window, dispatching on
// the tag byte and producing host values. Unlike Packer, an Unpacker
// borrows its input; it never writes through it.
type Unpacker struct {
	data   []byte
	pos    int
	cfg    config
	engine hostorder.Engine
}

// NewUnpacker returns an Unpacker positioned at the start of data, with the
// given options applied. data is not copied; the caller must not mutate it
// while the Unpacker is in use.
func NewUnpacker(data []byte, opts ...Option) *Unpacker {
	return &Unpacker{data: data, cfg: resolveConfig(opts), engine: hostorder.Native()}
}

// NewUnpackerWithEngine is NewUnpacker for a non-native byte-order wire
// format (see NewPackerWithEngine).
func NewUnpackerWithEngine(data []byte, e hostorder.Engine, opts ...Option) *Unpacker {
	u := NewUnpacker(data, opts...)
	u.engine = e
	return u
}

// Pos reports the Unpacker's current cursor position.
func (u *Unpacker) Pos() int { return u.pos }

// Next decodes and returns the next top-level value from the Unpacker's
// buffer, or io.EOF once the cursor has reached the end. This lets a
// caller step through more than one top-level value packed back-to-back
// into the same buffer; qpack itself imposes no framing between them.
func (u *Unpacker) Next() (interface{}, error) {
	if u.pos >= len(u.data) {
		return nil, io.EOF
	}
	v, kind, err := u.step()
	if err != nil {
		return nil, err
	}
	if kind != noClose {
		return nil, fmt.Errorf("%w: unexpected close tag at top level", ErrTruncated)
	}
	return v, nil
}

// Unpack decodes a single top-level value from data. Trailing bytes beyond
// that value are ignored. data may be reused by the caller after this call
// returns; Unpack does not retain it beyond the call.
func Unpack(data []byte, opts ...Option) (interface{}, error) {
	u := NewUnpacker(data, opts...)
	v, err := u.Next()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty input", ErrTruncated)
		}
		return nil, err
	}
	return v, nil
}

func (u *Unpacker) need(n int) error {
	if u.pos+n > len(u.data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, u.pos, len(u.data)-u.pos)
	}
	return nil
}

func (u *Unpacker) readByte() (byte, error) {
	if err := u.need(1); err != nil {
		return 0, err
	}
	b := u.data[u.pos]
	u.pos++
	return b, nil
}

func (u *Unpacker) readN(n int) ([]byte, error) {
	if err := u.need(n); err != nil {
		return nil, err
	}
	b := u.data[u.pos : u.pos+n]
	u.pos += n
	return b, nil
}

// step reads one tag byte and dispatches to its payload. It returns either
// a decoded value (kind == noClose), or a close sentinel report
// (kind != noClose, value is nil), or an error.
func (u *Unpacker) step() (interface{}, closeKind, error) {
	b, err := u.readByte()
	if err != nil {
		return nil, noClose, err
	}
	t := tag(b)

	switch {
	case isPosInt(t):
		return int64(t), noClose, nil
	case isNegInt(t):
		return int64(tagPosIntMax) - int64(t), noClose, nil
	case isShortRaw(t):
		n := int(t - tagShortRawMin)
		return u.finishRaw(n)
	}

	switch t {
	case tagHook:
		return nil, noClose, nil
	case tagDoubleNeg1:
		return -1.0, noClose, nil
	case tagDouble0:
		return 0.0, noClose, nil
	case tagDouble1:
		return 1.0, noClose, nil
	case tagRaw8:
		n, err := u.readByte()
		if err != nil {
			return nil, noClose, err
		}
		return u.finishRaw(int(n))
	case tagRaw16:
		b, err := u.readN(2)
		if err != nil {
			return nil, noClose, err
		}
		return u.finishRaw(int(u.engine.Uint16(b)))
	case tagRaw32:
		b, err := u.readN(4)
		if err != nil {
			return nil, noClose, err
		}
		return u.finishRaw(int(u.engine.Uint32(b)))
	case tagRaw64:
		b, err := u.readN(8)
		if err != nil {
			return nil, noClose, err
		}
		n := u.engine.Uint64(b)
		if n > math.MaxInt32 {
			return nil, noClose, fmt.Errorf("%w: raw64 length %d too large", ErrTruncated, n)
		}
		return u.finishRaw(int(n))
	case tagInt8:
		b, err := u.readByte()
		if err != nil {
			return nil, noClose, err
		}
		return int64(int8(b)), noClose, nil
	case tagInt16:
		b, err := u.readN(2)
		if err != nil {
			return nil, noClose, err
		}
		return int64(int16(u.engine.Uint16(b))), noClose, nil
	case tagInt32:
		b, err := u.readN(4)
		if err != nil {
			return nil, noClose, err
		}
		return int64(int32(u.engine.Uint32(b))), noClose, nil
	case tagInt64:
		b, err := u.readN(8)
		if err != nil {
			return nil, noClose, err
		}
		return int64(u.engine.Uint64(b)), noClose, nil
	case tagDouble:
		b, err := u.readN(8)
		if err != nil {
			return nil, noClose, err
		}
		return math.Float64frombits(u.engine.Uint64(b)), noClose, nil
	case tagTrue:
		return true, noClose, nil
	case tagFalse:
		return false, noClose, nil
	case tagNull:
		return nil, noClose, nil
	case tagSeqOpen:
		v, err := u.readOpenSeq()
		return v, noClose, err
	case tagMapOpen:
		v, err := u.readOpenMap()
		return v, noClose, err
	case tagSeqClose:
		return nil, closeSeq, nil
	case tagMapClose:
		return nil, closeMap, nil
	}

	if isSeqFixed(t) {
		n := int(t - tagSeqFixedMin)
		v, err := u.readFixedSeq(n)
		return v, noClose, err
	}
	if isMapFixed(t) {
		n := int(t - tagMapFixedMin)
		v, err := u.readFixedMap(n)
		return v, noClose, err
	}

	// Every byte value is mapped above; reaching here is a defect in the
	// tag table, not a malformed-input condition.
	panic(fmt.Sprintf("qpack: tag %d not handled", b))
}

func (u *Unpacker) finishRaw(n int) (interface{}, closeKind, error) {
	data, err := u.readN(n)
	if err != nil {
		return nil, noClose, err
	}
	switch u.cfg.decode {
	case DecodeNone:
		out := make([]byte, n)
		copy(out, data)
		return out, noClose, nil
	case DecodeUTF8:
		if !utf8.Valid(data) {
			return nil, noClose, fmt.Errorf("%w: raw payload is not valid UTF-8", ErrDecode)
		}
		out := make([]byte, n)
		copy(out, data)
		return Text{Bytes: out, Encoding: DecodeUTF8}, noClose, nil
	case DecodeLatin1:
		out := make([]byte, n)
		copy(out, data)
		return Text{Bytes: out, Encoding: DecodeLatin1}, noClose, nil
	default:
		return nil, noClose, fmt.Errorf("%w: %v", ErrLookup, u.cfg.decode)
	}
}

func (u *Unpacker) readFixedSeq(n int) (interface{}, error) {
	out := make(Seq, 0, n)
	for i := 0; i < n; i++ {
		v, kind, err := u.step()
		if err != nil {
			return nil, err
		}
		if kind != noClose {
			return nil, fmt.Errorf("%w: close tag inside fixed sequence", ErrTruncated)
		}
		out = append(out, v)
	}
	return out, nil
}

func (u *Unpacker) readFixedMap(n int) (interface{}, error) {
	out := make(Map, 0, n)
	for i := 0; i < n; i++ {
		k, kind, err := u.step()
		if err != nil {
			return nil, err
		}
		if kind != noClose {
			return nil, fmt.Errorf("%w: close tag inside fixed mapping key", ErrTruncated)
		}
		v, kind, err := u.step()
		if err != nil {
			return nil, err
		}
		if kind != noClose {
			return nil, fmt.Errorf("%w: close tag inside fixed mapping value", ErrTruncated)
		}
		out = append(out, Pair{Key: k, Value: v})
	}
	return out, nil
}

// readOpenSeq decodes values until ARRAY_CLOSE. A MAP_CLOSE here is an
// error; this implementation always tests the sentinel freshly returned by
// step() rather than a value left over from a previous iteration.
func (u *Unpacker) readOpenSeq() (interface{}, error) {
	out := Seq{}
	for {
		v, kind, err := u.step()
		if err != nil {
			return nil, err
		}
		switch kind {
		case closeSeq:
			return out, nil
		case closeMap:
			return nil, fmt.Errorf("%w: unexpected map-close inside open sequence", ErrTruncated)
		default:
			out = append(out, v)
		}
	}
}

// readOpenMap decodes key,value pairs until MAP_CLOSE. The close check is
// performed on the freshly decoded key, never on a stale value slot left
// over from the previous pair.
func (u *Unpacker) readOpenMap() (interface{}, error) {
	out := Map{}
	for {
		k, kind, err := u.step()
		if err != nil {
			return nil, err
		}
		switch kind {
		case closeMap:
			return out, nil
		case closeSeq:
			return nil, fmt.Errorf("%w: unexpected array-close inside open mapping key", ErrTruncated)
		}

		v, kind, err := u.step()
		if err != nil {
			return nil, err
		}
		if kind != noClose {
			return nil, fmt.Errorf("%w: close tag where mapping value was expected", ErrTruncated)
		}
		out = append(out, Pair{Key: k, Value: v})
	}
}
