// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

import (
	"fmt"
	"math"
	"reflect"

	"github.com/cesbit/qpack-go/internal/hostorder"
)

// A Packer walks an input value tree and appends bytes to a growable
// output buffer, always choosing the narrowest tag that round-trips each
// value: a thin wrapper around a byte buffer that owns its own growth
// policy and is reused across the recursive calls a nested value requires.
//
// A Packer is not safe for concurrent use; each call site should own one
// for the duration of a single Pack, or serialize access.
type Packer struct {
	buf    []byte
	engine hostorder.Engine
}

// NewPacker returns a Packer with an empty buffer using the host's native
// byte order, matching how multi-byte fields are written by processes that
// write them directly from host memory rather than through a fixed wire
// order.
func NewPacker() *Packer {
	return &Packer{engine: hostorder.Native()}
}

// NewPackerWithEngine returns a Packer that writes multi-byte fields using
// the given byte-order engine, for callers who need a portable wire format
// instead of native-order output.
func NewPackerWithEngine(e hostorder.Engine) *Packer {
	return &Packer{engine: e}
}

// Reset discards any buffered output so the Packer can be reused, amortizing
// the allocation across many Pack calls instead of allocating a fresh
// buffer for each one.
func (p *Packer) Reset() {
	p.buf = p.buf[:0]
}

// Bytes returns the buffered output so far. The returned slice aliases the
// Packer's internal buffer and is invalidated by the next Pack/Reset call;
// callers who need to keep it should copy.
func (p *Packer) Bytes() []byte { return p.buf }

// Pack encodes v and appends its bytes to the Packer's buffer. It fails
// with ErrType if v's shape is not one of the supported variants, or
// ErrOverflow if an integer does not fit in signed 64 bits. No partial
// output is appended on error: on failure the buffer is truncated back to
// its length before the call.
func (p *Packer) Pack(v interface{}) error {
	mark := len(p.buf)
	if err := p.packValue(v); err != nil {
		p.buf = p.buf[:mark]
		return err
	}
	return nil
}

// Pack is the one-shot convenience form of Packer.Pack: it allocates a
// fresh Packer, encodes v, and returns a copy of the resulting bytes.
func Pack(v interface{}) ([]byte, error) {
	p := NewPacker()
	if err := p.Pack(v); err != nil {
		return nil, err
	}
	out := make([]byte, len(p.buf))
	copy(out, p.buf)
	return out, nil
}

// grow ensures room for k more bytes, rounding capacity up to the next
// multiple of defaultAllocSize. Go's append already amortizes growth, but
// growing in fixed chunks keeps the packer's resource behavior predictable
// for callers who pre-size a Packer and reuse it.
func (p *Packer) grow(k int) error {
	need := len(p.buf) + k
	if need < 0 || k < 0 {
		return fmt.Errorf("%w: requested size overflows int", ErrMemory)
	}
	if need <= cap(p.buf) {
		return nil
	}
	chunks := need/defaultAllocSize + 1
	newCap := chunks * defaultAllocSize
	if newCap < need || newCap < 0 {
		return fmt.Errorf("%w: capacity overflow", ErrMemory)
	}
	nb := make([]byte, len(p.buf), newCap)
	copy(nb, p.buf)
	_lg.WithField("old_cap", cap(p.buf)).WithField("new_cap", newCap).Debug("qpack: packer buffer grown")
	p.buf = nb
	return nil
}

func (p *Packer) appendByte(b byte) error {
	if err := p.grow(1); err != nil {
		return err
	}
	p.buf = append(p.buf, b)
	return nil
}

func (p *Packer) appendBytes(b []byte) error {
	if err := p.grow(len(b)); err != nil {
		return err
	}
	p.buf = append(p.buf, b...)
	return nil
}

func (p *Packer) packValue(v interface{}) error {
	switch t := v.(type) {
	case nil:
		return p.appendByte(byte(tagNull))
	case bool:
		if t {
			return p.appendByte(byte(tagTrue))
		}
		return p.appendByte(byte(tagFalse))
	case int:
		return p.packInt(int64(t))
	case int8:
		return p.packInt(int64(t))
	case int16:
		return p.packInt(int64(t))
	case int32:
		return p.packInt(int64(t))
	case int64:
		return p.packInt(t)
	case uint:
		return p.packUint(uint64(t))
	case uint8:
		return p.packUint(uint64(t))
	case uint16:
		return p.packUint(uint64(t))
	case uint32:
		return p.packUint(uint64(t))
	case uint64:
		return p.packUint(t)
	case float32:
		return p.packDouble(float64(t))
	case float64:
		return p.packDouble(t)
	case string:
		return p.packRaw([]byte(t))
	case []byte:
		return p.packRaw(t)
	case Text:
		return p.packRaw(t.Bytes)
	case Seq:
		return p.packSeq([]interface{}(t))
	case []interface{}:
		return p.packSeq(t)
	case Map:
		return p.packMap(t)
	case []Pair:
		return p.packMap(Map(t))
	}
	return p.packReflect(v)
}

func (p *Packer) packInt(n int64) error {
	switch {
	case n >= 0 && n < 64:
		return p.appendByte(byte(n))
	case n >= -60 && n < 0:
		return p.appendByte(byte(63 - n))
	case n >= math.MinInt8 && n <= math.MaxInt8:
		if err := p.appendByte(byte(tagInt8)); err != nil {
			return err
		}
		return p.appendByte(byte(int8(n)))
	case n >= math.MinInt16 && n <= math.MaxInt16:
		if err := p.appendByte(byte(tagInt16)); err != nil {
			return err
		}
		buf := make([]byte, 2)
		p.engine.PutUint16(buf, uint16(int16(n)))
		return p.appendBytes(buf)
	case n >= math.MinInt32 && n <= math.MaxInt32:
		if err := p.appendByte(byte(tagInt32)); err != nil {
			return err
		}
		buf := make([]byte, 4)
		p.engine.PutUint32(buf, uint32(int32(n)))
		return p.appendBytes(buf)
	default:
		if err := p.appendByte(byte(tagInt64)); err != nil {
			return err
		}
		buf := make([]byte, 8)
		p.engine.PutUint64(buf, uint64(n))
		return p.appendBytes(buf)
	}
}

func (p *Packer) packUint(u uint64) error {
	if u > math.MaxInt64 {
		return fmt.Errorf("%w: %d exceeds signed 64-bit range", ErrOverflow, u)
	}
	return p.packInt(int64(u))
}

func (p *Packer) packDouble(d float64) error {
	switch {
	case math.Float64bits(d) == math.Float64bits(-1.0):
		return p.appendByte(byte(tagDoubleNeg1))
	case math.Float64bits(d) == math.Float64bits(0.0):
		return p.appendByte(byte(tagDouble0))
	case math.Float64bits(d) == math.Float64bits(1.0):
		return p.appendByte(byte(tagDouble1))
	}
	if err := p.appendByte(byte(tagDouble)); err != nil {
		return err
	}
	buf := make([]byte, 8)
	p.engine.PutUint64(buf, math.Float64bits(d))
	return p.appendBytes(buf)
}

func (p *Packer) packRaw(b []byte) error {
	n := len(b)
	switch {
	case n < shortRawLimit:
		if err := p.appendByte(byte(int(tagShortRawMin) + n)); err != nil {
			return err
		}
	case n < 1<<8:
		if err := p.appendByte(byte(tagRaw8)); err != nil {
			return err
		}
		if err := p.appendByte(byte(n)); err != nil {
			return err
		}
	case n < 1<<16:
		if err := p.appendByte(byte(tagRaw16)); err != nil {
			return err
		}
		buf := make([]byte, 2)
		p.engine.PutUint16(buf, uint16(n))
		if err := p.appendBytes(buf); err != nil {
			return err
		}
	case int64(n) < 1<<32:
		if err := p.appendByte(byte(tagRaw32)); err != nil {
			return err
		}
		buf := make([]byte, 4)
		p.engine.PutUint32(buf, uint32(n))
		if err := p.appendBytes(buf); err != nil {
			return err
		}
	default:
		if err := p.appendByte(byte(tagRaw64)); err != nil {
			return err
		}
		buf := make([]byte, 8)
		p.engine.PutUint64(buf, uint64(n))
		if err := p.appendBytes(buf); err != nil {
			return err
		}
	}
	return p.appendBytes(b)
}

func (p *Packer) packSeq(xs []interface{}) error {
	if len(xs) <= maxFixedCount {
		if err := p.appendByte(byte(int(tagSeqFixedMin) + len(xs))); err != nil {
			return err
		}
		for _, x := range xs {
			if err := p.packValue(x); err != nil {
				return err
			}
		}
		return nil
	}
	if err := p.appendByte(byte(tagSeqOpen)); err != nil {
		return err
	}
	for _, x := range xs {
		if err := p.packValue(x); err != nil {
			return err
		}
	}
	return p.appendByte(byte(tagSeqClose))
}

func (p *Packer) packMap(kvs Map) error {
	if len(kvs) <= maxFixedCount {
		if err := p.appendByte(byte(int(tagMapFixedMin) + len(kvs))); err != nil {
			return err
		}
		for _, kv := range kvs {
			if err := p.packValue(kv.Key); err != nil {
				return err
			}
			if err := p.packValue(kv.Value); err != nil {
				return err
			}
		}
		return nil
	}
	if err := p.appendByte(byte(tagMapOpen)); err != nil {
		return err
	}
	for _, kv := range kvs {
		if err := p.packValue(kv.Key); err != nil {
			return err
		}
		if err := p.packValue(kv.Value); err != nil {
			return err
		}
	}
	return p.appendByte(byte(tagMapClose))
}

// packReflect is the fallback for values that are not one of the direct
// cases above: pointers, named slice/map/struct types, and structs tagged
// for field-level packing. A slice becomes a Seq, a map becomes a Map (in
// Go map iteration order, which is unspecified, so callers who need
// deterministic output across runs should pass an ordered Map instead),
// and a struct becomes a Map keyed by field name unless overridden by a
// `qpack:"name"` tag. Fields tagged `qpack:"-"` are skipped.
func (p *Packer) packReflect(v interface{}) error {
	val := reflect.ValueOf(v)
	if !val.IsValid() {
		return p.appendByte(byte(tagNull))
	}
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface:
		if val.IsNil() {
			return p.appendByte(byte(tagNull))
		}
		return p.packValue(val.Elem().Interface())
	case reflect.Slice, reflect.Array:
		n := val.Len()
		xs := make([]interface{}, n)
		for i := 0; i < n; i++ {
			xs[i] = val.Index(i).Interface()
		}
		return p.packSeq(xs)
	case reflect.Map:
		_lg.WithField("type", val.Type().String()).Debug("qpack: packing reflect.Map, iteration order is unspecified")
		keys := val.MapKeys()
		kvs := make(Map, 0, len(keys))
		for _, k := range keys {
			kvs = append(kvs, Pair{Key: k.Interface(), Value: val.MapIndex(k).Interface()})
		}
		return p.packMap(kvs)
	case reflect.Struct:
		return p.packStruct(val)
	}
	return fmt.Errorf("%w: %T", ErrType, v)
}

func (p *Packer) packStruct(val reflect.Value) error {
	typ := val.Type()
	var kvs Map
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		name, skip := fieldName(f)
		if skip {
			continue
		}
		kvs = append(kvs, Pair{Key: name, Value: val.Field(i).Interface()})
	}
	return p.packMap(kvs)
}

func fieldName(f reflect.StructField) (name string, skip bool) {
	tagVal, ok := f.Tag.Lookup("qpack")
	if !ok {
		return f.Name, false
	}
	if tagVal == "-" {
		return "", true
	}
	return tagVal, false
}
