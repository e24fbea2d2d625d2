// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

import (
	"encoding"
	"fmt"
	"reflect"
)

// An Unmarshaler decodes an already-unpacked qpack value tree into the
// receiver. The argument is the decoded tree (whatever Unpack would have
// returned), not a raw byte slice: qpack's recursive decoding has already
// happened by the time a type-specific hook could run, so there is no flat
// byte range left for the hook to parse itself.
type Unmarshaler interface {
	UnmarshalQPack(interface{}) error
}

// Unmarshal decodes data and stores the result in v, which must be a
// non-nil pointer. If v implements Unmarshaler, it receives the decoded
// value tree directly. Otherwise, if v implements
// encoding.BinaryUnmarshaler and the decoded value is []byte or Text,
// that method is used. Otherwise Unmarshal reflects into v the way
// encoding/json's Unmarshal does: matching Sequence to slice, Mapping to
// struct/map, and scalars to their corresponding Go kind. Array targets
// are not supported and fail with ErrType.
func Unmarshal(data []byte, v interface{}, opts ...Option) error {
	tree, err := Unpack(data, opts...)
	if err != nil {
		return err
	}
	if um, ok := v.(Unmarshaler); ok {
		return um.UnmarshalQPack(tree)
	}
	if bu, ok := v.(encoding.BinaryUnmarshaler); ok {
		switch t := tree.(type) {
		case []byte:
			return bu.UnmarshalBinary(t)
		case Text:
			return bu.UnmarshalBinary(t.Bytes)
		}
	}
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%w: Unmarshal target must be a non-nil pointer, got %T", ErrType, v)
	}
	return assign(val.Elem(), tree)
}

// assign populates dst (addressable) from src, a value of the shape
// Unpack produces: nil, bool, int64, float64, []byte, Text, Seq, or Map.
func assign(dst reflect.Value, src interface{}) error {
	if dst.Kind() == reflect.Ptr {
		if src == nil {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assign(dst.Elem(), src)
	}
	if dst.Kind() == reflect.Interface && dst.NumMethod() == 0 {
		dst.Set(reflect.ValueOf(src))
		return nil
	}
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	switch dst.Kind() {
	case reflect.Bool:
		b, ok := src.(bool)
		if !ok {
			return fmt.Errorf("%w: cannot assign %T to bool", ErrType, src)
		}
		dst.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := src.(int64)
		if !ok {
			return fmt.Errorf("%w: cannot assign %T to %s", ErrType, src, dst.Type())
		}
		dst.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := src.(int64)
		if !ok || n < 0 {
			return fmt.Errorf("%w: cannot assign %v to %s", ErrType, src, dst.Type())
		}
		dst.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		switch n := src.(type) {
		case float64:
			dst.SetFloat(n)
		case int64:
			dst.SetFloat(float64(n))
		default:
			return fmt.Errorf("%w: cannot assign %T to %s", ErrType, src, dst.Type())
		}
		return nil
	case reflect.String:
		switch t := src.(type) {
		case Text:
			dst.SetString(t.String())
		case []byte:
			dst.SetString(string(t))
		default:
			return fmt.Errorf("%w: cannot assign %T to string", ErrType, src)
		}
		return nil
	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			switch t := src.(type) {
			case []byte:
				dst.SetBytes(append([]byte(nil), t...))
				return nil
			case Text:
				dst.SetBytes(append([]byte(nil), t.Bytes...))
				return nil
			}
		}
		seq, ok := src.(Seq)
		if !ok {
			return fmt.Errorf("%w: cannot assign %T to %s", ErrType, src, dst.Type())
		}
		out := reflect.MakeSlice(dst.Type(), len(seq), len(seq))
		for i, elt := range seq {
			if err := assign(out.Index(i), elt); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		dst.Set(out)
		return nil
	case reflect.Map:
		m, ok := src.(Map)
		if !ok {
			return fmt.Errorf("%w: cannot assign %T to %s", ErrType, src, dst.Type())
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(m))
		for _, kv := range m {
			kp := reflect.New(dst.Type().Key()).Elem()
			if err := assign(kp, kv.Key); err != nil {
				return fmt.Errorf("map key: %w", err)
			}
			vp := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(vp, kv.Value); err != nil {
				return fmt.Errorf("map value for key %v: %w", kv.Key, err)
			}
			out.SetMapIndex(kp, vp)
		}
		dst.Set(out)
		return nil
	case reflect.Struct:
		m, ok := src.(Map)
		if !ok {
			return fmt.Errorf("%w: cannot assign %T to struct %s", ErrType, src, dst.Type())
		}
		typ := dst.Type()
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			if f.PkgPath != "" {
				continue
			}
			name, skip := fieldName(f)
			if skip {
				continue
			}
			val, found := lookupFieldKey(m, name)
			if !found {
				continue // unknown/absent field: leave zero value
			}
			if err := assign(dst.Field(i), val); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		return nil
	}
	return fmt.Errorf("%w: cannot assign %T to %s", ErrType, src, dst.Type())
}

// lookupFieldKey finds the pair whose key denotes the given field name.
// Field names are packed as text, and text unpacks as []byte or Text
// depending on decode options, so a bare interface{} comparison (what
// Map.Get does) would never match; this normalizes those shapes, and a
// plain string key, before comparing.
func lookupFieldKey(m Map, name string) (interface{}, bool) {
	for _, p := range m {
		switch k := p.Key.(type) {
		case string:
			if k == name {
				return p.Value, true
			}
		case []byte:
			if string(k) == name {
				return p.Value, true
			}
		case Text:
			if k.String() == name {
				return p.Value, true
			}
		}
	}
	return nil, false
}
