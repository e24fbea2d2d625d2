// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type point struct {
	X int64  `qpack:"x"`
	Y int64  `qpack:"y"`
	Z int64  `qpack:"-"`
	W string `qpack:"w"`
}

func TestMarshalUnmarshalStruct(t *testing.T) {
	in := point{X: 3, Y: 4, Z: 999, W: "hi"}
	b, err := Marshal(in)
	require.NoError(t, err)

	var out point
	require.NoError(t, Unmarshal(b, &out))
	require.Equal(t, int64(3), out.X)
	require.Equal(t, int64(4), out.Y)
	require.Equal(t, int64(0), out.Z) // skipped field, never encoded
	require.Equal(t, "hi", out.W)
}

func TestUnmarshalIntoSlice(t *testing.T) {
	b, err := Pack(Seq{int64(1), int64(2), int64(3)})
	require.NoError(t, err)

	var out []int
	require.NoError(t, Unmarshal(b, &out))
	require.Equal(t, []int{1, 2, 3}, out)
}

func TestUnmarshalIntoMap(t *testing.T) {
	b, err := Pack(Map{{Key: "a", Value: int64(1)}, {Key: "b", Value: int64(2)}})
	require.NoError(t, err)

	var out map[string]int
	require.NoError(t, Unmarshal(b, &out))
	require.Equal(t, map[string]int{"a": 1, "b": 2}, out)
}

type qpackCustom struct {
	inner string
}

func (c qpackCustom) MarshalQPack() (interface{}, error) {
	return "custom:" + c.inner, nil
}

func (c *qpackCustom) UnmarshalQPack(v interface{}) error {
	s, ok := v.(Text)
	if !ok {
		b, ok := v.([]byte)
		if !ok {
			return ErrType
		}
		c.inner = string(b)
		return nil
	}
	c.inner = s.String()
	return nil
}

func TestMarshalerUnmarshalerHooks(t *testing.T) {
	b, err := Marshal(qpackCustom{inner: "x"})
	require.NoError(t, err)

	var out qpackCustom
	require.NoError(t, Unmarshal(b, &out))
	require.Equal(t, "custom:x", out.inner)
}

func TestUnmarshalNonPointerFails(t *testing.T) {
	b, _ := Pack(int64(1))
	var x int64
	err := Unmarshal(b, x)
	require.Error(t, err)
}

func TestPackReflectSliceAndStruct(t *testing.T) {
	type inner struct {
		A int64 `qpack:"a"`
	}
	type outer struct {
		Items []inner `qpack:"items"`
	}
	b, err := Pack(outer{Items: []inner{{A: 1}, {A: 2}}})
	require.NoError(t, err)

	var out outer
	require.NoError(t, Unmarshal(b, &out))
	require.Len(t, out.Items, 2)
	require.Equal(t, int64(1), out.Items[0].A)
	require.Equal(t, int64(2), out.Items[1].A)
}
