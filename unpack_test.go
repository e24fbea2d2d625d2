// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnpackConcreteScenarios(t *testing.T) {
	v, err := Unpack([]byte{0xFB})
	require.NoError(t, err)
	require.Nil(t, v)

	v, err = Unpack([]byte{0xF9})
	require.NoError(t, err)
	require.Equal(t, true, v)

	v, err = Unpack([]byte{0x2A})
	require.NoError(t, err)
	require.Equal(t, int64(42), v)
}

func TestUnpackTruncation(t *testing.T) {
	full := mustPack(t, Seq{int64(1), []byte("hello"), 2.0})
	for n := 0; n < len(full); n++ {
		_, err := Unpack(full[:n])
		require.Errorf(t, err, "prefix length %d should fail", n)
		require.Truef(t, errors.Is(err, ErrTruncated), "prefix length %d: got %v", n, err)
	}
	// The full encoding must round-trip without error.
	_, err := Unpack(full)
	require.NoError(t, err)
}

func TestUnpackSentinelLeakage(t *testing.T) {
	_, err := Unpack([]byte{0xFE}) // ARRAY_CLOSE
	require.True(t, errors.Is(err, ErrTruncated))

	_, err = Unpack([]byte{0xFF}) // MAP_CLOSE
	require.True(t, errors.Is(err, ErrTruncated))
}

func TestUnpackReservedHookIsNull(t *testing.T) {
	v, err := Unpack([]byte{124})
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestUnpackOpenSequenceRejectsMapClose(t *testing.T) {
	// ARRAY_OPEN, MAP_CLOSE
	_, err := Unpack([]byte{byte(tagSeqOpen), byte(tagMapClose)})
	require.True(t, errors.Is(err, ErrTruncated))
}

func TestUnpackOpenMappingRejectsArrayCloseAsKey(t *testing.T) {
	// MAP_OPEN, ARRAY_CLOSE
	_, err := Unpack([]byte{byte(tagMapOpen), byte(tagSeqClose)})
	require.True(t, errors.Is(err, ErrTruncated))
}

func TestUnpackFixedSequenceRejectsCloseSentinel(t *testing.T) {
	// Fixed sequence tag for 1 element (238), followed by ARRAY_CLOSE instead of a value.
	_, err := Unpack([]byte{byte(tagSeqFixedMin + 1), byte(tagSeqClose)})
	require.True(t, errors.Is(err, ErrTruncated))
}

func TestUnpackTrailingBytesIgnored(t *testing.T) {
	data := append(mustPack(t, int64(1)), 0xDE, 0xAD)
	v, err := Unpack(data)
	require.NoError(t, err)
	require.Equal(t, int64(1), v)
}

func TestUnpackDecodeOptionRoundTrip(t *testing.T) {
	b := []byte("hello, world")
	enc := mustPack(t, b)

	v, err := Unpack(enc, WithDecode(DecodeNone))
	require.NoError(t, err)
	require.Equal(t, b, v)

	v, err = Unpack(enc, WithDecode(DecodeUTF8))
	require.NoError(t, err)
	require.Equal(t, Text{Bytes: b, Encoding: DecodeUTF8}, v)
}

func TestUnpackDecodeUTF8RejectsInvalidBytes(t *testing.T) {
	enc := mustPack(t, []byte{0xFF, 0xFE})
	_, err := Unpack(enc, WithDecode(DecodeUTF8))
	require.True(t, errors.Is(err, ErrDecode))
}

func TestUnpackerNextStepsThroughMultipleValues(t *testing.T) {
	var buf []byte
	buf = append(buf, mustPack(t, int64(1))...)
	buf = append(buf, mustPack(t, "two")...)
	buf = append(buf, mustPack(t, true)...)

	u := NewUnpacker(buf)
	v1, err := u.Next()
	require.NoError(t, err)
	require.Equal(t, int64(1), v1)

	v2, err := u.Next()
	require.NoError(t, err)
	require.Equal(t, []byte("two"), v2)

	v3, err := u.Next()
	require.NoError(t, err)
	require.Equal(t, true, v3)

	_, err = u.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestUnpackEmptyInputIsTruncated(t *testing.T) {
	_, err := Unpack(nil)
	require.True(t, errors.Is(err, ErrTruncated))
}
