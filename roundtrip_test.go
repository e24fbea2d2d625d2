// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, v interface{}, opts ...Option) interface{} {
	t.Helper()
	b, err := Pack(v)
	require.NoError(t, err)
	got, err := Unpack(b, opts...)
	require.NoError(t, err)
	return got
}

func TestRoundTripScalars(t *testing.T) {
	cases := []interface{}{
		nil, true, false,
		int64(0), int64(63), int64(-1), int64(-60), int64(-61),
		int64(127), int64(-128), int64(200), int64(-200),
		int64(1 << 20), int64(-(1 << 20)), int64(1 << 40), int64(-(1 << 40)),
		0.0, -1.0, 1.0, 3.14159, -2.71828,
	}
	for _, v := range cases {
		got := roundTrip(t, v)
		if diff := cmp.Diff(v, got); diff != "" {
			t.Errorf("round-trip(%v) mismatch (-want +got):\n%s", v, diff)
		}
	}
}

func TestRoundTripBytesDefault(t *testing.T) {
	want := []byte("the quick brown fox")
	got := roundTrip(t, want)
	require.Equal(t, want, got)
}

func TestRoundTripTextUTF8(t *testing.T) {
	want := "the quick brown fox jumps over the lazy dog"
	got := roundTrip(t, want, WithDecode(DecodeUTF8))
	require.Equal(t, Text{Bytes: []byte(want), Encoding: DecodeUTF8}, got)
}

func TestRoundTripLongRaw(t *testing.T) {
	for _, n := range []int{0, 1, 99, 100, 255, 256, 65535, 65536, 70000} {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(i)
		}
		got := roundTrip(t, b)
		require.Equalf(t, b, got, "length %d", n)
	}
}

func TestRoundTripSequenceSizes(t *testing.T) {
	for n := 0; n <= 8; n++ {
		seq := make(Seq, n)
		for i := range seq {
			seq[i] = int64(i)
		}
		got := roundTrip(t, seq)
		require.Equalf(t, seq, got, "size %d", n)
	}
}

func TestRoundTripMappingSizes(t *testing.T) {
	for n := 0; n <= 8; n++ {
		m := make(Map, n)
		for i := range m {
			m[i] = Pair{Key: int64(i), Value: []byte("v" + string(rune('a'+i)))}
		}
		got := roundTrip(t, m)
		require.Equalf(t, m, got, "size %d", n)
	}
}

func TestRoundTripNestedStructure(t *testing.T) {
	// Text is packed as raw bytes with no on-wire string/bytes distinction,
	// so every string-shaped key and value here is built from []byte: with
	// the default DecodeNone option, that is exactly the shape Unpack hands
	// back, keeping this comparison a plain identity check instead of
	// requiring a Text-aware diff.
	v := Map{
		{Key: []byte("name"), Value: []byte("qpack")},
		{Key: []byte("tags"), Value: Seq{[]byte("fast"), []byte("compact"), int64(1)}},
		{Key: []byte("meta"), Value: Map{
			{Key: []byte("version"), Value: int64(1)},
			{Key: []byte("ratio"), Value: 0.5},
			{Key: []byte("nested"), Value: Seq{Seq{int64(1), int64(2)}, Map{{Key: []byte("k"), Value: true}}}},
		}},
		{Key: []byte("nothing"), Value: nil},
	}
	got := roundTrip(t, v)
	if diff := cmp.Diff(v, got); diff != "" {
		t.Errorf("nested round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripLargeSequenceUsesOpenContainer(t *testing.T) {
	seq := make(Seq, 1000)
	for i := range seq {
		seq[i] = int64(i)
	}
	b, err := Pack(seq)
	require.NoError(t, err)
	require.Equal(t, byte(tagSeqOpen), b[0])
	require.Equal(t, byte(tagSeqClose), b[len(b)-1])

	got, err := Unpack(b)
	require.NoError(t, err)
	require.Equal(t, seq, got)
}
