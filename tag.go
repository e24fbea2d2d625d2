// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

package qpack

// A tag is the first byte of an encoded value. It names the value's kind
// and, for small variants, carries its magnitude directly. The full
// [0,255] byte space is partitioned below; every byte value has a defined
// meaning, so the unpacker never needs an "unknown tag" error path.
type tag byte

const (
	// 0..63: positive integer literal, value = tag.
	tagPosIntMin tag = 0
	tagPosIntMax tag = 63

	// 64..123: negative integer literal, value = 63 - tag (64 -> -1 .. 123 -> -60).
	tagNegIntMin tag = 64
	tagNegIntMax tag = 123

	// 124: reserved "object hook". Decoded as Null; never emitted by Pack.
	tagHook tag = 124

	tagDoubleNeg1 tag = 125
	tagDouble0    tag = 126
	tagDouble1    tag = 127

	// 128..227: short raw, len = tag - 128 (0..99).
	tagShortRawMin tag = 128
	tagShortRawMax tag = 227

	tagRaw8  tag = 228
	tagRaw16 tag = 229
	tagRaw32 tag = 230
	tagRaw64 tag = 231

	tagInt8  tag = 232
	tagInt16 tag = 233
	tagInt32 tag = 234
	tagInt64 tag = 235

	tagDouble tag = 236

	// 237..242: fixed sequence of (tag-237) values, 0..5.
	tagSeqFixedMin tag = 237
	tagSeqFixedMax tag = 242

	// 243..248: fixed mapping of (tag-243) pairs, 0..5.
	tagMapFixedMin tag = 243
	tagMapFixedMax tag = 248

	tagTrue  tag = 249
	tagFalse tag = 250
	tagNull  tag = 251

	tagSeqOpen tag = 252
	tagMapOpen tag = 253

	tagSeqClose tag = 254
	tagMapClose tag = 255
)

const shortRawLimit = int(tagShortRawMax-tagShortRawMin) + 1 // 100

const maxFixedCount = int(tagSeqFixedMax - tagSeqFixedMin) // 5

// defaultAllocSize is the chunk size the packer buffer grows in, rounding
// each growth up to the next multiple of this size.
const defaultAllocSize = 64 * 1024

func isPosInt(t tag) bool  { return t >= tagPosIntMin && t <= tagPosIntMax }
func isNegInt(t tag) bool  { return t >= tagNegIntMin && t <= tagNegIntMax }
func isShortRaw(t tag) bool {
	return t >= tagShortRawMin && t <= tagShortRawMax
}
func isSeqFixed(t tag) bool { return t >= tagSeqFixedMin && t <= tagSeqFixedMax }
func isMapFixed(t tag) bool { return t >= tagMapFixedMin && t <= tagMapFixedMax }
