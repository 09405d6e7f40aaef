package spongehash

// BlockLen is the width, in bytes, of a single sponge rate/capacity
// block (128 bits).
const BlockLen = 16

// KeyLen is the width, in bytes, of an AES-256 key formed by
// concatenating two blocks (256 bits).
const KeyLen = 2 * BlockLen

// block is a single 128-bit rate or capacity lane.
type block [BlockLen]byte

// key is a 256-bit AES-256 key formed from two blocks.
type key [KeyLen]byte

// xorBlock computes dst = a ^ b, byte by byte. The loop has no
// data-dependent branches and is safe on aliased dst==a or dst==b.
func xorBlock(dst, a, b *block) {
	for i := 0; i < BlockLen; i++ {
		dst[i] = a[i] ^ b[i]
	}
}

// concatKey forms the 256-bit key a||b with no reordering.
func concatKey(dst *key, a, b *block) {
	copy(dst[:BlockLen], a[:])
	copy(dst[BlockLen:], b[:])
}
