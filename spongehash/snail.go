package spongehash

// snailUnit is the amount of state-independent work performed by one
// unit of snail level, after each of the two AES calls of a permutation.
// It does not depend on input bytes and does not change the digest;
// it only makes each permutation more expensive to compute.
const snailUnit = 1 << 14

// snailSink prevents the compiler from eliding the delay loop. Writes
// to it are never read back by any other code path.
var snailSink uint64

// snailDelay burns CPU proportional to level. Called twice per
// permutation (once per AES call) when level > 0.
func snailDelay(level int) {
	if level <= 0 {
		return
	}
	var acc uint64 = 0x9e3779b97f4a7c15
	iterations := snailUnit * level
	for i := 0; i < iterations; i++ {
		acc = (acc ^ uint64(i)) * 0x100000001b3
		acc = acc<<17 | acc>>47
	}
	snailSink += acc
}
