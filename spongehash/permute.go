package spongehash

// c0 and c1 are the fixed domain-separation constants mixed into the
// two AES calls of a single permutation. They are not nonces; changing
// either changes the hash's identity.
var (
	c0 = repeatedBlock(0x5c)
	c1 = repeatedBlock(0x36)
)

// domainSqueeze is absorbed once, between the final padded input block
// and the first squeezed output block, to separate the absorb and
// squeeze phases.
var domainSqueeze = repeatedBlock(0x6a)

func repeatedBlock(b byte) block {
	var v block
	for i := range v {
		v[i] = b
	}
	return v
}

// permute applies P to the 384-bit state (s0, s1, s2), in place.
//
//	K1 = s1 || s2
//	T  = AES-256(K1, s0 ^ C0)
//	K2 = (s2^T) || (s1^T)
//	U  = AES-256(K2, T ^ C1)
//	s0' = U
//	s1' = s1 ^ T
//	s2' = s2 ^ T
//
// The first encryption mixes the rate into the capacity; the second
// produces the new rate from that mixed value, so every input byte
// eventually influences both rate and capacity.
func permute(s0, s1, s2 *block, snail int) {
	var k1 key
	concatKey(&k1, s1, s2)

	var t, tmp block
	xorBlock(&tmp, s0, &c0)
	aes256Encrypt(&t, &tmp, &k1)

	snailDelay(snail)

	var a, b block
	xorBlock(&a, s2, &t)
	xorBlock(&b, s1, &t)
	var k2 key
	concatKey(&k2, &a, &b)

	var u, tmp2 block
	xorBlock(&tmp2, &t, &c1)
	aes256Encrypt(&u, &tmp2, &k2)

	snailDelay(snail)

	xorBlock(s1, s1, &t)
	xorBlock(s2, s2, &t)
	*s0 = u
}
