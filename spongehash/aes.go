package spongehash

import "crypto/aes"

// aes256Encrypt computes dst = AES-256(k, pt), exactly as defined by
// FIPS-197 with 14 rounds and a 256-bit key. crypto/aes already
// selects a hardware-accelerated implementation (AES-NI / ARMv8 crypto
// extensions) when the host supports it; that is a quality-of-
// implementation detail with no effect on the bytes produced.
func aes256Encrypt(dst, pt *block, k *key) {
	c, err := aes.NewCipher(k[:])
	if err != nil {
		// k is always exactly 32 bytes (KeyLen), so NewCipher can only
		// fail here if that invariant is broken elsewhere.
		panic("spongehash: invalid AES-256 key length: " + err.Error())
	}
	c.Encrypt(dst[:], pt[:])
}
