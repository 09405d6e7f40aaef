// Package spongehash implements SpongeHash-AES256, a cryptographic
// hash construction with variable-length output whose permutation is
// driven by AES-256 rather than a dedicated permutation such as
// Keccak-f.
//
// The construction is a sponge: a 384-bit state split into a 128-bit
// rate (the part directly XOR'd with input and read out) and a
// 256-bit capacity (never touched by I/O). Input is absorbed 16 bytes
// at a time; after the standard "append 0x80, zero-pad" padding and a
// domain-separating block, output is squeezed 16 bytes at a time and
// truncated to the requested length.
//
//	up to 16 bytes xored in
//	\/\/\/\/\/\/\/\/\/\/\/\/
//	========----------------
//	| rate | capacity      |
//	========----------------
//	::::::::::::::::::::::::
//	:::::: permutation P :::
//	::::::::::::::::::::::::
//	========----------------
//	| rate | capacity      |
//	========----------------
//	/\/\/\/\/\/\/\/\/\/\/\/\
//	up to 16 bytes copied out
//
// The permutation applies AES-256 twice per call: once to mix the
// rate into the capacity, once to produce the new rate from the
// result. See permute for the exact sequence.
//
// This is a novel construction, not a drop-in replacement for SHA-2,
// SHA-3, or any other standardized hash function; see the package's
// README / specification for its security rationale.
package spongehash
