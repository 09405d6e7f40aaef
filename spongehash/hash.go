package spongehash

import "io"

// Hash is a SpongeHash-AES256 instance: a 384-bit state plus a
// partial-input buffer of fewer than BlockLen bytes, and an optional
// snail (deliberate-slowdown) level.
//
// A Hash is not safe for concurrent use. The file-hashing driver gives
// each worker its own instance for the lifetime of one file.
type Hash struct {
	s0, s1, s2 block
	buf        [BlockLen]byte // buf[:buflen] is valid between calls; buflen < BlockLen
	buflen     int
	snail      int
	done       bool // true once Digest has been called; reuse is a programmer error
}

var _ io.Writer = (*Hash)(nil)

// New returns a Hash with zero state, an empty buffer, and the given
// snail level. Negative levels are clamped to zero.
func New(snail int) *Hash {
	if snail < 0 {
		snail = 0
	}
	return &Hash{snail: snail}
}

// Default returns a Hash with snail level 0; equivalent to New(0).
func Default() *Hash {
	return New(0)
}

// Clone returns an independent copy of h sharing no memory with it.
// Cloning before calling Digest is the supported way to read a digest
// without consuming the original, per the type's single-shot
// finalization semantics (see Digest).
func (h *Hash) Clone() *Hash {
	cp := *h
	return &cp
}

// Reset restores the initial all-zero state and empties the partial
// buffer. The snail level is retained; a poisoned (post-Digest) Hash
// becomes usable again.
func (h *Hash) Reset() {
	h.s0, h.s1, h.s2 = block{}, block{}, block{}
	h.buflen = 0
	h.done = false
}

func (h *Hash) checkAlive() {
	if h.done {
		panic("spongehash: Hash used after Digest; call Reset or Clone before reuse")
	}
}

// absorbBlock xors exactly BlockLen bytes of p into the rate and
// applies the permutation.
func (h *Hash) absorbBlock(p []byte) {
	var in block
	copy(in[:], p)
	xorBlock(&h.s0, &h.s0, &in)
	permute(&h.s0, &h.s1, &h.s2, h.snail)
}

// Update absorbs a sequence of bytes, buffering any trailing partial
// block for the next call.
func (h *Hash) Update(p []byte) {
	h.checkAlive()
	if h.buflen > 0 {
		n := copy(h.buf[h.buflen:], p)
		h.buflen += n
		p = p[n:]
		if h.buflen < BlockLen {
			return
		}
		h.absorbBlock(h.buf[:BlockLen])
		h.buflen = 0
	}
	for len(p) >= BlockLen {
		h.absorbBlock(p[:BlockLen])
		p = p[BlockLen:]
	}
	if len(p) > 0 {
		h.buflen = copy(h.buf[:], p)
	}
}

// UpdateRange absorbs data[begin:end], exactly as Update would. It
// exists for parity with bindings that expose raw address ranges over
// FFI; callers using plain Go slices should just call Update. It is
// the caller's responsibility that begin <= end <= len(data).
func (h *Hash) UpdateRange(data []byte, begin, end int) {
	h.Update(data[begin:end])
}

// Write implements io.Writer in terms of Update; it never returns an
// error and always reports len(p) written.
func (h *Hash) Write(p []byte) (int, error) {
	h.Update(p)
	return len(p), nil
}

// Digest finalizes the hash and returns n bytes of output.
//
// Finalization pads the buffered partial block with a single 0x80
// byte followed by zeros (the classic sponge append-then-zero-pad
// rule, realized in bytes rather than bits), absorbs it, absorbs a
// fixed domain-separation block, then squeezes ceil(n/BlockLen) output
// blocks and truncates to exactly n bytes.
//
// Digest consumes the receiver: a second call, or any further call to
// Update, panics. Clone the Hash first if the unfinalized state is
// still needed (e.g. to take digests of several lengths that share a
// message prefix).
func (h *Hash) Digest(n int) []byte {
	h.checkAlive()
	if n <= 0 {
		panic("spongehash: requested digest length must be >= 1 byte")
	}

	var final [BlockLen]byte
	copy(final[:], h.buf[:h.buflen])
	final[h.buflen] = 0x80
	h.absorbBlock(final[:])
	h.absorbBlock(domainSqueeze[:])

	outBlocks := (n + BlockLen - 1) / BlockLen
	out := make([]byte, 0, outBlocks*BlockLen)
	for i := 0; i < outBlocks; i++ {
		out = append(out, h.s0[:]...)
		permute(&h.s0, &h.s1, &h.s2, h.snail)
	}
	h.done = true
	return out[:n]
}
