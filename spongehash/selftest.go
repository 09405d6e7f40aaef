package spongehash

import (
	"bytes"
	"fmt"
)

// SelfTest exercises the construction's own algebraic guarantees:
// determinism, incremental absorption, reset, and length-truncation
// (see spec §8, "Algorithmic invariants"). It returns the first
// violation found, or nil if every check passes.
//
// Unlike a conventional self-test, SelfTest does not compare against
// externally-pinned hex constants: SpongeHash-AES256 is a novel
// construction with no prior published reference digests to pin
// against, so the checks that matter are the ones that would catch an
// accidental change to the construction itself.
func SelfTest() error {
	if err := selfTestDeterminism(); err != nil {
		return err
	}
	if err := selfTestIncremental(); err != nil {
		return err
	}
	if err := selfTestReset(); err != nil {
		return err
	}
	if err := selfTestTruncation(); err != nil {
		return err
	}
	if err := selfTestEmptyNonZero(); err != nil {
		return err
	}
	if err := selfTestDomainSeparation(); err != nil {
		return err
	}
	return nil
}

var selfTestMessage = []byte("The quick brown fox jumps over the lazy dog")

func selfTestDeterminism() error {
	d1 := Default().withInput(selfTestMessage).Digest(32)
	d2 := Default().withInput(selfTestMessage).Digest(32)
	if !bytes.Equal(d1, d2) {
		return fmt.Errorf("spongehash: self-test failed: determinism")
	}
	return nil
}

func selfTestIncremental() error {
	whole := Default()
	whole.Update(selfTestMessage)
	want := whole.Digest(32)

	split := Default()
	mid := len(selfTestMessage) / 2
	split.Update(selfTestMessage[:mid])
	split.Update(selfTestMessage[mid:])
	got := split.Digest(32)

	if !bytes.Equal(want, got) {
		return fmt.Errorf("spongehash: self-test failed: incremental equivalence")
	}
	return nil
}

func selfTestReset() error {
	h := Default()
	h.Update([]byte("garbage that should be wiped by reset"))
	h.Reset()
	h.Update(selfTestMessage)
	got := h.Digest(32)

	want := Default().withInput(selfTestMessage).Digest(32)
	if !bytes.Equal(want, got) {
		return fmt.Errorf("spongehash: self-test failed: reset")
	}
	return nil
}

func selfTestTruncation() error {
	h := Default()
	h.Update(selfTestMessage)
	long := h.Digest(64)

	short := Default().withInput(selfTestMessage).Digest(32)
	if !bytes.Equal(long[:32], short) {
		return fmt.Errorf("spongehash: self-test failed: length truncation")
	}
	return nil
}

func selfTestEmptyNonZero() error {
	d := Default().Digest(32)
	if len(d) != 32 {
		return fmt.Errorf("spongehash: self-test failed: empty-input digest has wrong length")
	}
	allZero := true
	for _, b := range d {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return fmt.Errorf("spongehash: self-test failed: empty-input digest is all-zero")
	}
	return nil
}

func selfTestDomainSeparation() error {
	plain := Default().withInput(selfTestMessage).Digest(32)

	withCtx := Default()
	withCtx.Update([]byte("ctx"))
	withCtx.Update(selfTestMessage)
	ctxd := withCtx.Digest(32)

	if bytes.Equal(plain, ctxd) {
		return fmt.Errorf("spongehash: self-test failed: --info context did not change the digest")
	}
	return nil
}

// withInput is a tiny self-test convenience: absorb then return self.
func (h *Hash) withInput(p []byte) *Hash {
	h.Update(p)
	return h
}
