package driver

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/lordmulder/sponge-hash-aes256/spongehash"
)

// chunkSize is the read-buffer size used by workers: large enough to
// amortize syscall overhead, small enough to poll cancellation between
// reads at a reasonable granularity (spec allows 64 KiB .. 1 MiB).
const chunkSize = 256 * 1024

// hashJob reads j's file (or stdin) in chunks, feeding each chunk to a
// fresh Hash, and returns a Result. Cancellation is polled between
// chunks, never mid-permutation, so it never leaks partial sponge
// state into a printed result.
func hashJob(ctx context.Context, cfg *Config, j Job) Result {
	var r io.Reader
	path := j.Path
	if j.Kind == Stdin {
		r = os.Stdin
		path = ""
	} else {
		f, err := os.Open(j.Path)
		if err != nil {
			return Result{Index: j.Index, Path: j.Path, Err: &JobError{Kind: IoOpenError, Path: j.Path, Err: err}}
		}
		defer f.Close()
		r = f
	}

	if cfg.TextMode {
		r = newTextModeReader(r)
	}

	h := spongehash.New(cfg.Snail)
	if cfg.InfoString != "" {
		h.Update([]byte(cfg.InfoString))
	}

	buf := make([]byte, chunkSize)
	var total int64
	for {
		select {
		case <-ctx.Done():
			return Result{Index: j.Index, Path: j.Path, Err: &JobError{Kind: Cancelled, Path: j.Path}}
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			h.Update(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{Index: j.Index, Path: j.Path, Err: &JobError{Kind: IoReadError, Path: j.Path, Err: err}}
		}
	}

	digest := h.Digest(cfg.LengthBytes)
	return Result{Index: j.Index, Path: path, Digest: digest, BytesRead: total}
}

// textModeReader normalizes CRLF and lone CR line endings to LF, as
// "text mode" reading (-t/--text) requires.
//
// Collapsing CRLF into a single LF can make one Read of the underlying
// source produce one more output byte than fits in the caller's
// buffer (a trailing CR held over from the previous chunk resolves
// into a synthesized LF at the very start of this one). Any byte that
// does not fit is kept in overflow, along with the source error that
// accompanied it, and is drained before the next real read.
type textModeReader struct {
	src         io.Reader
	havePending bool
	overflow    []byte
	pendingErr  error
}

func newTextModeReader(r io.Reader) io.Reader {
	return &textModeReader{src: r}
}

func (t *textModeReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(t.overflow) > 0 {
		n := copy(p, t.overflow)
		t.overflow = t.overflow[n:]
		if len(t.overflow) == 0 && t.pendingErr != nil {
			err := t.pendingErr
			t.pendingErr = nil
			return n, err
		}
		return n, nil
	}

	raw := make([]byte, len(p))
	n, err := t.src.Read(raw)
	if n == 0 {
		if t.havePending && err != nil {
			// A CR held over from the previous chunk ends the input.
			t.havePending = false
			p[0] = '\n'
			return 1, err
		}
		return 0, err
	}
	var out bytes.Buffer
	out.Grow(n + 1)
	if t.havePending {
		if raw[0] != '\n' {
			out.WriteByte('\n')
		}
		t.havePending = false
	}
	for i := 0; i < n; i++ {
		b := raw[i]
		switch b {
		case '\r':
			if i == n-1 {
				t.havePending = true
				continue
			}
			out.WriteByte('\n')
			if raw[i+1] == '\n' {
				i++
			}
		default:
			out.WriteByte(b)
		}
	}
	if t.havePending && err != nil {
		out.WriteByte('\n')
		t.havePending = false
	}

	data := out.Bytes()
	copied := copy(p, data)
	if copied < len(data) {
		t.overflow = append([]byte(nil), data[copied:]...)
		t.pendingErr = err
		return copied, nil
	}
	return copied, err
}
