package driver

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
)

// printer drains a Results channel keyed by Index, holding
// out-of-order results in a small reorder buffer until the next
// expected index arrives, so output lines appear in exactly
// enumeration order regardless of worker scheduling.
type printer struct {
	cfg     *Config
	w       *bufio.Writer
	pending map[int]Result
	next    int
}

func newPrinter(cfg *Config, w io.Writer) *printer {
	return &printer{
		cfg:     cfg,
		w:       bufio.NewWriter(w),
		pending: make(map[int]Result),
	}
}

// Drain consumes results until the channel is closed, printing each in
// ascending Index order. It returns true if every printed result was
// successful.
func (p *printer) Drain(results <-chan Result) bool {
	ok := true
	for r := range results {
		p.pending[r.Index] = r
		for {
			r, found := p.pending[p.next]
			if !found {
				break
			}
			delete(p.pending, p.next)
			if !p.printOne(r) {
				ok = false
			}
			p.next++
		}
	}
	p.w.Flush()
	return ok && len(p.pending) == 0
}

func (p *printer) printOne(r Result) bool {
	defer func() {
		if p.cfg.Flush {
			p.w.Flush()
		}
	}()

	if p.cfg.Verify {
		return p.printVerifyLine(r)
	}

	if r.Err != nil {
		if r.Err.Kind == Cancelled {
			// A cancelled-before-computed result carries no digest and
			// is never printed as a line.
			return false
		}
		if !p.cfg.Quiet {
			fmt.Fprintf(p.w, "spongesum: %s\n", r.Err.Error())
		}
		return false
	}

	line := hex.EncodeToString(r.Digest)
	if !p.cfg.Plain {
		name := r.Path
		if name == "" {
			name = "-"
		}
		line = line + "  " + escapeFilename(name)
	}
	p.writeLine(line)
	return true
}

func (p *printer) printVerifyLine(r Result) bool {
	if r.Err != nil && r.Err.Kind == Cancelled {
		return false
	}
	name := r.Path
	if name == "" {
		name = "-"
	}
	if r.Status == "OK" {
		p.writeLine(fmt.Sprintf("%s: OK", escapeFilename(name)))
		return true
	}
	if p.cfg.Quiet && r.Status != "" {
		return false
	}
	status := r.Status
	if status == "" && r.Err != nil {
		status = r.Err.Kind.String()
	}
	p.writeLine(fmt.Sprintf("%s: %s", escapeFilename(name), status))
	return false
}

func (p *printer) writeLine(line string) {
	if p.cfg.NullTerminate {
		fmt.Fprint(p.w, line, "\x00")
	} else {
		fmt.Fprintln(p.w, line)
	}
}
