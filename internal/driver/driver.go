package driver

import (
	"bufio"
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/lordmulder/sponge-hash-aes256/spongehash"
)

// Exit codes, per the specification's §6.
const (
	ExitSuccess        = 0
	ExitError          = 1
	ExitUsage          = 2
	ExitCancelled      = 130
	MaxDigestBits      = 2048
	MinDigestBits      = 8
	DefaultWorkerCount = 2
	MaxWorkerCount     = 64
)

// Config holds every knob the CLI surface (§6) exposes to the driver.
type Config struct {
	Dirs          bool
	Recursive     bool
	AllFiles      bool
	KeepGoing     bool
	LengthBytes   int
	InfoString    string
	Snail         int
	Quiet         bool
	Plain         bool
	NullTerminate bool
	MultiThreaded bool
	Flush         bool
	TextMode      bool
	Workers       int
	Verify        bool

	// SearchOrderEnv mirrors the SPONGE_SEARCH environment variable;
	// callers normally set this from os.Getenv("SPONGE_SEARCH").
	SearchOrderEnv string
}

// DefaultWorkers returns the default worker-pool size: the number of
// usable hardware threads, minimum 2, capped at MaxWorkerCount.
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n < DefaultWorkerCount {
		n = DefaultWorkerCount
	}
	if n > MaxWorkerCount {
		n = MaxWorkerCount
	}
	return n
}

// ValidateLength checks the --length argument against §6's bounds and
// returns the equivalent byte count.
func ValidateLength(bits int) (int, error) {
	if bits < MinDigestBits || bits > MaxDigestBits {
		return 0, fmt.Errorf("--length must be between %d and %d bits", MinDigestBits, MaxDigestBits)
	}
	if bits%8 != 0 {
		return 0, fmt.Errorf("--length must be a multiple of 8")
	}
	return bits / 8, nil
}

func cancelledFunc(ctx context.Context) func() bool {
	return func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}
}

// Run is the entry point used by cmd/spongesum. It returns a process
// exit code per §6's table.
func Run(parent context.Context, cfg *Config, args []string, stdout io.Writer) int {
	sigCtx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	var ok bool
	if cfg.Verify {
		ok = runVerify(ctx, cancel, cfg, args, stdout)
	} else {
		ok = runHash(ctx, cancel, cfg, args, stdout)
	}

	if sigCtx.Err() != nil {
		return ExitCancelled
	}
	if !ok {
		return ExitError
	}
	return ExitSuccess
}

func workerCount(cfg *Config) int {
	if !cfg.MultiThreaded {
		return 1
	}
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return DefaultWorkers()
}

// runHash drives ordinary (non-verify) hashing: enumerate, dispatch to
// a bounded worker pool, print in order.
func runHash(ctx context.Context, cancel context.CancelFunc, cfg *Config, args []string, stdout io.Writer) bool {
	cancelled := cancelledFunc(ctx)
	en := newEnumerator(cfg)
	workers := workerCount(cfg)

	jobsCh := make(chan Job, 4*workers)
	resultsCh := make(chan Result, 4*workers)

	go func() {
		defer close(jobsCh)
		en.Enumerate(args, cancelled, jobsCh, resultsCh)
	}()

	var g errgroup.Group
	var totalBytes atomic.Int64
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := range jobsCh {
				r := hashJob(ctx, cfg, j)
				totalBytes.Add(r.BytesRead)
				if r.Err != nil && r.Err.Kind != Cancelled && !cfg.KeepGoing {
					cancel()
				}
				resultsCh <- r
			}
			return nil
		})
	}
	go func() {
		g.Wait()
		close(resultsCh)
	}()

	if !cfg.Quiet {
		glog.V(1).Infof("spongesum: dispatching with %d worker(s)", workers)
	}

	p := newPrinter(cfg, stdout)
	ok := p.Drain(resultsCh)
	if !cfg.Quiet {
		glog.V(1).Infof("spongesum: hashed %s across all inputs", humanize.Bytes(uint64(totalBytes.Load())))
	}
	return ok
}

// verifyJob is one line of a checksum file awaiting hashing.
type verifyJob struct {
	index     int
	entry     ChecksumEntry
	malformed *JobError
}

// runVerify drives --check mode: every argument is read as a
// checksum file (or stdin, for "-"), and every line schedules the
// referenced target for hashing and comparison.
func runVerify(ctx context.Context, cancel context.CancelFunc, cfg *Config, args []string, stdout io.Writer) bool {
	if len(args) == 0 {
		args = []string{"-"}
	}

	jobs, ok := collectVerifyJobs(args)

	cancelled := cancelledFunc(ctx)
	workers := workerCount(cfg)
	jobsCh := make(chan verifyJob, 4*workers)
	resultsCh := make(chan Result, 4*workers)

	go func() {
		defer close(jobsCh)
		for _, j := range jobs {
			if cancelled() {
				return
			}
			jobsCh <- j
		}
	}()

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := range jobsCh {
				r := verifyOne(ctx, cfg, j)
				if r.Err != nil && r.Err.Kind != Cancelled && !cfg.KeepGoing {
					cancel()
				}
				resultsCh <- r
			}
			return nil
		})
	}
	go func() {
		g.Wait()
		close(resultsCh)
	}()

	p := newPrinter(cfg, stdout)
	drained := p.Drain(resultsCh)
	return drained && ok
}

// collectVerifyJobs reads every argument as a checksum file up front,
// assigning each non-blank, non-comment line a dense index. This keeps
// the index space simple: verify-mode "jobs" are lines, not files, and
// a checksum file is ordinarily small enough to read eagerly.
func collectVerifyJobs(args []string) ([]verifyJob, bool) {
	var jobs []verifyJob
	idx := 0
	ok := true

	for _, arg := range args {
		var r io.Reader
		if arg == "-" {
			r = os.Stdin
		} else {
			f, err := os.Open(arg)
			if err != nil {
				jobs = append(jobs, verifyJob{index: idx, malformed: &JobError{Kind: IoOpenError, Path: arg, Err: err}})
				idx++
				ok = false
				continue
			}
			defer f.Close()
			r = f
		}

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1<<20)
		for scanner.Scan() {
			line := scanner.Text()
			if isCommentOrBlank(line) {
				continue
			}
			entry, err := ParseChecksumLine(line)
			if err != nil {
				jobs = append(jobs, verifyJob{index: idx, malformed: &JobError{Kind: MalformedChecksumLine, Path: arg, Err: err}})
				ok = false
			} else {
				jobs = append(jobs, verifyJob{index: idx, entry: entry})
			}
			idx++
		}
	}
	return jobs, ok
}

// verifyOne hashes a verifyJob's target file (if not already
// malformed) and compares the result to the expected digest using a
// constant-time comparison.
func verifyOne(ctx context.Context, cfg *Config, j verifyJob) Result {
	if j.malformed != nil {
		return Result{Index: j.index, Path: j.malformed.Path, Status: "malformed", Err: j.malformed}
	}

	path := j.entry.Path
	f, err := os.Open(path)
	if err != nil {
		return Result{
			Index:  j.index,
			Path:   path,
			Status: "FAILED open or read",
			Err:    &JobError{Kind: IoOpenError, Path: path, Err: err},
		}
	}
	defer f.Close()

	var r io.Reader = f
	if j.entry.TextMode {
		r = newTextModeReader(r)
	}

	h := spongehash.New(cfg.Snail)
	if cfg.InfoString != "" {
		h.Update([]byte(cfg.InfoString))
	}
	buf := make([]byte, chunkSize)
	for {
		select {
		case <-ctx.Done():
			return Result{Index: j.index, Path: path, Err: &JobError{Kind: Cancelled, Path: path}}
		default:
		}
		n, err := r.Read(buf)
		if n > 0 {
			h.Update(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{
				Index:  j.index,
				Path:   path,
				Status: "FAILED open or read",
				Err:    &JobError{Kind: IoReadError, Path: path, Err: err},
			}
		}
	}

	got := h.Digest(len(j.entry.Digest))
	if subtle.ConstantTimeCompare(got, j.entry.Digest) == 1 {
		return Result{Index: j.index, Path: path, Digest: got, Status: "OK"}
	}
	return Result{
		Index:  j.index,
		Path:   path,
		Status: "FAILED",
		Err:    &JobError{Kind: VerificationMismatch, Path: path},
	}
}
