package driver

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/glog"
)

// searchOrder selects how recursive directory traversal visits
// subdirectories, controlled by the SPONGE_SEARCH environment
// variable ("bfs", the default, or "dfs").
type searchOrder int

const (
	searchBFS searchOrder = iota
	searchDFS
)

func searchOrderFromEnv(env string) searchOrder {
	switch env {
	case "dfs":
		return searchDFS
	default:
		return searchBFS
	}
}

// enumerator turns CLI arguments into a dense, ordered stream of Jobs,
// plus an index-ordered stream of pre-resolved error Results for
// arguments that were rejected before any hashing could start.
type enumerator struct {
	cfg     *Config
	order   searchOrder
	nextIdx int
}

func newEnumerator(cfg *Config) *enumerator {
	return &enumerator{
		cfg:   cfg,
		order: searchOrderFromEnv(cfg.SearchOrderEnv),
	}
}

// Enumerate classifies args left to right and sends one Job (success)
// or one Result (enumeration-time failure) per discovered path to the
// matching channel, in strict argument/traversal order. It stops
// producing new work, without closing either channel, once cancelled
// reports true.
func (e *enumerator) Enumerate(args []string, cancelled func() bool, jobs chan<- Job, results chan<- Result) {
	if len(args) == 0 {
		e.emitJob(Job{Path: "", Kind: Stdin}, jobs)
		return
	}
	for _, arg := range args {
		if cancelled() {
			return
		}
		e.enumerateArg(arg, cancelled, jobs, results)
	}
}

func (e *enumerator) enumerateArg(arg string, cancelled func() bool, jobs chan<- Job, results chan<- Result) {
	if arg == "-" {
		e.emitJob(Job{Path: "", Kind: Stdin}, jobs)
		return
	}

	info, err := os.Lstat(arg)
	if err != nil {
		e.emitError(arg, IoOpenError, err, results)
		return
	}

	if info.Mode()&os.ModeSymlink != 0 {
		resolved, rerr := os.Stat(arg)
		if rerr != nil {
			e.emitError(arg, IoOpenError, rerr, results)
			return
		}
		info = resolved
	}

	switch {
	case info.IsDir():
		if !e.cfg.Dirs && !e.cfg.Recursive {
			e.emitError(arg, DirectoryNotAllowed, nil, results)
			return
		}
		e.expandDir(arg, cancelled, jobs, results)
	case info.Mode().IsRegular():
		e.emitJob(Job{Path: arg, Kind: Regular}, jobs)
	default:
		if e.cfg.AllFiles {
			e.emitJob(Job{Path: arg, Kind: Regular}, jobs)
			return
		}
		e.emitError(arg, NotRegular, nil, results)
	}
}

// dirEntry is a name+FileInfo pair sorted case-sensitively byte-wise
// by name, as the specification requires.
type dirEntry struct {
	name string
	info os.FileInfo
}

func readSortedDir(path string) ([]dirEntry, error) {
	raw, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]dirEntry, 0, len(raw))
	for _, d := range raw {
		info, ierr := d.Info()
		if ierr != nil {
			continue
		}
		entries = append(entries, dirEntry{name: d.Name(), info: info})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries, nil
}

// expandDir expands a directory argument. In flat mode, only direct
// regular children are emitted, sorted by local name. In recursive
// mode the whole tree is traversed in breadth-first or depth-first
// order, per e.order.
func (e *enumerator) expandDir(root string, cancelled func() bool, jobs chan<- Job, results chan<- Result) {
	if !e.cfg.Recursive {
		entries, err := readSortedDir(root)
		if err != nil {
			e.emitError(root, IoOpenError, err, results)
			return
		}
		for _, ent := range entries {
			if cancelled() {
				return
			}
			e.emitChild(filepath.Join(root, ent.name), ent.info, jobs, results)
		}
		return
	}
	if e.order == searchBFS {
		e.walkBFS(root, cancelled, jobs, results)
		return
	}
	e.walkDFS(root, nil, cancelled, jobs, results)
}

// ancestor identifies one directory on the path from an enumeration
// root to the directory currently being traversed, by the os.SameFile
// (device, inode) identity test.
type ancestor struct {
	info os.FileInfo
}

// visitDir stats dir, checks it against ancestors for a loop, reads
// and sorts its entries, and emits every regular (or --all) child
// file. It returns the subdirectories found (as paths, with the
// ancestor chain extended by dir) for the caller to schedule,
// depth-first or breadth-first, however it sees fit. A false third
// return means the caller should not descend any further from dir
// (stat/read failure or loop already reported).
func (e *enumerator) visitDir(dir string, ancestors []ancestor, cancelled func() bool, jobs chan<- Job, results chan<- Result) ([]string, []ancestor, bool) {
	info, err := os.Stat(dir)
	if err != nil {
		e.emitError(dir, IoOpenError, err, results)
		return nil, nil, false
	}
	for _, a := range ancestors {
		if os.SameFile(a.info, info) {
			e.emitError(dir, LoopDetected, nil, results)
			return nil, nil, false
		}
	}
	nextAncestors := append(append([]ancestor{}, ancestors...), ancestor{info: info})

	entries, err := readSortedDir(dir)
	if err != nil {
		e.emitError(dir, IoOpenError, err, results)
		return nil, nil, false
	}

	var subdirs []string
	for _, ent := range entries {
		if cancelled() {
			return nil, nil, false
		}
		path := filepath.Join(dir, ent.name)
		childInfo := ent.info
		if childInfo.Mode()&os.ModeSymlink != 0 {
			resolved, rerr := os.Stat(path)
			if rerr != nil {
				e.emitError(path, IoOpenError, rerr, results)
				continue
			}
			childInfo = resolved
		}
		if childInfo.IsDir() {
			subdirs = append(subdirs, path)
			continue
		}
		e.emitChild(path, childInfo, jobs, results)
	}
	return subdirs, nextAncestors, true
}

// walkDFS descends into dir and its subdirectories immediately, one
// branch fully exhausted before the next sibling is opened.
func (e *enumerator) walkDFS(dir string, ancestors []ancestor, cancelled func() bool, jobs chan<- Job, results chan<- Result) {
	subdirs, nextAncestors, ok := e.visitDir(dir, ancestors, cancelled, jobs, results)
	if !ok {
		return
	}
	for _, sd := range subdirs {
		if cancelled() {
			return
		}
		e.walkDFS(sd, nextAncestors, cancelled, jobs, results)
	}
}

// pendingDir is one directory awaiting a visit in walkBFS's queue,
// paired with the ancestor chain it was discovered through.
type pendingDir struct {
	path      string
	ancestors []ancestor
}

// walkBFS visits every directory in true level order: a FIFO queue
// holds every directory discovered anywhere in the tree so far, so
// all directories at depth d are visited (and their children emitted)
// before any directory at depth d+1 is opened, regardless of which
// branch of the tree it belongs to.
func (e *enumerator) walkBFS(root string, cancelled func() bool, jobs chan<- Job, results chan<- Result) {
	queue := []pendingDir{{path: root}}
	for len(queue) > 0 {
		if cancelled() {
			return
		}
		cur := queue[0]
		queue = queue[1:]

		subdirs, nextAncestors, ok := e.visitDir(cur.path, cur.ancestors, cancelled, jobs, results)
		if !ok {
			continue
		}
		for _, sd := range subdirs {
			queue = append(queue, pendingDir{path: sd, ancestors: nextAncestors})
		}
	}
}

func (e *enumerator) emitChild(path string, info os.FileInfo, jobs chan<- Job, results chan<- Result) {
	if info.Mode().IsRegular() {
		e.emitJob(Job{Path: path, Kind: Regular}, jobs)
		return
	}
	if e.cfg.AllFiles {
		e.emitJob(Job{Path: path, Kind: Regular}, jobs)
		return
	}
	// non-regular files are silently skipped without --all, not errors
	glog.V(1).Infof("skipping non-regular file %s (pass --all to include)", path)
}

func (e *enumerator) emitJob(j Job, jobs chan<- Job) {
	j.Index = e.nextIdx
	e.nextIdx++
	jobs <- j
}

func (e *enumerator) emitError(path string, kind ErrorKind, cause error, results chan<- Result) {
	idx := e.nextIdx
	e.nextIdx++
	results <- Result{Index: idx, Path: path, Err: &JobError{Kind: kind, Path: path, Err: cause}}
}
