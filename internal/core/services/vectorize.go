package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driving"
)

// Ensure VectorizeOrchestrator implements the interface.
var _ driving.VectorizeOrchestrator = (*VectorizeOrchestrator)(nil)

// VectorizeOrchestrator walks a file tree once and drives the file and
// directory vectorisers over it bottom-up: a directory is scheduled
// only after every path beneath it has settled, so its aggregates see
// the full subtree. Work runs on a bounded pool with at most one task
// per path.
type VectorizeOrchestrator struct {
	tree       driven.TreeSource
	store      driven.VectorStore
	embedder   driven.EmbeddingService
	summarizer driven.SummarizerService
	tracker    *StatusTracker
	kinds      domain.KindSettings
	workers    int
	log        driven.Logger

	files *FileVectorizer
	dirs  *DirectoryVectorizer

	running   atomic.Bool
	processed atomic.Int32
	errCount  atomic.Int32

	mu       sync.Mutex
	failures []domain.PathError
}

// node is one walked path with its scheduling bookkeeping. A directory
// starts with pending equal to its unsettled child count and becomes
// runnable when that reaches zero.
type node struct {
	entry    domain.PathEntry
	parent   *node
	pending  atomic.Int32
	complete bool
}

// NewVectorizeOrchestrator creates a vectorise orchestrator. The
// embedder is required for any run; the summariser is optional and only
// consulted when the summarize kind is enabled. Workers below one fall
// back to the default pool size.
func NewVectorizeOrchestrator(
	tree driven.TreeSource,
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	summarizer driven.SummarizerService,
	tracker *StatusTracker,
	kinds domain.KindSettings,
	workers int,
	log driven.Logger,
) *VectorizeOrchestrator {
	if workers < 1 {
		workers = domain.DefaultWorkers
	}
	return &VectorizeOrchestrator{
		tree:       tree,
		store:      store,
		embedder:   embedder,
		summarizer: summarizer,
		tracker:    tracker,
		kinds:      kinds,
		workers:    workers,
		log:        log,
		files:      NewFileVectorizer(store, embedder, summarizer, kinds, log),
		dirs:       NewDirectoryVectorizer(store, kinds, log),
	}
}

// VectorizeAll walks the tree rooted at root and embeds every pending
// path. Only one run may be active at a time; a second call returns
// ErrVectorizeInProgress. Cancellation is cooperative: in-flight tasks
// commit fully, no new tasks start, and the partial report comes back
// with the context error.
func (o *VectorizeOrchestrator) VectorizeAll(ctx context.Context, root string) (*domain.VectorizeReport, error) {
	if o.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if o.kinds.NeedsSummarizer() && o.summarizer == nil {
		return nil, domain.ErrSummarizerUnavailable
	}
	if !o.running.CompareAndSwap(false, true) {
		return nil, domain.ErrVectorizeInProgress
	}
	defer o.running.Store(false)

	o.resetRun()
	root = domain.NormalisePath(root)

	o.log.Section("Vectorize")
	o.log.Info("Enumerating %s", root)

	// 1. Enumerate the tree once; every decision below works off this
	// snapshot.
	entries, err := o.tree.Walk(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("walk tree: %w", err)
	}

	// 2. Classify each path: excluded and already-complete paths settle
	// without a task, everything else becomes one.
	nodes, runnable, err := o.classify(ctx, root, entries)
	if err != nil {
		return nil, err
	}
	o.log.Info("Scheduling %d of %d paths", runnable, len(nodes))

	// 3. Run the schedule bottom-up on the bounded pool.
	runErr := o.run(ctx, nodes)

	report := o.report()
	o.log.Info("Vectorize complete: %d processed, %d errors", report.Processed, report.Errors)
	return report, runErr
}

// classify builds the scheduling graph: parent links from the walk
// snapshot, pending counts for directories, and settled flags for
// excluded or already-complete paths. Returns the graph and the number
// of paths that still need a task.
func (o *VectorizeOrchestrator) classify(ctx context.Context, root string, entries []domain.PathEntry) (map[string]*node, int, error) {
	nodes := make(map[string]*node, len(entries))
	for _, entry := range entries {
		nodes[domain.NormalisePath(entry.Path)] = &node{entry: entry}
	}
	if _, ok := nodes[root]; !ok {
		return nil, 0, fmt.Errorf("%w: walk of %s did not include the root", domain.ErrInvalidInput, root)
	}

	for path, n := range nodes {
		if path == root {
			continue
		}
		parentPath, ok := domain.ParentDir(path)
		if !ok {
			continue
		}
		n.parent = nodes[parentPath]
	}

	runnable := 0
	for path, n := range nodes {
		if n.entry.Excluded {
			n.complete = true
			o.tracker.Set(path, domain.StatusExcluded)
			continue
		}
		done, err := o.alreadyComplete(ctx, n)
		if err != nil {
			return nil, 0, err
		}
		if done {
			n.complete = true
			o.tracker.Set(path, domain.StatusProcessed)
			continue
		}
		runnable++
		if n.parent != nil {
			n.parent.pending.Add(1)
		}
	}
	return nodes, runnable, nil
}

// alreadyComplete reports whether every enabled kind for the entry is
// stored. Directories missing an aggregate are never complete, so they
// re-run and pick up whatever the subtree holds now.
func (o *VectorizeOrchestrator) alreadyComplete(ctx context.Context, n *node) (bool, error) {
	expected := o.kinds.FileKinds()
	if n.entry.Dir {
		expected = o.kinds.DirectoryKinds()
	}
	if len(expected) == 0 {
		return true, nil
	}

	items, err := o.store.GetByPath(ctx, n.entry.Path)
	if err != nil {
		return false, fmt.Errorf("classify %s: %w", n.entry.Path, err)
	}
	present := make(map[domain.Kind]bool, len(items))
	for _, item := range items {
		present[item.Kind] = true
	}
	for _, kind := range expected {
		if !present[kind] {
			return false, nil
		}
	}
	return true, nil
}

// run executes the schedule. Leaves and settled-children directories
// start immediately; every finished task settles its parent's barrier
// and submits the parent once the barrier drains. Worker slots are
// acquired inside the task so submission never blocks.
func (o *VectorizeOrchestrator) run(ctx context.Context, nodes map[string]*node) error {
	group, groupCtx := errgroup.WithContext(ctx)
	slots := make(chan struct{}, o.workers)

	var submit func(n *node)
	submit = func(n *node) {
		group.Go(func() error {
			slots <- struct{}{}

			// Cancellation is checked at task start only; anything
			// already past this point commits fully.
			if err := groupCtx.Err(); err != nil {
				<-slots
				return err
			}

			o.process(groupCtx, n)
			<-slots

			if parent := n.parent; parent != nil && !parent.complete {
				if parent.pending.Add(-1) == 0 {
					submit(parent)
				}
			}
			return nil
		})
	}

	initial := make([]*node, 0, len(nodes))
	for _, n := range nodes {
		if !n.complete && n.pending.Load() == 0 {
			initial = append(initial, n)
		}
	}
	sort.Slice(initial, func(i, j int) bool { return initial[i].entry.Path < initial[j].entry.Path })
	for _, n := range initial {
		submit(n)
	}

	return group.Wait()
}

// process runs the appropriate vectoriser for one path and records the
// outcome.
func (o *VectorizeOrchestrator) process(ctx context.Context, n *node) {
	path := domain.NormalisePath(n.entry.Path)
	o.tracker.Set(path, domain.StatusProcessing)

	// In-flight work commits fully; cancellation only gates task starts.
	ctx = context.WithoutCancel(ctx)

	parents, err := o.parentRefs(ctx, n)
	if err != nil {
		o.fail(path, err)
		return
	}

	var outcome PathOutcome
	if n.entry.Dir {
		outcome, err = o.dirs.Vectorize(ctx, path, parents)
	} else {
		var raw string
		raw, err = o.tree.ReadFile(ctx, path)
		if err != nil {
			o.fail(path, fmt.Errorf("read file: %w", err))
			return
		}
		outcome, err = o.files.Vectorize(ctx, path, raw, parents)
	}
	if err != nil {
		o.fail(path, err)
		return
	}

	if outcome.Missing > 0 {
		// Nothing failed, but some kind was skipped (a directory with
		// no qualifying descendants). The path stays pending.
		o.tracker.Set(path, domain.StatusNotProcessed)
		return
	}

	o.tracker.Set(path, domain.StatusProcessed)
	if outcome.Written > 0 {
		o.processed.Add(1)
	}
}

// parentRefs looks up the parent directory's existing aggregate ids so
// new records can point at them. Missing aggregates leave empty refs;
// the directory vectoriser back-fills those once the parent runs.
func (o *VectorizeOrchestrator) parentRefs(ctx context.Context, n *node) (domain.ParentRefs, error) {
	parent := n.parent
	if parent == nil {
		return domain.ParentRefs{}, nil
	}

	items, err := o.store.GetByPath(ctx, parent.entry.Path)
	if err != nil {
		return domain.ParentRefs{}, fmt.Errorf("lookup parent aggregates: %w", err)
	}
	var refs domain.ParentRefs
	for _, item := range items {
		switch item.Kind {
		case domain.KindVSOrigin:
			refs.Origin = item.ID
		case domain.KindVSSummarize:
			refs.Summarize = item.ID
		}
	}
	return refs, nil
}

// fail records a path failure and returns its status to not-processed
// so the next run retries it.
func (o *VectorizeOrchestrator) fail(path string, err error) {
	o.log.Warn("Vectorize %s failed: %v", path, err)
	o.errCount.Add(1)

	o.mu.Lock()
	o.failures = append(o.failures, domain.PathError{Path: path, Err: err.Error()})
	o.mu.Unlock()

	o.tracker.Set(path, domain.StatusNotProcessed)
}

// resetRun clears the per-run counters.
func (o *VectorizeOrchestrator) resetRun() {
	o.processed.Store(0)
	o.errCount.Store(0)

	o.mu.Lock()
	o.failures = nil
	o.mu.Unlock()
}

// report snapshots the current counters into a run report.
func (o *VectorizeOrchestrator) report() *domain.VectorizeReport {
	o.mu.Lock()
	failures := append([]domain.PathError(nil), o.failures...)
	o.mu.Unlock()

	return &domain.VectorizeReport{
		Processed: int(o.processed.Load()),
		Errors:    int(o.errCount.Load()),
		Failures:  failures,
	}
}

// Status returns a snapshot of the active (or most recent) run.
func (o *VectorizeOrchestrator) Status() driving.VectorizeStatus {
	return driving.VectorizeStatus{
		Running:   o.running.Load(),
		Processed: int(o.processed.Load()),
		Errors:    int(o.errCount.Load()),
	}
}

// PathStatus returns where a path stands in the lifecycle.
func (o *VectorizeOrchestrator) PathStatus(path string) domain.PathStatus {
	return o.tracker.Status(path)
}

// SubscribeStatus registers fn for path status transitions.
func (o *VectorizeOrchestrator) SubscribeStatus(fn func(path string, status domain.PathStatus)) (cancel func()) {
	return o.tracker.Subscribe(fn)
}

// InvalidatePath reacts to a change at path: its records are dropped
// along with every ancestor aggregate up to root, and statuses fall
// back to not-processed so the next run re-embeds what disappeared.
func (o *VectorizeOrchestrator) InvalidatePath(ctx context.Context, root, path string) error {
	root = domain.NormalisePath(root)
	path = domain.NormalisePath(path)
	if path != root && !domain.WithinDir(root, path) {
		return fmt.Errorf("%w: %s is outside %s", domain.ErrInvalidInput, path, root)
	}

	removed, err := o.store.DeleteByPath(ctx, path)
	if err != nil {
		return fmt.Errorf("invalidate %s: %w", path, err)
	}
	if removed > 0 {
		o.log.Debug("Invalidated %d records at %s", removed, path)
	}
	o.tracker.Set(path, domain.StatusNotProcessed)

	// Ancestor aggregates are sums over the subtree, so they are stale
	// now and must be recomputed.
	for current := path; current != root; {
		parent, ok := domain.ParentDir(current)
		if !ok {
			break
		}
		if _, err := o.store.DeleteByPath(ctx, parent); err != nil {
			return fmt.Errorf("invalidate ancestor %s: %w", parent, err)
		}
		o.tracker.Set(parent, domain.StatusNotProcessed)
		current = parent
	}
	return nil
}
