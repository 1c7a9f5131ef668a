package services

import (
	"sort"
	"sync"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

// StatusTracker maintains the lifecycle status of every path a
// vectorisation run has seen and pushes transitions to subscribers.
//
// Exclusion patterns take precedence over recorded state: a path that
// matches them always reports StatusExcluded, whatever was recorded for
// it. The vector store is the source of truth for processed state; the
// tracker is refreshed from it during run classification, never the
// other way round.
type StatusTracker struct {
	mu          sync.RWMutex
	statuses    map[string]domain.PathStatus
	exclusions  domain.ExclusionList
	subscribers map[int]func(path string, status domain.PathStatus)
	nextSubID   int
}

// NewStatusTracker creates a tracker with the given exclusion patterns.
func NewStatusTracker(exclusions domain.ExclusionList) *StatusTracker {
	return &StatusTracker{
		statuses:    make(map[string]domain.PathStatus),
		exclusions:  exclusions,
		subscribers: make(map[int]func(string, domain.PathStatus)),
	}
}

// Status returns the path's lifecycle status. Exclusion patterns win
// over anything recorded; unknown paths are not-processed.
func (t *StatusTracker) Status(path string) domain.PathStatus {
	path = domain.NormalisePath(path)

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.exclusions.Match(path) {
		return domain.StatusExcluded
	}
	if status, ok := t.statuses[path]; ok {
		return status
	}
	return domain.StatusNotProcessed
}

// Set records a path's status and notifies subscribers when it changed.
// Subscribers run synchronously, in subscription order.
func (t *StatusTracker) Set(path string, status domain.PathStatus) {
	path = domain.NormalisePath(path)

	t.mu.Lock()
	if current, ok := t.statuses[path]; ok && current == status {
		t.mu.Unlock()
		return
	}
	t.statuses[path] = status
	subscribers := t.snapshotSubscribersLocked()
	t.mu.Unlock()

	for _, notify := range subscribers {
		notify(path, status)
	}
}

// Forget drops a path from the tracker, notifying subscribers that it is
// back to not-processed. Used when a path disappears from the tree.
func (t *StatusTracker) Forget(path string) {
	path = domain.NormalisePath(path)

	t.mu.Lock()
	if _, ok := t.statuses[path]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.statuses, path)
	subscribers := t.snapshotSubscribersLocked()
	t.mu.Unlock()

	for _, notify := range subscribers {
		notify(path, domain.StatusNotProcessed)
	}
}

// Reset clears all recorded statuses without notifying subscribers.
func (t *StatusTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses = make(map[string]domain.PathStatus)
}

// SetExclusions replaces the exclusion pattern list.
func (t *StatusTracker) SetExclusions(exclusions domain.ExclusionList) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exclusions = exclusions
}

// Subscribe registers fn for status transitions. The returned function
// cancels the subscription and is safe to call more than once.
func (t *StatusTracker) Subscribe(fn func(path string, status domain.PathStatus)) (cancel func()) {
	t.mu.Lock()
	id := t.nextSubID
	t.nextSubID++
	t.subscribers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subscribers, id)
	}
}

// snapshotSubscribersLocked copies the subscriber list in subscription
// order so notifications run outside the lock.
func (t *StatusTracker) snapshotSubscribersLocked() []func(string, domain.PathStatus) {
	if len(t.subscribers) == 0 {
		return nil
	}
	ids := make([]int, 0, len(t.subscribers))
	for id := range t.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	subscribers := make([]func(string, domain.PathStatus), 0, len(ids))
	for _, id := range ids {
		subscribers = append(subscribers, t.subscribers[id])
	}
	return subscribers
}
