package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
)

// DirectoryVectorizer produces directory aggregate kinds by summing the
// matching descendant vectors already in the store. No provider calls
// happen here: aggregates are pure arithmetic over stored records, so a
// directory must run after the paths beneath it.
type DirectoryVectorizer struct {
	store driven.VectorStore
	kinds domain.KindSettings
	log   driven.Logger
}

// NewDirectoryVectorizer creates a directory vectoriser.
func NewDirectoryVectorizer(store driven.VectorStore, kinds domain.KindSettings, log driven.Logger) *DirectoryVectorizer {
	return &DirectoryVectorizer{
		store: store,
		kinds: kinds,
		log:   log,
	}
}

// Vectorize produces every enabled, still-missing aggregate kind for
// the directory at path. A kind with no qualifying descendant vectors
// writes nothing and is skipped with a warning; the outcome counts it
// as missing without an error.
func (d *DirectoryVectorizer) Vectorize(ctx context.Context, path string, parents domain.ParentRefs) (PathOutcome, error) {
	path = domain.NormalisePath(path)

	var outcome PathOutcome

	existing, err := d.store.GetByPath(ctx, path)
	if err != nil {
		outcome.Missing = len(d.kinds.DirectoryKinds())
		return outcome, fmt.Errorf("lookup existing kinds: %w", err)
	}
	present := make(map[domain.Kind]bool, len(existing))
	for _, item := range existing {
		present[item.Kind] = true
	}

	pending := make([]domain.Kind, 0, 2)
	for _, kind := range d.kinds.DirectoryKinds() {
		if present[kind] {
			d.log.Debug("Skipping %s (%s): already aggregated", path, kind)
			continue
		}
		pending = append(pending, kind)
	}
	if len(pending) == 0 {
		return outcome, nil
	}

	// One subtree fetch serves every pending aggregate kind.
	descendants, err := d.store.ListByPrefix(ctx, path)
	if err != nil {
		outcome.Missing = len(pending)
		return outcome, fmt.Errorf("list descendants: %w", err)
	}

	var errs []error
	for _, kind := range pending {
		wrote, err := d.aggregateKind(ctx, path, kind, descendants, parents)
		if err != nil {
			outcome.Missing++
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			continue
		}
		if wrote {
			outcome.Written++
		} else {
			outcome.Missing++
		}
	}
	return outcome, errors.Join(errs...)
}

// aggregateKind sums the subtree's source-family vectors into a single
// record. Returns false without error when nothing qualified.
func (d *DirectoryVectorizer) aggregateKind(ctx context.Context, path string, kind domain.Kind, descendants []domain.EmbeddingItem, parents domain.ParentRefs) (bool, error) {
	source := kind.Source()

	sum := domain.NewVectorSum(0)
	for _, item := range descendants {
		if item.Kind != source {
			continue
		}
		if err := sum.Add(item.Vector); err != nil {
			d.log.Warn("Ignoring %s in %s aggregate for %s: %v", item.Path, kind, path, err)
		}
	}
	if sum.Count() == 0 {
		d.log.Warn("No %s records under %s: skipping %s aggregate", source, path, kind)
		return false, nil
	}

	item := &domain.EmbeddingItem{
		Type:   domain.ItemTypeDirectory,
		Parent: parents.ForKind(kind),
		Path:   path,
		Kind:   kind,
		Vector: sum.Sum(),
	}
	id, err := d.store.Add(ctx, item)
	if err != nil {
		if errors.Is(err, domain.ErrStorageConflict) {
			d.log.Debug("Concurrent aggregate for %s (%s)", path, kind)
			return false, nil
		}
		return false, fmt.Errorf("store aggregate: %w", err)
	}

	d.relink(ctx, path, kind, id, descendants)
	return true, nil
}

// relink maintains the advisory parent and child references around a
// new aggregate: direct-child records of the same family point at it,
// and it lists them in path order. Reference updates are best effort
// and never fail the aggregate itself.
func (d *DirectoryVectorizer) relink(ctx context.Context, path string, kind domain.Kind, aggregateID string, descendants []domain.EmbeddingItem) {
	type childRef struct {
		id   string
		path string
	}
	var children []childRef

	for _, item := range descendants {
		if !domain.DirectChild(path, item.Path) {
			continue
		}
		// Files carry the source kind, nested directories the
		// aggregate kind; both belong to this aggregate's family.
		if item.Kind != kind && item.Kind != kind.Source() {
			continue
		}
		children = append(children, childRef{id: item.ID, path: item.Path})

		parentID := aggregateID
		if err := d.store.Update(ctx, item.ID, domain.ItemUpdate{Parent: &parentID}); err != nil {
			d.log.Debug("Reparenting %s under %s failed: %v", item.Path, path, err)
		}
	}
	if len(children) == 0 {
		return
	}

	sort.Slice(children, func(i, j int) bool { return children[i].path < children[j].path })
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = c.id
	}
	if err := d.store.Update(ctx, aggregateID, domain.ItemUpdate{Children: ids}); err != nil {
		d.log.Debug("Recording children of %s (%s) failed: %v", path, kind, err)
	}
}
