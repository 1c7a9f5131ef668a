package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
)

// PathOutcome reports what one vectorise call achieved for a path.
type PathOutcome struct {
	// Written counts records inserted by this call.
	Written int

	// Missing counts enabled kinds still absent afterwards, whether
	// they failed or were skipped.
	Missing int
}

// FileVectorizer produces the file-level embedding kinds for single
// paths: origin embeds the raw content, summarize embeds a generated
// summary of it. Kinds already present in the store are never
// re-embedded, so repeating a call is a no-op.
type FileVectorizer struct {
	store      driven.VectorStore
	embedder   driven.EmbeddingService
	summarizer driven.SummarizerService
	kinds      domain.KindSettings
	log        driven.Logger
}

// NewFileVectorizer creates a file vectoriser. The summariser may be
// nil when the summarize kind is disabled.
func NewFileVectorizer(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	summarizer driven.SummarizerService,
	kinds domain.KindSettings,
	log driven.Logger,
) *FileVectorizer {
	return &FileVectorizer{
		store:      store,
		embedder:   embedder,
		summarizer: summarizer,
		kinds:      kinds,
		log:        log,
	}
}

// Vectorize produces every enabled, still-missing kind for the file at
// path whose content is raw. Partial success is allowed: kinds written
// before a failure stay written, and the outcome is valid even when an
// error comes back with it.
func (f *FileVectorizer) Vectorize(ctx context.Context, path, raw string, parents domain.ParentRefs) (PathOutcome, error) {
	path = domain.NormalisePath(path)

	var outcome PathOutcome

	// One lookup covers the existence checks for every kind.
	existing, err := f.store.GetByPath(ctx, path)
	if err != nil {
		outcome.Missing = len(f.kinds.FileKinds())
		return outcome, fmt.Errorf("lookup existing kinds: %w", err)
	}
	present := make(map[domain.Kind]bool, len(existing))
	for _, item := range existing {
		present[item.Kind] = true
	}

	var errs []error
	for _, kind := range f.kinds.FileKinds() {
		if present[kind] {
			f.log.Debug("Skipping %s (%s): already embedded", path, kind)
			continue
		}
		if err := f.vectorizeKind(ctx, path, raw, kind, parents); err != nil {
			outcome.Missing++
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			continue
		}
		outcome.Written++
	}
	return outcome, errors.Join(errs...)
}

// vectorizeKind builds and stores a single embedding record.
func (f *FileVectorizer) vectorizeKind(ctx context.Context, path, raw string, kind domain.Kind, parents domain.ParentRefs) error {
	if f.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	text := raw
	if kind == domain.KindSummarize {
		if f.summarizer == nil {
			return domain.ErrSummarizerUnavailable
		}
		summary, err := f.summarizer.Summarize(ctx, raw)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		text = summary
	}

	vector, err := f.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	item := &domain.EmbeddingItem{
		Type:   domain.ItemTypeFile,
		Parent: parents.ForKind(kind),
		Path:   path,
		Kind:   kind,
		Raw:    text,
		Vector: vector,
	}
	if _, err := f.store.Add(ctx, item); err != nil {
		// A concurrent writer got there first; the record exists,
		// which is all this call needs.
		if errors.Is(err, domain.ErrStorageConflict) {
			f.log.Debug("Concurrent insert for %s (%s)", path, kind)
			return nil
		}
		return fmt.Errorf("store embedding: %w", err)
	}
	return nil
}
