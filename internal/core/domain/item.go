package domain

import (
	"path"
	"path/filepath"
	"strings"
)

// ItemType identifies what a stored embedding describes.
type ItemType string

// Available item types.
const (
	// ItemTypeFile is an embedding of a single file's content or summary.
	ItemTypeFile ItemType = "file"

	// ItemTypeDirectory is an aggregate embedding over a directory subtree.
	ItemTypeDirectory ItemType = "directory"

	// ItemTypeChunk is reserved for sub-file segments. The vectorisers
	// never produce chunks, but stores accept and return them.
	ItemTypeChunk ItemType = "chunk"
)

// IsValid returns true if the item type is recognised.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeFile, ItemTypeDirectory, ItemTypeChunk:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ItemType) String() string {
	return string(t)
}

// Kind identifies which embedding space a record belongs to.
type Kind string

// Available kinds.
const (
	// KindOrigin embeds a file's raw content.
	KindOrigin Kind = "origin"

	// KindSummarize embeds a generated summary of a file's content.
	KindSummarize Kind = "summarize"

	// KindVSOrigin is a directory aggregate summing origin vectors.
	KindVSOrigin Kind = "vs_origin"

	// KindVSSummarize is a directory aggregate summing summarize vectors.
	KindVSSummarize Kind = "vs_summarize"
)

// IsValid returns true if the kind is recognised.
func (k Kind) IsValid() bool {
	switch k {
	case KindOrigin, KindSummarize, KindVSOrigin, KindVSSummarize:
		return true
	default:
		return false
	}
}

// IsAggregate returns true for directory aggregate kinds.
func (k Kind) IsAggregate() bool {
	return k == KindVSOrigin || k == KindVSSummarize
}

// Aggregate returns the directory kind that sums records of this kind,
// or the empty kind when this kind has no aggregate form.
func (k Kind) Aggregate() Kind {
	switch k {
	case KindOrigin:
		return KindVSOrigin
	case KindSummarize:
		return KindVSSummarize
	default:
		return ""
	}
}

// Source returns the file kind an aggregate of this kind sums over,
// or the empty kind when this kind is not an aggregate.
func (k Kind) Source() Kind {
	switch k {
	case KindVSOrigin:
		return KindOrigin
	case KindVSSummarize:
		return KindSummarize
	default:
		return ""
	}
}

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k Kind) Description() string {
	switch k {
	case KindOrigin:
		return "Raw content embedding"
	case KindSummarize:
		return "Summary embedding"
	case KindVSOrigin:
		return "Directory aggregate over raw content"
	case KindVSSummarize:
		return "Directory aggregate over summaries"
	default:
		return unknownDescription
	}
}

// FileKinds returns the kinds produced for files, in canonical order.
func FileKinds() []Kind {
	return []Kind{KindOrigin, KindSummarize}
}

// DirectoryKinds returns the kinds produced for directories, in canonical order.
func DirectoryKinds() []Kind {
	return []Kind{KindVSOrigin, KindVSSummarize}
}

// EmbeddingItem is one record in the vector store: a single embedding of
// a file, a directory aggregate, or a chunk, addressed by (Path, Kind).
type EmbeddingItem struct {
	// ID uniquely identifies the record. Assigned by the store on insert
	// when empty, immutable afterwards.
	ID string

	// Type says what the record describes.
	Type ItemType

	// Parent optionally references the parent directory's aggregate
	// record in the same kind family. Advisory: subtree membership is
	// decided by path prefixes, never by this link.
	Parent string

	// Children optionally lists ids of direct child records in path
	// order. Advisory, like Parent.
	Children []string

	// Path is the normalised path the record describes.
	Path string

	// Kind selects the embedding space. (Path, Kind) is unique per store.
	Kind Kind

	// Raw is the text that was embedded: file content for origin, the
	// summary for summarize, empty for aggregates.
	Raw string

	// Vector is the embedding, or the element-wise sum for aggregates.
	Vector []float32
}

// ItemUpdate names the fields an update may change. Nil pointers and nil
// slices leave the stored value untouched.
type ItemUpdate struct {
	// Raw replaces the stored text when non-nil.
	Raw *string

	// Vector replaces the stored vector when non-nil.
	Vector []float32

	// Parent replaces the parent reference when non-nil.
	Parent *string

	// Children replaces the child id list when non-nil.
	Children []string
}

// IsZero returns true when the update changes nothing.
func (u ItemUpdate) IsZero() bool {
	return u.Raw == nil && u.Vector == nil && u.Parent == nil && u.Children == nil
}

// ParentRefs carries the ids of a parent directory's aggregate records,
// one per kind family. Empty ids mean the aggregate does not exist yet.
type ParentRefs struct {
	// Origin is the id of the parent's vs_origin record.
	Origin string

	// Summarize is the id of the parent's vs_summarize record.
	Summarize string
}

// ForKind returns the parent reference matching a kind's family.
func (r ParentRefs) ForKind(k Kind) string {
	switch k {
	case KindOrigin, KindVSOrigin:
		return r.Origin
	case KindSummarize, KindVSSummarize:
		return r.Summarize
	default:
		return ""
	}
}

// PathEntry is one enumerated node of a file tree walk.
type PathEntry struct {
	// Path is the normalised path of the entry.
	Path string

	// Dir reports whether the entry is a directory.
	Dir bool

	// Excluded marks entries matched by exclusion patterns. Excluded
	// directories are not descended into.
	Excluded bool
}

// NormalisePath canonicalises a path for storage and comparison: forward
// slashes, redundant segments collapsed, no trailing separator. Case is
// preserved.
func NormalisePath(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(filepath.ToSlash(p))
}

// WithinDir reports whether p lies strictly inside dir, at any depth.
// Both paths must already be normalised.
func WithinDir(dir, p string) bool {
	if dir == "" || p == "" || p == dir {
		return false
	}
	if dir == "/" {
		return strings.HasPrefix(p, "/")
	}
	return strings.HasPrefix(p, dir+"/")
}

// ParentDir returns the parent directory of a normalised path. The second
// return is false at a root, where no parent exists.
func ParentDir(p string) (string, bool) {
	if p == "" || p == "/" {
		return "", false
	}
	d := path.Dir(p)
	if d == p {
		return "", false
	}
	return d, true
}

// DirectChild reports whether p is an immediate child of dir.
func DirectChild(dir, p string) bool {
	d, ok := ParentDir(p)
	return ok && d == dir
}
