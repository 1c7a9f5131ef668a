// Package filesystem connects the vectorisation core to a local file
// tree. The Connector enumerates and reads files; the Watcher keeps
// stored vectors honest when the tree changes underneath them.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.TreeSource = (*Connector)(nil)

// Connector reads a local file tree. Exclusion patterns are fixed at
// construction; matched paths come back flagged and excluded directories
// are not descended into.
type Connector struct {
	exclusions domain.ExclusionList
}

// New creates a filesystem connector with the given exclusion patterns.
func New(exclusions domain.ExclusionList) *Connector {
	return &Connector{exclusions: exclusions}
}

// Validate checks that root exists and is a directory.
func (c *Connector) Validate(ctx context.Context, root string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return fmt.Errorf("root path error: %s does not exist", root)
	}
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", root)
	}
	return nil
}

// Walk enumerates the subtree rooted at root, including root itself, in
// lexical order. Excluded entries are flagged rather than dropped so the
// caller can report them; the walk does not descend into excluded
// directories. Irregular entries (symlinks, sockets, devices) are
// skipped.
func (c *Connector) Walk(ctx context.Context, root string) ([]domain.PathEntry, error) {
	if err := c.Validate(ctx, root); err != nil {
		return nil, err
	}

	var entries []domain.PathEntry
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}

		path := domain.NormalisePath(p)
		excluded := c.exclusions.Match(path)
		entries = append(entries, domain.PathEntry{
			Path:     path,
			Dir:      d.IsDir(),
			Excluded: excluded,
		})

		if excluded && d.IsDir() {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return entries, nil
}

// ReadFile returns a file's content as text.
func (c *Connector) ReadFile(ctx context.Context, path string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
