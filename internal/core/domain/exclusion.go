package domain

import (
	"path"
	"path/filepath"
)

// ExclusionList holds glob patterns that keep paths out of vectorisation.
// A pattern is matched against the normalised path of each candidate and
// of each of its ancestors, and against their base names, so
// "node_modules", "*.log" and "/srv/data/*" all behave as expected.
// A path inside an excluded directory is itself excluded.
type ExclusionList []string

// Match reports whether the path is excluded.
func (e ExclusionList) Match(p string) bool {
	if len(e) == 0 {
		return false
	}
	for cur := NormalisePath(p); cur != ""; {
		if e.matchOne(cur) {
			return true
		}
		parent, ok := ParentDir(cur)
		if !ok {
			break
		}
		cur = parent
	}
	return false
}

// matchOne checks a single path against every pattern. Malformed
// patterns never match.
func (e ExclusionList) matchOne(p string) bool {
	base := path.Base(p)
	for _, pattern := range e {
		if pattern == "" {
			continue
		}
		if ok, err := filepath.Match(pattern, p); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
