package domain

// SearchMode selects which kind family a search covers.
type SearchMode string

// Available search modes.
const (
	// SearchModeOrigin searches raw-content embeddings and their
	// directory aggregates (origin, vs_origin).
	SearchModeOrigin SearchMode = "origin"

	// SearchModeSummarize searches summary embeddings and their
	// directory aggregates (summarize, vs_summarize).
	SearchModeSummarize SearchMode = "summarize"

	// SearchModeAll searches every kind.
	SearchModeAll SearchMode = "all"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeOrigin, SearchModeSummarize, SearchModeAll:
		return true
	default:
		return false
	}
}

// Kinds returns the kinds the mode covers, nil meaning no filter.
func (m SearchMode) Kinds() []Kind {
	switch m {
	case SearchModeOrigin:
		return []Kind{KindOrigin, KindVSOrigin}
	case SearchModeSummarize:
		return []Kind{KindSummarize, KindVSSummarize}
	default:
		return nil
	}
}

// Matches reports whether a kind belongs to the mode's family.
func (m SearchMode) Matches(k Kind) bool {
	kinds := m.Kinds()
	if kinds == nil {
		return true
	}
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m SearchMode) Description() string {
	switch m {
	case SearchModeOrigin:
		return "Origin (raw content space)"
	case SearchModeSummarize:
		return "Summarize (summary space)"
	case SearchModeAll:
		return "All kinds"
	default:
		return unknownDescription
	}
}

// AllSearchModes returns all available search modes.
func AllSearchModes() []SearchMode {
	return []SearchMode{
		SearchModeOrigin,
		SearchModeSummarize,
		SearchModeAll,
	}
}

// SearchOptions configures a similarity query.
type SearchOptions struct {
	// Limit is the maximum number of results. Non-positive means the
	// configured default.
	Limit int

	// Mode filters results to one kind family. Empty means the
	// configured default.
	Mode SearchMode
}

// SearchResult is a single similarity hit.
type SearchResult struct {
	// Item is the matched record.
	Item EmbeddingItem

	// Similarity is the cosine similarity against the query, in [-1, 1].
	Similarity float64
}
