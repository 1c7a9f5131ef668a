package domain

// PathStatus describes where a path stands in the vectorisation lifecycle.
type PathStatus string

// Path lifecycle states.
const (
	// StatusNotProcessed means one or more expected kinds have no record yet.
	StatusNotProcessed PathStatus = "not-processed"

	// StatusProcessing means a vectorisation task is running for the path.
	StatusProcessing PathStatus = "processing"

	// StatusProcessed means every expected kind exists in the store.
	StatusProcessed PathStatus = "processed"

	// StatusExcluded means configuration patterns exclude the path.
	// Absorbing: it takes precedence over anything the store holds.
	StatusExcluded PathStatus = "excluded"
)

// IsValid returns true if the status is recognised.
func (s PathStatus) IsValid() bool {
	switch s {
	case StatusNotProcessed, StatusProcessing, StatusProcessed, StatusExcluded:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s PathStatus) String() string {
	return string(s)
}

// Description returns a human-readable description of the status.
func (s PathStatus) Description() string {
	switch s {
	case StatusNotProcessed:
		return "Not processed"
	case StatusProcessing:
		return "Processing"
	case StatusProcessed:
		return "Processed"
	case StatusExcluded:
		return "Excluded by configuration"
	default:
		return unknownDescription
	}
}
