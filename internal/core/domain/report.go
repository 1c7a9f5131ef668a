package domain

// PathError records a single path's failure during a vectorisation run.
type PathError struct {
	// Path is the failing path.
	Path string

	// Err is the failure message.
	Err string
}

// VectorizeReport summarises one vectorisation run.
type VectorizeReport struct {
	// Processed counts paths for which the run wrote every missing kind.
	// Paths that were already complete do not count.
	Processed int

	// Errors counts paths where at least one kind failed.
	Errors int

	// Failures lists the individual per-path errors, in completion order.
	Failures []PathError
}
