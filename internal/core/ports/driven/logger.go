package driven

// Logger is the diagnostic sink injected into core services. Core never
// reaches for a package-level logger; callers decide where diagnostics
// go and how verbose they are.
type Logger interface {
	// Debug logs a verbose diagnostic message.
	Debug(format string, args ...any)

	// Info logs an informational message.
	Info(format string, args ...any)

	// Warn logs a recoverable problem worth surfacing.
	Warn(format string, args ...any)

	// Section marks the start of a named phase in the output.
	Section(name string)
}
