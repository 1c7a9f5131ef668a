// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - VectorStore: Embedding persistence and similarity search
//   - TreeSource: File tree enumeration and content access
//   - ConfigStore: Application configuration
//   - Logger: Diagnostic sink injected into core services
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it,
//     vectorisation and similarity search are disabled.
//   - SummarizerService: Generates file summaries. Without it, summarize
//     kinds are disabled while origin kinds keep working.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
