// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The vectorise orchestrator owns the run lifecycle; the file and
// directory vectorisers do the per-path work; the status tracker
// answers where any path stands.
package services
