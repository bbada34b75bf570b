// Package types defines the core data structures for llm-fallback.
// It includes the provider record with its scheduling state, the error
// taxonomy shared by the registry, scheduler and orchestrator, and the
// annotated completion result.
package types
