// Package core provides the foundational domain types and contracts used by
// schedmesh. It defines the core abstractions for:
//
//   - Messages (immutable agent-to-agent envelopes with correlation)
//   - Responses (uniform success/error results)
//   - Registrations (soft-state agent directory records)
//   - The KnowledgeStore contract backing each agent's private data
//   - The error taxonomy shared across router and orchestrator
//
// The package intentionally keeps implementation concerns (registries,
// routing, storage backends, orchestration) out of scope, exposing small
// interfaces so sibling packages can supply concrete implementations without
// dependency cycles.
package core
