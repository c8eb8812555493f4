// Package knowledge contains concrete KnowledgeStore implementations. The
// store interface and Document type reside in the core package. Import
// github.com/hupe1980/schedmesh/core and depend on core.KnowledgeStore in
// your code; select an implementation (the in-memory store below, or the
// vector-backed store in knowledge/chromem) at wiring time.
//
// Rationale: keeps domain contracts centralized while allowing pluggable
// backends (vector databases, embeddings indexes, etc.) to be added without
// introducing dependency cycles.
package knowledge
