// Package orchestrator coordinates schedule agents behind a single
// natural-language entry point. For every query it classifies (schedule
// question or general chat), selects the relevant agents, fans the query out
// concurrently through the router, and reconciles the per-agent answers into
// one final response.
//
// Failures stay partial: an agent that errors contributes an error entry and
// is excluded from aggregation, and every generator failure downgrades to a
// deterministic fallback. The only query the orchestrator rejects outright is
// a blank one.
package orchestrator
