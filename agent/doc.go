// Package agent implements the schedule agent: a thin adapter that joins a
// private knowledge store to a text generator. Each agent answers queries
// about exactly one person's schedule and never shares a store with another
// agent.
//
// Query never returns an error. When the generator or the store fails the
// agent degrades: first to an answer derived from the retrieved documents,
// then to a fixed not-found text. Callers always receive usable prose.
package agent
