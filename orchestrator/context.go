package orchestrator

import "sync"

// ContextLimit bounds how many conversation utterances are retained.
const ContextLimit = 10

// Context holds recent conversation utterances for subject inference,
// most-recent-last. Each request replaces the content wholesale; there is no
// incremental append from the orchestrator side.
type Context struct {
	mu      sync.Mutex
	entries []string
}

// NewContext creates an empty conversation context.
func NewContext() *Context {
	return &Context{}
}

// Replace overwrites the context with the given utterances, keeping only the
// most recent ContextLimit entries.
func (c *Context) Replace(entries []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(entries) > ContextLimit {
		entries = entries[len(entries)-ContextLimit:]
	}
	c.entries = make([]string, len(entries))
	copy(c.entries, entries)
}

// Recent returns up to n utterances, most recent first.
func (c *Context) Recent(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n > len(c.entries) {
		n = len(c.entries)
	}
	out := make([]string, 0, n)
	for i := len(c.entries) - 1; i >= len(c.entries)-n; i-- {
		out = append(out, c.entries[i])
	}
	return out
}

// Len reports how many utterances are currently held.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
