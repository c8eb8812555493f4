package model

import (
	"context"
	"strings"
	"sync"
)

// Mock is a lightweight in-memory Generator useful for tests and examples.
// Responses can be registered per prompt or per contained substring; errors
// can be injected for a bounded number of calls to exercise retry and
// degradation paths.
type Mock struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	contains  []containsRule
	failWith  error
	failCount int
	prompts   []string
}

type containsRule struct {
	substr   string
	response string
}

// NewMock constructs a Mock generator.
func NewMock() *Mock {
	return &Mock{
		info:      Info{Name: "mock", Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic completion for an exact prompt.
func (m *Mock) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// AddContainsResponse registers a completion for any prompt containing substr.
// Rules are checked in registration order after exact matches.
func (m *Mock) AddContainsResponse(substr, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contains = append(m.contains, containsRule{substr: substr, response: response})
}

// FailNext makes the next n Generate calls fail with err.
func (m *Mock) FailNext(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCount = n
	m.failWith = err
}

// FailAlways makes every Generate call fail with err until reset.
func (m *Mock) FailAlways(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCount = -1
	m.failWith = err
}

// Prompts returns all prompts seen so far, in call order.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// CallCount returns the number of Generate calls made.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Generate implements Generator.
func (m *Mock) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)

	if m.failCount != 0 && m.failWith != nil {
		if m.failCount > 0 {
			m.failCount--
		}
		return "", m.failWith
	}

	if resp, ok := m.responses[prompt]; ok {
		return resp, nil
	}
	for _, rule := range m.contains {
		if strings.Contains(prompt, rule.substr) {
			return rule.response, nil
		}
	}
	return "Mock response to: " + prompt, nil
}

// Info implements Generator.
func (m *Mock) Info() Info { return m.info }
