package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/logging"
	"github.com/hupe1980/schedmesh/model"
	"github.com/hupe1980/schedmesh/router"
)

// ID is the agent id the orchestrator uses as the From field of dispatched
// messages.
const ID = "orchestrator"

// AgentResult is the outcome of dispatching the query to one agent. Err is
// set when delivery or the agent itself failed; such results are excluded
// from aggregation but still reported to the caller.
type AgentResult struct {
	AgentID     string
	DisplayName string
	Answer      string
	Documents   []core.Document
	Degraded    bool
	Err         string
}

// Result is the full outcome of one orchestrated query.
type Result struct {
	Query       string
	PerAgent    map[string]AgentResult
	FinalAnswer string
	// General reports that the query was answered directly without
	// consulting any agent.
	General   bool
	Timestamp time.Time
}

// Options configure the Orchestrator.
type Options struct {
	Logger logging.Logger
}

// Orchestrator coordinates schedule agents behind one Answer entry point.
type Orchestrator struct {
	router    *router.Router
	generator model.Generator
	logger    logging.Logger
	context   *Context

	mu       sync.Mutex
	subjects []Subject
}

// New creates an orchestrator dispatching through the given router and using
// the generator for routing decisions, synthesis and general questions.
func New(rt *router.Router, generator model.Generator, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{
		router:    rt,
		generator: generator,
		logger:    opts.Logger,
		context:   NewContext(),
	}
}

// AddSubject makes an agent selectable. Matching keywords are derived from
// the id and display name; aliases extend them.
func (o *Orchestrator) AddSubject(agentID, displayName string, aliases ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	subject := newSubject(agentID, displayName, aliases...)
	for i, existing := range o.subjects {
		if existing.AgentID == agentID {
			o.subjects[i] = subject
			return
		}
	}
	o.subjects = append(o.subjects, subject)
}

// RemoveSubject stops selecting an agent, typically after it unregisters.
func (o *Orchestrator) RemoveSubject(agentID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, existing := range o.subjects {
		if existing.AgentID == agentID {
			o.subjects = append(o.subjects[:i], o.subjects[i+1:]...)
			return
		}
	}
}

func (o *Orchestrator) subjectsSnapshot() []Subject {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Subject, len(o.subjects))
	copy(out, o.subjects)
	return out
}

// Answer processes one user query end to end: classify, select, dispatch,
// aggregate. A blank query is the only immediate rejection; every other
// failure degrades into the final answer text.
func (o *Orchestrator) Answer(ctx context.Context, query string, history []string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", core.ErrInvalidMessage)
	}
	if len(history) > 0 {
		o.context.Replace(history)
	}

	if !IsScheduleQuery(query) {
		o.logger.Debug("general question, answering directly", "query", query)
		return &Result{
			Query:       query,
			PerAgent:    map[string]AgentResult{},
			FinalAnswer: o.answerGeneral(ctx, query),
			General:     true,
			Timestamp:   time.Now().UTC(),
		}, nil
	}

	subjects := o.selectAgents(ctx, query)
	o.logger.Info("dispatching query", "query", query, "agents", len(subjects))

	results := o.dispatch(ctx, query, subjects)
	final := o.aggregate(ctx, query, results)

	return &Result{
		Query:       query,
		PerAgent:    results,
		FinalAnswer: final,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// dispatch fans the query out to the selected agents, one goroutine each,
// collecting results as they complete. A failing agent yields an error entry
// and never blocks its siblings.
func (o *Orchestrator) dispatch(ctx context.Context, query string, subjects []Subject) map[string]AgentResult {
	results := make(map[string]AgentResult, len(subjects))
	resultCh := make(chan AgentResult, len(subjects))

	var wg sync.WaitGroup
	for _, subject := range subjects {
		wg.Add(1)
		go func(s Subject) {
			defer wg.Done()
			resultCh <- o.queryAgent(ctx, query, s)
		}(subject)
	}
	wg.Wait()
	close(resultCh)

	for res := range resultCh {
		results[res.AgentID] = res
	}
	return results
}

// queryAgent routes one query message and validates the response shape.
func (o *Orchestrator) queryAgent(ctx context.Context, query string, subject Subject) AgentResult {
	result := AgentResult{AgentID: subject.AgentID, DisplayName: subject.DisplayName}

	msg := core.NewQueryMessage(ID, subject.AgentID, query)
	resp, err := o.router.Route(ctx, msg)
	if err != nil {
		result.Err = err.Error()
		return result
	}
	if resp == nil {
		result.Err = "no handler registered for query messages"
		return result
	}
	if !resp.Success {
		result.Err = resp.Error
		return result
	}

	answer, ok := resp.Data["answer"].(string)
	if !ok || answer == "" {
		result.Err = fmt.Sprintf("invalid response format from %s", subject.AgentID)
		return result
	}

	result.Answer = answer
	result.Documents = docsFromResponse(resp.Data)
	if degraded, ok := resp.Data["degraded"].(bool); ok {
		result.Degraded = degraded
	}
	return result
}

// answerGeneral handles non-schedule questions with one direct generator
// call, degrading to a fixed apology on failure.
func (o *Orchestrator) answerGeneral(ctx context.Context, query string) string {
	prompt := fmt.Sprintf(`You are a helpful assistant. Answer the following question naturally and conversationally.

Question: %s

Provide a clear, helpful answer. Be concise (2-3 sentences maximum) and conversational. Do not use markdown formatting.`, query)

	text, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		o.logger.Warn("general answer failed", "error", err)
		return "I apologize, but I encountered an error while processing your question. Please try again."
	}
	return stripMarkdown(text)
}
