package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/internal/util"
	"github.com/hupe1980/schedmesh/logging"
	"github.com/hupe1980/schedmesh/model"
)

const queryPromptTemplate = `You are managing {{.Owner}}'s schedule. Answer this query naturally and precisely.

Query: {{.Query}}

{{.Context}}

Provide a clear, helpful answer with specific details (times, days, activities) when available. Be conversational and friendly. If information is missing, say so clearly.

IMPORTANT:
- Do NOT use markdown formatting (no asterisks, no bold, no bullet points)
- Write in plain text only
- Use simple sentences and commas to separate items`

// Options configure a ScheduleAgent.
type Options struct {
	// DisplayName is the human name used in answers. Defaults to the agent id.
	DisplayName string
	// SearchLimit bounds how many documents a query retrieves. Defaults to 5.
	SearchLimit int
	// Capabilities advertised when the agent registers with a mesh.
	Capabilities []string
	Logger       logging.Logger
}

// ScheduleAgent owns one person's schedule: a private knowledge store plus a
// generator for phrasing answers.
type ScheduleAgent struct {
	id           string
	displayName  string
	capabilities []string
	generator    model.Generator
	store        core.KnowledgeStore
	searchLimit  int
	logger       logging.Logger
}

// New creates a schedule agent for the given id, generator, and store.
func New(id string, generator model.Generator, store core.KnowledgeStore, optFns ...func(o *Options)) *ScheduleAgent {
	opts := Options{
		DisplayName:  id,
		SearchLimit:  5,
		Capabilities: []string{"schedule_query", "schedule_store", "schedule_compare"},
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &ScheduleAgent{
		id:           id,
		displayName:  opts.DisplayName,
		capabilities: opts.Capabilities,
		generator:    generator,
		store:        store,
		searchLimit:  opts.SearchLimit,
		logger:       opts.Logger,
	}
}

// ID returns the agent's unique identifier.
func (a *ScheduleAgent) ID() string { return a.id }

// DisplayName returns the human name the agent answers on behalf of.
func (a *ScheduleAgent) DisplayName() string { return a.displayName }

// Capabilities returns the capability set the agent advertises.
func (a *ScheduleAgent) Capabilities() []string {
	caps := make([]string, len(a.capabilities))
	copy(caps, a.capabilities)
	return caps
}

// Query answers a natural-language question about the owner's schedule. It
// never returns an error: store failures shrink the context to nothing and
// generator failures fall back to document-derived or fixed text.
func (a *ScheduleAgent) Query(ctx context.Context, query string) core.Answer {
	start := time.Now()

	docs, err := a.store.Search(ctx, query, a.searchLimit)
	if err != nil {
		a.logger.Warn("knowledge search failed", "agent_id", a.id, "error", err)
		docs = nil
	}

	prompt, err := util.RenderTemplate(queryPromptTemplate, map[string]any{
		"Owner":   a.displayName,
		"Query":   query,
		"Context": contextBlock(docs),
	})
	if err != nil {
		// Template is a constant; failure here means a programming error.
		prompt = query
	}

	text, genErr := a.generator.Generate(ctx, prompt)
	if genErr == nil {
		text = cleanMarkdown(text)
	}
	if genErr != nil || text == "" {
		a.logger.Warn("Agent query degraded", "agent_id", a.id, "duration", time.Since(start), "error", genErr)
		return a.degradedAnswer(query, docs)
	}

	a.logger.Debug("Agent query completed", "agent_id", a.id, "duration", time.Since(start))
	return core.Answer{Text: text, Documents: docs}
}

// degradedAnswer builds a usable reply without the generator: from the
// retrieved documents when any exist, otherwise fixed not-found text.
func (a *ScheduleAgent) degradedAnswer(query string, docs []core.Document) core.Answer {
	if len(docs) == 0 {
		text := fmt.Sprintf("I couldn't find any relevant schedule information for your query: %q. Please add schedule information or try a different query.", query)
		return core.Answer{Text: text, Degraded: true}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on %s's schedule:\n", a.displayName)
	limit := len(docs)
	if limit > 3 {
		limit = 3
	}
	for _, doc := range docs[:limit] {
		fmt.Fprintf(&sb, "\n- %s", doc.Content)
	}

	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "free") || strings.Contains(lower, "available"):
		sb.WriteString("\n\nThis shows the scheduled activities. Free time would be between these activities.")
	case strings.Contains(lower, "when") || strings.Contains(lower, "time"):
		sb.WriteString("\n\nThese are the scheduled times found in the database.")
	}

	return core.Answer{Text: sb.String(), Documents: docs, Degraded: true}
}

// StoreSchedule persists a schedule description, stamping a timestamp into
// the metadata when the caller did not provide one.
func (a *ScheduleAgent) StoreSchedule(ctx context.Context, schedule string, metadata map[string]string) (string, error) {
	md := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
	if _, ok := md["timestamp"]; !ok {
		md["timestamp"] = time.Now().Format(time.RFC3339)
	}

	id, err := a.store.Store(ctx, schedule, md)
	if err != nil {
		return "", fmt.Errorf("store schedule: %w", err)
	}
	a.logger.Debug("schedule stored", "agent_id", a.id, "doc_id", id)
	return id, nil
}

// FetchAll returns every schedule document the agent holds.
func (a *ScheduleAgent) FetchAll(ctx context.Context) ([]core.Document, error) {
	return a.store.FetchAll(ctx)
}

// Delete removes one schedule document by id.
func (a *ScheduleAgent) Delete(ctx context.Context, id string) error {
	return a.store.Delete(ctx, id)
}

// contextBlock renders retrieved documents into the prompt context section.
func contextBlock(docs []core.Document) string {
	if len(docs) == 0 {
		return "No relevant schedule information found in the database."
	}
	var sb strings.Builder
	sb.WriteString("Relevant schedule information:")
	for _, doc := range docs {
		fmt.Fprintf(&sb, "\n- %s", doc.Content)
		if len(doc.Metadata) > 0 {
			fmt.Fprintf(&sb, "\n  Metadata: %v", doc.Metadata)
		}
	}
	return sb.String()
}

// cleanMarkdown strips markdown emphasis and bullet markers that chat models
// emit despite instructions, folding list items into plain sentences.
func cleanMarkdown(text string) string {
	replacer := strings.NewReplacer("**", "", "*", "", "__", "", "•", "")
	text = replacer.Replace(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-• \t"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
