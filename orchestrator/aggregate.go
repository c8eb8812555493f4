package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/interval"
)

// comparisonKeywords mark a query as asking to reconcile several schedules.
var comparisonKeywords = []string{
	"common", "both", "all", "together", "everyone", "compare",
	"free time", "available", "meeting", "when", "schedule",
}

// summaryVocabulary must appear in a generator comparison summary for it to
// be accepted; otherwise the deterministic interval computation replaces it.
var summaryVocabulary = []string{"free time", "common", "available", "overlap", "conflict"}

const notFoundAnswer = "I couldn't retrieve schedule information at this time. Please try again in a moment."

// aggregate reconciles per-agent results into the final answer. Error
// results and answers that are themselves error text are excluded; what
// remains drives one of four paths: fixed not-found text, a single verbatim
// answer, a gated comparison summary, or a free-form synthesis.
func (o *Orchestrator) aggregate(ctx context.Context, query string, results map[string]AgentResult) string {
	var usable []AgentResult
	for _, res := range results {
		if res.Err != "" || res.Answer == "" {
			continue
		}
		lower := strings.ToLower(res.Answer)
		if strings.Contains(lower, "error") || strings.Contains(lower, "rate limit") {
			continue
		}
		usable = append(usable, res)
	}

	if len(usable) == 0 {
		return notFoundAnswer
	}
	if len(usable) == 1 {
		return usable[0].Answer
	}

	// Deterministic ordering keeps prompts and fallbacks reproducible.
	sortByAgentID(usable)

	withDocs := 0
	for _, res := range usable {
		if len(res.Documents) > 0 {
			withDocs++
		}
	}

	if isComparisonQuery(query) && withDocs >= 2 {
		return o.aggregateComparison(ctx, query, usable)
	}
	return o.aggregateSynthesis(ctx, query, usable)
}

func isComparisonQuery(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range comparisonKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func sortByAgentID(results []AgentResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].AgentID < results[j].AgentID })
}

// aggregateComparison asks the generator for a short comparison summary and
// accepts it only when it stays brief and actually talks about availability.
// Anything else is replaced by the interval computation, which is also the
// direct fallback when generation fails.
func (o *Orchestrator) aggregateComparison(ctx context.Context, query string, usable []AgentResult) string {
	prompt := comparisonPrompt(query, usable)

	text, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		o.logger.Warn("comparison summary failed, using interval computation", "error", err)
		return o.intervalSummary(query, usable)
	}

	text = stripMarkdown(text)
	if strings.Count(text, "\n") > 5 {
		return o.intervalSummary(query, usable)
	}
	lower := strings.ToLower(text)
	for _, kw := range summaryVocabulary {
		if strings.Contains(lower, kw) {
			return text
		}
	}
	return o.intervalSummary(query, usable)
}

// aggregateSynthesis asks the generator for a 2-3 sentence synthesis and
// falls back to concatenating the usable answers.
func (o *Orchestrator) aggregateSynthesis(ctx context.Context, query string, usable []AgentResult) string {
	prompt := synthesisPrompt(query, usable)

	text, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		parts := make([]string, len(usable))
		for i, res := range usable {
			parts[i] = res.Answer
		}
		return strings.Join(parts, "\n\n")
	}
	return stripMarkdown(text)
}

// intervalSummary computes common free time from the raw schedule documents:
// parse every party's busy spans, merge, complement over the day, and report
// up to three significant gaps.
func (o *Orchestrator) intervalSummary(query string, usable []AgentResult) string {
	var busy []interval.Span
	for _, res := range usable {
		for _, doc := range res.Documents {
			busy = append(busy, interval.Parse(doc.Content)...)
		}
	}

	free := interval.Complement(interval.Merge(busy), interval.DayStart, interval.DayEnd)
	significant := interval.Significant(free)

	if len(free) == 0 {
		return "After comparing the schedules, there is no common free time available. The busy periods cover the entire day."
	}
	if len(significant) == 0 {
		return "After comparing the schedules, there is no significant common free time available (all gaps are less than 30 minutes)."
	}

	lower := strings.ToLower(query)
	if strings.Contains(lower, "common") || strings.Contains(lower, "free") || strings.Contains(lower, "available") {
		return fmt.Sprintf("Based on comparing the schedules, everyone has free time at %s.", interval.Describe(significant))
	}
	return fmt.Sprintf("Based on comparing the schedules, common free time is available at %s.", interval.Describe(significant))
}

func comparisonPrompt(query string, usable []AgentResult) string {
	var context, scheduleInfo []string
	for _, res := range usable {
		context = append(context, fmt.Sprintf("%s Response:\n%s", res.DisplayName, res.Answer))

		if len(res.Documents) == 0 {
			continue
		}
		docs := res.Documents
		if len(docs) > 5 {
			docs = docs[:5]
		}
		lines := make([]string, len(docs))
		for i, doc := range docs {
			lines[i] = "- " + doc.Content
		}
		scheduleInfo = append(scheduleInfo, fmt.Sprintf("%s Schedule Data:\n%s", res.DisplayName, strings.Join(lines, "\n")))
	}

	return fmt.Sprintf(`You are an orchestrator that COMPARES schedules from multiple users.

User's Question: %q

Individual Agent Responses:
%s

Raw Schedule Data from Database:
%s

Instructions:
1. Compare the users' schedules
2. Find common free times (when every user is free)
3. Provide ONLY a brief summary (2-3 sentences maximum)

Format: Write a simple, conversational answer stating when the users are free together. If no common time, say so briefly. No bullet points, no sections, no detailed breakdowns.`,
		query, strings.Join(context, "\n\n---\n\n"), strings.Join(scheduleInfo, "\n\n---\n\n"))
}

func synthesisPrompt(query string, usable []AgentResult) string {
	var context []string
	for _, res := range usable {
		context = append(context, fmt.Sprintf("%s Response:\n%s", res.DisplayName, res.Answer))
	}

	return fmt.Sprintf(`You are an orchestrator coordinating between multiple users' schedules.

User's Question: %q

Responses from agents:
%s

Your task: Provide ONLY a concise summary answer (2-3 sentences maximum).

Guidelines:
- Be conversational and natural
- Provide specific information (times, days, activities) when available
- No bullet points, no sections, no detailed breakdowns`,
		query, strings.Join(context, "\n\n---\n\n"))
}

// stripMarkdown removes emphasis and bullet markers models emit despite
// plain-text instructions.
func stripMarkdown(text string) string {
	replacer := strings.NewReplacer("**", "", "*", "", "__", "", "•", "")
	return strings.TrimSpace(replacer.Replace(text))
}

// docsFromResponse recovers the supporting documents an agent attached to
// its routed response.
func docsFromResponse(data map[string]any) []core.Document {
	if docs, ok := data["documents"].([]core.Document); ok {
		return docs
	}
	return nil
}
