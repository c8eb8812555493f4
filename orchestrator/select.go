package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// allKeywords in a query or context entry select every registered agent.
var allKeywords = []string{
	"both", "all users", "all agents", "everyone", "each user",
	"all of them", "together", "common", "compare", "between", "shared",
}

// Subject is one selectable agent together with the phrases that identify it
// in a query ("agent1", "agent 1", "user 1", ...).
type Subject struct {
	AgentID     string
	DisplayName string
	keywords    []string
}

// newSubject derives matching keywords from the agent id and display name.
// "agent1"/"User 1" yields agent1, agent 1, user 1 and user1; extra aliases
// extend the set.
func newSubject(agentID, displayName string, aliases ...string) Subject {
	seen := make(map[string]bool)
	var keywords []string
	add := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && !seen[kw] {
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}

	add(agentID)
	add(spaceBeforeDigits(agentID))
	add(displayName)
	add(strings.ReplaceAll(displayName, " ", ""))
	for _, alias := range aliases {
		add(alias)
	}

	return Subject{AgentID: agentID, DisplayName: displayName, keywords: keywords}
}

// spaceBeforeDigits turns "agent1" into "agent 1" so spelled-out mentions match.
func spaceBeforeDigits(s string) string {
	for i := 1; i < len(s); i++ {
		if unicode.IsDigit(rune(s[i])) && !unicode.IsDigit(rune(s[i-1])) {
			return s[:i] + " " + s[i:]
		}
	}
	return s
}

func (s Subject) mentionedIn(lower string) bool {
	for _, kw := range s.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func mentionsAll(lower string) bool {
	for _, kw := range allKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// selectAgents decides which agents receive the query. Precedence: explicit
// mention in the current query, then inference from recent context, then one
// constrained generator call. Anything ambiguous or failing selects all
// agents, never none.
func (o *Orchestrator) selectAgents(ctx context.Context, query string) []Subject {
	subjects := o.subjectsSnapshot()
	if len(subjects) == 0 {
		return nil
	}

	lower := strings.ToLower(query)
	if picked, decided := matchSubjects(lower, subjects); decided {
		return picked
	}

	for _, entry := range o.context.Recent(5) {
		if picked, decided := matchSubjects(strings.ToLower(entry), subjects); decided {
			return picked
		}
	}

	return o.routeWithGenerator(ctx, query, subjects)
}

// matchSubjects applies the keyword rules to one piece of text. The second
// return is false when the text names no subject at all.
func matchSubjects(lower string, subjects []Subject) ([]Subject, bool) {
	var mentioned []Subject
	for _, s := range subjects {
		if s.mentionedIn(lower) {
			mentioned = append(mentioned, s)
		}
	}

	if mentionsAll(lower) || len(mentioned) >= 2 {
		return subjects, true
	}
	if len(mentioned) == 1 {
		return mentioned, true
	}
	return nil, false
}

// routeWithGenerator asks the generator to pick an agent id or "all" with a
// single word. The reply is parsed defensively; failure or an unrecognizable
// answer selects all agents.
func (o *Orchestrator) routeWithGenerator(ctx context.Context, query string, subjects []Subject) []Subject {
	truncated := query
	if len(truncated) > 100 {
		truncated = truncated[:100]
	}

	var choices []string
	for _, s := range subjects {
		choices = append(choices, fmt.Sprintf("%s (%s only)", s.AgentID, s.DisplayName))
	}
	prompt := fmt.Sprintf(`Query: %q

Route to: %s, or all (multiple users).

One word only: %s/all`, truncated, strings.Join(choices, ", "), joinIDs(subjects))

	decision, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		o.logger.Warn("routing call failed, selecting all agents", "error", err)
		return subjects
	}

	decision = strings.ToLower(strings.Trim(strings.TrimSpace(decision), `"'`))
	if strings.Contains(decision, "all") {
		return subjects
	}
	var picked []Subject
	for _, s := range subjects {
		if strings.Contains(decision, strings.ToLower(s.AgentID)) {
			picked = append(picked, s)
		}
	}
	if len(picked) == 0 {
		return subjects
	}
	return picked
}

func joinIDs(subjects []Subject) string {
	ids := make([]string, len(subjects))
	for i, s := range subjects {
		ids[i] = s.AgentID
	}
	return strings.Join(ids, "/")
}
