package orchestrator

import "strings"

// scheduleKeywords mark a query as schedule-related. Matching is substring
// based on the lowercased query, so "when" also catches "whenever".
var scheduleKeywords = []string{
	"schedule", "availability", "free time", "busy", "meeting", "appointment",
	"when", "what time", "calendar", "routine", "plan", "commitment",
	"free", "available", "occupied", "booked", "slot", "time slot",
	"compare", "common", "overlap", "conflict", "both users", "all users",
}

// IsScheduleQuery reports whether the query concerns schedules. Queries that
// mention users or agents by word are treated as schedule-related even
// without a time keyword.
func IsScheduleQuery(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range scheduleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, word := range strings.Fields(lower) {
		if word == "user" || word == "agent" {
			return true
		}
	}
	return false
}
