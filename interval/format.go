package interval

import (
	"fmt"
	"strings"
)

const (
	// MinSignificantGap is the shortest free gap worth surfacing, in minutes.
	MinSignificantGap = 30
	// MaxReportedGaps caps how many free gaps a presented answer lists.
	MaxReportedGaps = 3
)

// FormatMinutes renders minutes since midnight as zero-padded 24-hour HH:MM.
// The day end (1440) renders as "24:00".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Format renders a single span as "HH:MM - HH:MM".
func (s Span) Format() string {
	return fmt.Sprintf("%s - %s", FormatMinutes(s.Start), FormatMinutes(s.End))
}

// Significant filters out gaps shorter than MinSignificantGap and keeps at
// most the first MaxReportedGaps entries, preserving order.
func Significant(spans []Span) []Span {
	var kept []Span
	for _, s := range spans {
		if s.Duration() < MinSignificantGap {
			continue
		}
		kept = append(kept, s)
		if len(kept) == MaxReportedGaps {
			break
		}
	}
	return kept
}

// Describe renders spans as a comma separated list of "HH:MM - HH:MM".
func Describe(spans []Span) string {
	parts := make([]string, 0, len(spans))
	for _, s := range spans {
		parts = append(parts, s.Format())
	}
	return strings.Join(parts, ", ")
}
