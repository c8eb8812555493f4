// Package interval implements deterministic arithmetic over minute-of-day
// time spans: extraction from free text, merging of busy blocks, day
// complement and common free time across parties. All functions are pure and
// safe for concurrent use; spans carry no calendar date and live in a single
// 24-hour window.
package interval

import (
	"regexp"
	"sort"
)

const (
	// DayStart is the first minute of the day window.
	DayStart = 0
	// DayEnd is the exclusive end of the day window (24:00).
	DayEnd = 1440
	// PointDuration is the block length assumed for a standalone time
	// mention such as "Break 14:30".
	PointDuration = 30
)

// Span is a half-open minute range [Start, End) within a single day.
type Span struct {
	Start int `json:"start_minute"`
	End   int `json:"end_minute"`
}

// Duration returns the span length in minutes.
func (s Span) Duration() int { return s.End - s.Start }

var (
	rangePattern = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})`)
	timePattern  = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// Parse extracts time spans from free text in textual occurrence order.
// "H:MM-H:MM" occurrences become ranged spans; a standalone "H:MM" whose
// occurrence is not part of a matched range becomes a PointDuration block
// (clamped at the day end). Out-of-range clock values are simply not
// matched; duplicates are kept.
func Parse(text string) []Span {
	type match struct {
		pos  int
		span Span
	}
	var matches []match

	ranges := rangePattern.FindAllStringSubmatchIndex(text, -1)
	covered := make([][2]int, 0, len(ranges))
	for _, idx := range ranges {
		start, okS := clockToMinutes(text[idx[2]:idx[3]], text[idx[4]:idx[5]])
		end, okE := clockToMinutes(text[idx[6]:idx[7]], text[idx[8]:idx[9]])
		if !okS || !okE {
			continue
		}
		covered = append(covered, [2]int{idx[0], idx[1]})
		matches = append(matches, match{pos: idx[0], span: Span{Start: start, End: end}})
	}

	// Standalone times: RE2 has no lookahead, so exclusion of range members
	// is done by span overlap against the range matches above.
	for _, idx := range timePattern.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(idx[0], idx[1], covered) {
			continue
		}
		start, ok := clockToMinutes(text[idx[2]:idx[3]], text[idx[4]:idx[5]])
		if !ok {
			continue
		}
		end := start + PointDuration
		if end > DayEnd {
			end = DayEnd
		}
		matches = append(matches, match{pos: idx[0], span: Span{Start: start, End: end}})
	}

	if len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })
	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, m.span)
	}
	return spans
}

func clockToMinutes(hh, mm string) (int, bool) {
	h := atoi(hh)
	m := atoi(mm)
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func overlapsAny(start, end int, covered [][2]int) bool {
	for _, c := range covered {
		if start < c[1] && end > c[0] {
			return true
		}
	}
	return false
}

// Merge folds a span set into a sorted, non-overlapping, non-touching set.
// Spans that touch (current start equals last end) are combined. Merge is
// idempotent and does not mutate its input.
func Merge(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := []Span{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &merged[len(merged)-1]
		if cur.Start <= last.End {
			if cur.End > last.End {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

// Complement returns the strictly positive gaps of a merged span set within
// [dayStart, dayEnd): before the first span, between consecutive spans and
// after the last. An empty input yields the whole window.
func Complement(merged []Span, dayStart, dayEnd int) []Span {
	if len(merged) == 0 {
		return []Span{{Start: dayStart, End: dayEnd}}
	}
	var gaps []Span
	if merged[0].Start > dayStart {
		gaps = append(gaps, Span{Start: dayStart, End: merged[0].Start})
	}
	for i := 0; i < len(merged)-1; i++ {
		if merged[i+1].Start > merged[i].End {
			gaps = append(gaps, Span{Start: merged[i].End, End: merged[i+1].Start})
		}
	}
	if merged[len(merged)-1].End < dayEnd {
		gaps = append(gaps, Span{Start: merged[len(merged)-1].End, End: dayEnd})
	}
	return gaps
}

// CommonFree computes the minute ranges of the day during which neither
// party is busy: the union of both busy sets, merged, complemented against
// the full day. The operation is symmetric in its arguments.
func CommonFree(busyA, busyB []Span) []Span {
	all := append(Merge(busyA), Merge(busyB)...)
	return Complement(Merge(all), DayStart, DayEnd)
}
