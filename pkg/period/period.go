// Package period implements arithmetic over half-open [Start, End) intervals
// expressed in epoch milliseconds.
//
// All functions are pure and total. A period with Start >= End is empty and
// contributes nothing to any result.
package period

import (
	"slices"
	"time"
)

type Period struct {
	Start int64 `json:"start_at" bson:"start_at"`
	End   int64 `json:"end_at" bson:"end_at"`
}

func New(start, end time.Time) Period {
	return Period{Start: start.UnixMilli(), End: end.UnixMilli()}
}

func FromMillis(start, end int64) Period {
	return Period{Start: start, End: end}
}

func (p Period) IsEmpty() bool {
	return p.Start >= p.End
}

func (p Period) Duration() time.Duration {
	if p.IsEmpty() {
		return 0
	}
	return time.Duration(p.End-p.Start) * time.Millisecond
}

func (p Period) StartTime() time.Time {
	return time.UnixMilli(p.Start)
}

func (p Period) EndTime() time.Time {
	return time.UnixMilli(p.End)
}

// Overlaps reports whether p and o share at least one instant. Touching
// periods ([a,b) and [b,c)) do not overlap.
func (p Period) Overlaps(o Period) bool {
	if p.IsEmpty() || o.IsEmpty() {
		return false
	}
	return p.Start < o.End && o.Start < p.End
}

// Contains reports whether o lies entirely within p.
func (p Period) Contains(o Period) bool {
	if p.IsEmpty() || o.IsEmpty() {
		return false
	}
	return p.Start <= o.Start && o.End <= p.End
}

func Intersect(a, b Period) (Period, bool) {
	if !a.Overlaps(b) {
		return Period{}, false
	}
	return Period{Start: max(a.Start, b.Start), End: min(a.End, b.End)}, true
}

// Clamp restricts p to bounds. The second return value is false when nothing
// of p lies inside bounds.
func Clamp(p, bounds Period) (Period, bool) {
	return Intersect(p, bounds)
}

// Merge sorts by start and coalesces overlapping or adjacent periods.
func Merge(periods []Period) []Period {
	sorted := make([]Period, 0, len(periods))
	for _, p := range periods {
		if !p.IsEmpty() {
			sorted = append(sorted, p)
		}
	}
	if len(sorted) == 0 {
		return []Period{}
	}

	slices.SortFunc(sorted, func(a, b Period) int {
		if a.Start != b.Start {
			return compare(a.Start, b.Start)
		}
		return compare(a.End, b.End)
	})

	merged := []Period{sorted[0]}
	for _, p := range sorted[1:] {
		last := &merged[len(merged)-1]
		if p.Start <= last.End {
			last.End = max(last.End, p.End)
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

// Subtract returns what remains of a after removing every part covered by
// excludes, in ascending order.
func Subtract(a Period, excludes []Period) []Period {
	if a.IsEmpty() {
		return []Period{}
	}

	remaining := []Period{}
	cursor := a.Start
	for _, ex := range Merge(excludes) {
		if ex.End <= cursor {
			continue
		}
		if ex.Start >= a.End {
			break
		}
		if ex.Start > cursor {
			remaining = append(remaining, Period{Start: cursor, End: ex.Start})
		}
		cursor = max(cursor, ex.End)
		if cursor >= a.End {
			break
		}
	}
	if cursor < a.End {
		remaining = append(remaining, Period{Start: cursor, End: a.End})
	}
	return remaining
}

// SubtractAll removes excludes from every period of from and returns the
// merged remainder.
func SubtractAll(from []Period, excludes []Period) []Period {
	merged := Merge(excludes)
	out := []Period{}
	for _, p := range Merge(from) {
		out = append(out, Subtract(p, merged)...)
	}
	return out
}

// AnyOverlap reports whether p overlaps at least one of others.
func AnyOverlap(p Period, others []Period) bool {
	for _, o := range others {
		if p.Overlaps(o) {
			return true
		}
	}
	return false
}

// ContainedIn returns the first period of candidates that fully contains p.
func ContainedIn(p Period, candidates []Period) (Period, bool) {
	for _, c := range candidates {
		if c.Contains(p) {
			return c, true
		}
	}
	return Period{}, false
}

func compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
