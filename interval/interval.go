// Package interval implements the time-interval algebra used to trim, fuse,
// and intersect visibility windows (spec C2).
package interval

import "sort"

// TimeInterval is an ordered pair of Unix seconds, start <= end.
type TimeInterval struct {
	Start, End float64
}

// Empty reports whether the interval has zero duration.
func (t TimeInterval) Empty() bool { return t.Start == t.End }

// Less orders by Start then End, matching the data model's stated ordering.
func Less(a, b TimeInterval) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.End < b.End
}

// Trim clips every interval in list to bound, dropping intervals entirely
// outside it.
func Trim(list []TimeInterval, bound TimeInterval) []TimeInterval {
	out := make([]TimeInterval, 0, len(list))
	for _, iv := range list {
		if iv.End < bound.Start || iv.Start > bound.End {
			continue
		}
		start, end := iv.Start, iv.End
		if start < bound.Start {
			start = bound.Start
		}
		if end > bound.End {
			end = bound.End
		}
		out = append(out, TimeInterval{start, end})
	}
	return out
}

// Fuse sorts list by Start and merges any adjacent pair where a.End ==
// b.Start. Assumes no overlaps and that at most two intervals share a
// boundary.
func Fuse(list []TimeInterval) []TimeInterval {
	if len(list) == 0 {
		return nil
	}
	sorted := make([]TimeInterval, len(list))
	copy(sorted, list)
	sort.Slice(sorted, func(i, j int) bool { return Less(sorted[i], sorted[j]) })

	out := make([]TimeInterval, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if cur.End == next.Start {
			cur.End = next.End
			continue
		}
		out = append(out, cur)
		cur = next
	}
	out = append(out, cur)
	return out
}

// IntersectPair returns the overlap of a and b, or (TimeInterval{}, false) if
// they don't overlap.
func IntersectPair(a, b TimeInterval) (TimeInterval, bool) {
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	if start >= end {
		return TimeInterval{}, false
	}
	return TimeInterval{start, end}, true
}

// intersectLists intersects two sorted-by-start lists of non-overlapping
// intervals, pairwise.
func intersectLists(a, b []TimeInterval) []TimeInterval {
	out := make([]TimeInterval, 0)
	for _, x := range a {
		for _, y := range b {
			if iv, ok := IntersectPair(x, y); ok {
				out = append(out, iv)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// Common folds IntersectPair across a list of interval lists (the N-way
// intersection used by the polygon opportunity search, spec C7 step 6).
func Common(lists [][]TimeInterval) []TimeInterval {
	if len(lists) == 0 {
		return nil
	}
	acc := lists[0]
	for _, next := range lists[1:] {
		acc = intersectLists(acc, next)
		if len(acc) == 0 {
			return acc
		}
	}
	return acc
}
