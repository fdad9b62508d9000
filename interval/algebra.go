package interval

import "github.com/samber/mo"

// MergeSets returns the canonical union of two sets.
func MergeSets(a, b Set) Set {
	return a.Concat(b).Merge()
}

// Intersect returns the canonical set of instants covered by both a and b.
// Every interval of a is compared with every interval of b; the sets are
// expected to be small.
func Intersect(a, b Set) Set {
	left := a.NormalizeAll().Compact().Intervals()
	right := b.NormalizeAll().Compact().Intervals()

	candidates := make([]mo.Option[Interval], 0, len(left)*len(right))
	for _, x := range left {
		for _, y := range right {
			candidates = append(candidates, x.Intersect(y))
		}
	}
	return Set{entries: candidates}.Merge()
}

// Subtract returns the canonical set of instants covered by minuend but not
// by subtrahend.
func Subtract(minuend, subtrahend Set) Set {
	holes := subtrahend.Merge().Intervals()

	var remainder []Interval
	for _, m := range minuend.Merge().Intervals() {
		pieces := []Interval{m}
		for _, hole := range holes {
			next := make([]Interval, 0, len(pieces)+1)
			for _, p := range pieces {
				next = append(next, p.Subtract(hole)...)
			}
			pieces = next
		}
		remainder = append(remainder, pieces...)
	}
	return NewSet(remainder...).Merge()
}
