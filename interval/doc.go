/*
Package interval implements set algebra over half-open time ranges.

An Interval is a pair of instants. A Set is an ordered sequence of
intervals whose entries may be absent (mo.None), which is how steps that
produce no interval, such as intersecting two disjoint ranges, report
their result.

# Canonical form

Merge turns any Set into its canonical form: entries sorted by start,
absent entries dropped, and overlapping intervals coalesced. Intervals
that merely touch (a.End == b.Start) are coalesced as well, so in a
canonical set every adjacent pair satisfies a.End < b.Start.

# Operations

	busy := interval.NewSet(
		interval.New(nine, eleven),
		interval.New(ten, noon),
	).Merge() // {[09:00, 12:00)}

	both := interval.Intersect(a, b)      // instants in a and b
	free := interval.Subtract(day, busy)  // instants in day but not busy
	all := interval.MergeSets(a, b)       // instants in a or b

Reversed intervals (Start after End) are accepted everywhere and treated as
if their endpoints were swapped. No operation mutates its inputs, so sets
can be shared between goroutines freely.
*/
package interval
