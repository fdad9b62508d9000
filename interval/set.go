package interval

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Set is an ordered sequence of intervals, possibly containing absent
// entries. Operations never modify the receiver; each returns a new Set.
// The zero value is the empty set.
type Set struct {
	entries []mo.Option[Interval]
}

// NewSet returns a set holding the given intervals in order.
func NewSet(intervals ...Interval) Set {
	entries := make([]mo.Option[Interval], len(intervals))
	for i, iv := range intervals {
		entries[i] = mo.Some(iv)
	}
	return Set{entries: entries}
}

// SetOf returns a set holding the given entries, absent ones included.
func SetOf(entries ...mo.Option[Interval]) Set {
	return Set{entries: slices.Clone(entries)}
}

// Len returns the number of entries, absent ones included.
func (s Set) Len() int {
	return len(s.entries)
}

// IsEmpty reports whether the set has no entries at all.
func (s Set) IsEmpty() bool {
	return len(s.entries) == 0
}

// Entries returns a copy of the entries.
func (s Set) Entries() []mo.Option[Interval] {
	return slices.Clone(s.entries)
}

// Intervals returns the present entries in order.
func (s Set) Intervals() []Interval {
	out := make([]Interval, 0, len(s.entries))
	for _, e := range s.entries {
		if v, ok := e.Get(); ok {
			out = append(out, v)
		}
	}
	return out
}

// Equal compares two sets entry by entry. Absent entries only equal absent
// entries.
func (s Set) Equal(o Set) bool {
	return slices.EqualFunc(s.entries, o.entries, func(a, b mo.Option[Interval]) bool {
		av, aok := a.Get()
		bv, bok := b.Get()
		if aok != bok {
			return false
		}
		return !aok || av.Equal(bv)
	})
}

// Concat returns the entries of s followed by the entries of o.
func (s Set) Concat(o Set) Set {
	entries := make([]mo.Option[Interval], 0, len(s.entries)+len(o.entries))
	entries = append(entries, s.entries...)
	entries = append(entries, o.entries...)
	return Set{entries: entries}
}

// NormalizeAll normalizes every entry, keeping order and length.
func (s Set) NormalizeAll() Set {
	entries := make([]mo.Option[Interval], len(s.entries))
	for i, e := range s.entries {
		entries[i] = Normalize(e)
	}
	return Set{entries: entries}
}

// SortByStart sorts entries by start with a stable sort. Absent entries have
// the smallest key and come first; equal starts keep their input order.
func (s Set) SortByStart() Set {
	entries := slices.Clone(s.entries)
	slices.SortStableFunc(entries, func(a, b mo.Option[Interval]) int {
		av, aok := a.Get()
		bv, bok := b.Get()
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return -1
		case !bok:
			return 1
		}
		return av.Start.Compare(bv.Start)
	})
	return Set{entries: entries}
}

// Compact drops absent entries.
func (s Set) Compact() Set {
	entries := make([]mo.Option[Interval], 0, len(s.entries))
	for _, e := range s.entries {
		if e.IsPresent() {
			entries = append(entries, e)
		}
	}
	return Set{entries: entries}
}

// Merge returns the canonical form of s: sorted by start, without absent
// entries, and with every pair of overlapping or touching intervals replaced
// by their union. Adjacent results satisfy a.End < b.Start.
func (s Set) Merge() Set {
	sorted := s.NormalizeAll().SortByStart().Compact()

	acc := make([]Interval, 0, len(sorted.entries))
	for _, e := range sorted.entries {
		b := e.MustGet()
		if len(acc) == 0 {
			acc = append(acc, b)
			continue
		}
		last := &acc[len(acc)-1]
		if last.Overlaps(b) {
			last.Start = earliest(last.Start, b.Start)
			last.End = latest(last.End, b.End)
			continue
		}
		acc = append(acc, b)
	}
	return NewSet(acc...)
}

// Duration returns the total time covered by the set. Overlaps are counted
// once.
func (s Set) Duration() time.Duration {
	var total time.Duration
	for _, iv := range s.Merge().Intervals() {
		total += iv.Duration()
	}
	return total
}

// Contains reports whether any present entry contains t.
func (s Set) Contains(t time.Time) bool {
	return slices.ContainsFunc(s.Intervals(), func(iv Interval) bool {
		return iv.Contains(t)
	})
}

// Clip restricts the set to the given window.
func (s Set) Clip(window Interval) Set {
	return Intersect(s, NewSet(window))
}

func (s Set) String() string {
	parts := make([]string, len(s.entries))
	for i, e := range s.entries {
		if v, ok := e.Get(); ok {
			parts[i] = v.String()
		} else {
			parts[i] = "null"
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}
