package interval

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

// Interval is a half-open time range [Start, End).
// An Interval built with Start after End is a valid input and denotes the
// same range with its endpoints swapped; see Normalize.
type Interval struct {
	Start time.Time
	End   time.Time
}

// New returns the interval between start and end. Reversed endpoints are kept
// as given.
func New(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Normalize returns the interval with Start <= End.
func (i Interval) Normalize() Interval {
	if i.Start.After(i.End) {
		return Interval{Start: i.End, End: i.Start}
	}
	return i
}

// Normalize normalizes a possibly absent interval. None stays None.
func Normalize(entry mo.Option[Interval]) mo.Option[Interval] {
	if v, ok := entry.Get(); ok {
		return mo.Some(v.Normalize())
	}
	return entry
}

// Duration returns the length of the normalized interval
func (i Interval) Duration() time.Duration {
	n := i.Normalize()
	return n.End.Sub(n.Start)
}

// Overlaps reports whether the two intervals share an instant. Touching
// endpoints count as overlapping. Both intervals must be normalized.
func (i Interval) Overlaps(o Interval) bool {
	return !i.Start.After(o.End) && !o.Start.After(i.End)
}

// Contains reports whether t lies in [Start, End).
func (i Interval) Contains(t time.Time) bool {
	n := i.Normalize()
	return !t.Before(n.Start) && t.Before(n.End)
}

// Intersect returns the common part of two normalized intervals, or None when
// they do not overlap.
func (i Interval) Intersect(o Interval) mo.Option[Interval] {
	if !i.Overlaps(o) {
		return mo.None[Interval]()
	}
	return mo.Some(Interval{
		Start: latest(i.Start, o.Start),
		End:   earliest(i.End, o.End),
	})
}

// Subtract removes s from i and returns what is left: zero, one or two
// intervals, in ascending order. Both intervals must be normalized.
func (i Interval) Subtract(s Interval) []Interval {
	switch {
	case !i.Overlaps(s):
		return []Interval{i}
	case !s.Start.After(i.Start) && !s.End.Before(i.End):
		return nil
	case !s.Start.After(i.Start):
		return []Interval{{Start: s.End, End: i.End}}
	case !s.End.Before(i.End):
		return []Interval{{Start: i.Start, End: s.Start}}
	default:
		return []Interval{
			{Start: i.Start, End: s.Start},
			{Start: s.End, End: i.End},
		}
	}
}

// Equal reports whether both endpoints denote the same instants.
func (i Interval) Equal(o Interval) bool {
	return i.Start.Equal(o.Start) && i.End.Equal(o.End)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
