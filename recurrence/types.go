package recurrence

import (
	"errors"
	"time"
)

var (
	// ErrInvalidRule is returned when a recurrence rule cannot be evaluated
	ErrInvalidRule = errors.New("invalid recurrence rule")
	// ErrNoStart is returned when a component has no usable DTSTART
	ErrNoStart = errors.New("missing DTSTART")
)

// Rule holds everything needed to enumerate the start instants of a
// recurring event.
type Rule struct {
	DTStart time.Time   // First occurrence, also the anchor of the RRULE
	RRule   string      // The RRULE string (without "RRULE:" prefix), empty for one-off events
	RDates  []time.Time // Additional recurrence dates
	ExDates []time.Time // Exception instants, matched exactly
	ExDays  []time.Time // Date-only exceptions, each removes every occurrence on its date

	// From and Until bound evaluation, both inclusive. Zero means unbounded.
	From  time.Time
	Until time.Time
}

// Evaluator turns a Rule into its start instants.
//
// Implementations return the instants in ascending order and enforce their
// own cap on the number of occurrences.
type Evaluator interface {
	Occurrences(rule Rule) ([]time.Time, error)
}
