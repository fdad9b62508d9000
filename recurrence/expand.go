package recurrence

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/cyp0633/libinterval/interval"
)

// EndFunc derives the end of an occurrence from its start.
type EndFunc func(start time.Time) time.Time

// Lasting ends every occurrence d after its start.
func Lasting(d time.Duration) EndFunc {
	return func(start time.Time) time.Time {
		return start.Add(d)
	}
}

// EndingAt ends every occurrence at the given clock time on the start's date,
// in the start's location. The end may fall before the start; such intervals
// are left reversed.
func EndingAt(hour, min, sec int) EndFunc {
	return func(start time.Time) time.Time {
		y, m, d := start.Date()
		return time.Date(y, m, d, hour, min, sec, 0, start.Location())
	}
}

// Expander turns recurrence rules into interval sets.
type Expander struct {
	evaluator Evaluator
	logger    *slog.Logger
}

// NewExpander creates an expander that asks evaluator for start instants.
// A nil logger discards output.
func NewExpander(evaluator Evaluator, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Expander{
		evaluator: evaluator,
		logger:    logger,
	}
}

// Expand returns one interval per start instant of rule, paired with end(start).
// The result is neither normalized nor merged. Evaluator errors are returned
// as they are.
func (e *Expander) Expand(rule Rule, end EndFunc) (interval.Set, error) {
	starts, err := e.evaluator.Occurrences(rule)
	if err != nil {
		return interval.Set{}, err
	}

	intervals := make([]interval.Interval, len(starts))
	for i, start := range starts {
		intervals[i] = interval.New(start, end(start))
	}

	e.logger.Debug("expanded recurrence",
		"rrule", rule.RRule,
		"dtstart", rule.DTStart,
		"occurrences", len(intervals))

	return interval.NewSet(intervals...), nil
}

// ExpandComponent expands a VEVENT or VTODO, using the component's own
// duration for every occurrence. Occurrences that end before from or start
// after until are not produced; a zero bound is open.
func (e *Expander) ExpandComponent(comp *ical.Component, from, until time.Time) (interval.Set, error) {
	start, end, ok := EventTimes(comp)
	if !ok {
		return interval.Set{}, fmt.Errorf("%w in %s", ErrNoStart, comp.Name)
	}

	rule, err := RuleFromComponent(comp)
	if err != nil {
		return interval.Set{}, err
	}

	duration := end.Sub(start)
	if !from.IsZero() {
		rule.From = from.Add(-duration.Abs())
	}
	rule.Until = until

	return e.Expand(rule, Lasting(duration))
}
