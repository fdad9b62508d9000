package recurrence

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/teambition/rrule-go"
)

// Engine evaluates recurrence rules with rrule-go. It implements Evaluator.
type Engine struct {
	cache  *RecurrenceCache
	config EngineConfig
	logger *slog.Logger
}

var _ Evaluator = (*Engine)(nil)

// Occurrences returns the start instants of rule in ascending order, at most
// MaxOccurrences of them.
func (e *Engine) Occurrences(rule Rule) ([]time.Time, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(rule, e.config.MaxOccurrences); ok {
			e.logger.Debug("recurrence cache hit", "rrule", rule.RRule, "dtstart", rule.DTStart)
			return cached, nil
		}
	}

	occurrences, err := e.expand(rule)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.cache.Set(rule, e.config.MaxOccurrences, occurrences)
	}
	return occurrences, nil
}

// Close stops the cache cleanup goroutine, if any
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

func (e *Engine) expand(rule Rule) ([]time.Time, error) {
	set, err := e.buildSet(rule)
	if err != nil {
		return nil, err
	}

	limit := e.config.MaxOccurrences
	occurrences := make([]time.Time, 0)
	next := set.Iterator()
	for {
		t, ok := next()
		if !ok {
			break
		}
		if !rule.Until.IsZero() && t.After(rule.Until) {
			break
		}
		if !rule.From.IsZero() && t.Before(rule.From) {
			continue
		}
		if e.isExcluded(t, rule) {
			continue
		}
		if len(occurrences) == limit {
			e.logger.Debug("recurrence expansion truncated",
				"rrule", rule.RRule,
				"dtstart", rule.DTStart,
				"cap", limit)
			break
		}
		occurrences = append(occurrences, t)
	}

	return occurrences, nil
}

// buildSet collects the RRULE and RDATEs of rule into an rrule.Set.
// EXDATEs are applied by the caller because of the date-only matching.
func (e *Engine) buildSet(rule Rule) (*rrule.Set, error) {
	var set rrule.Set

	if rule.RRule != "" {
		if rule.DTStart.IsZero() {
			return nil, fmt.Errorf("%w: RRULE %q has no DTSTART", ErrInvalidRule, rule.RRule)
		}
		opt, err := rrule.StrToROption(rule.RRule)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse RRULE %q: %w", ErrInvalidRule, rule.RRule, err)
		}
		opt.Dtstart = rule.DTStart
		r, err := rrule.NewRRule(*opt)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to build RRULE %q: %w", ErrInvalidRule, rule.RRule, err)
		}
		set.RRule(r)
	} else if !rule.DTStart.IsZero() {
		set.RDate(rule.DTStart)
	}

	rdates := slices.Clone(rule.RDates)
	slices.SortFunc(rdates, func(a, b time.Time) int { return a.Compare(b) })
	for _, rdate := range rdates {
		set.RDate(rdate)
	}

	return &set, nil
}

// isExcluded checks if a given time matches an EXDATE instant or falls on
// a date-only EXDATE
func (e *Engine) isExcluded(t time.Time, rule Rule) bool {
	for _, exdate := range rule.ExDates {
		if t.Equal(exdate) {
			return true
		}
	}

	y, m, d := t.Date()
	for _, day := range rule.ExDays {
		dy, dm, dd := day.Date()
		if y == dy && m == dm && d == dd {
			return true
		}
	}
	return false
}
