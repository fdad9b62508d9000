// Package freebusy answers scheduling questions about iCalendar data: when
// a calendar is busy, when it is free, and where its events collide.
package freebusy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/emersion/go-ical"

	"github.com/cyp0633/libinterval/interval"
	"github.com/cyp0633/libinterval/recurrence"
)

var (
	// ErrNoCalendar is returned when the input holds no VCALENDAR
	ErrNoCalendar = errors.New("no calendar found")
	// ErrInvalidWindow is returned for windows that end before they start
	ErrInvalidWindow = errors.New("invalid time window")
)

// EventSet is the busy time of one calendar component inside a window
type EventSet struct {
	UID  string
	Busy interval.Set
}

// Planner computes availability of calendars inside a time window
type Planner struct {
	expander *recurrence.Expander
	logger   *slog.Logger
}

// Option configures a Planner
type Option func(*Planner)

// WithLogger sets the logger for the planner
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPlanner creates a planner that expands events with expander
func NewPlanner(expander *recurrence.Expander, opts ...Option) *Planner {
	p := &Planner{
		expander: expander,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EventSets expands every blocking VEVENT of cal and clips it to window.
// Transparent and cancelled events do not block time and are skipped, as are
// events whose times cannot be read. Instantaneous occurrences are dropped.
func (p *Planner) EventSets(cal *ical.Calendar, window interval.Interval) ([]EventSet, error) {
	if cal == nil {
		return nil, ErrNoCalendar
	}
	if window.Start.After(window.End) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWindow, window)
	}

	var sets []EventSet
	for _, event := range cal.Events() {
		uid, _ := event.Props.Text(ical.PropUID)
		if !blocksTime(event.Component) {
			p.logger.Debug("skipping non-blocking event", "uid", uid)
			continue
		}

		busy, err := p.expander.ExpandComponent(event.Component, window.Start, window.End)
		if errors.Is(err, recurrence.ErrNoStart) {
			p.logger.Warn("skipping event without start", "uid", uid)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to expand event %q: %w", uid, err)
		}

		sets = append(sets, EventSet{UID: uid, Busy: withoutInstants(busy.Clip(window))})
	}

	p.logger.Debug("expanded calendar", "events", len(sets), "window", window.String())
	return sets, nil
}

// Busy returns the merged busy time of cal inside window
func (p *Planner) Busy(cal *ical.Calendar, window interval.Interval) (interval.Set, error) {
	sets, err := p.EventSets(cal, window)
	if err != nil {
		return interval.Set{}, err
	}

	var busy interval.Set
	for _, s := range sets {
		busy = interval.MergeSets(busy, s.Busy)
	}
	return busy, nil
}

// Free returns the parts of window not covered by any event of cal
func (p *Planner) Free(cal *ical.Calendar, window interval.Interval) (interval.Set, error) {
	busy, err := p.Busy(cal, window)
	if err != nil {
		return interval.Set{}, err
	}
	return interval.Subtract(interval.NewSet(window), busy), nil
}

// Conflicts returns the time inside window where two or more events of cal
// are scheduled at once
func (p *Planner) Conflicts(cal *ical.Calendar, window interval.Interval) (interval.Set, error) {
	sets, err := p.EventSets(cal, window)
	if err != nil {
		return interval.Set{}, err
	}

	busy := make([]interval.Set, len(sets))
	for i, s := range sets {
		busy[i] = s.Busy
	}
	return Conflicts(busy...), nil
}

// Conflicts returns the time covered by at least two of the given sets.
// Back-to-back sets only touch and do not conflict.
func Conflicts(sets ...interval.Set) interval.Set {
	var overlap interval.Set
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			overlap = interval.MergeSets(overlap, interval.Intersect(sets[i], sets[j]))
		}
	}

	return withoutInstants(overlap)
}

// Available returns the offered time that is not blocked
func Available(offered, blocked interval.Set) interval.Set {
	return interval.Subtract(offered, blocked)
}

// withoutInstants drops zero-length intervals, which occupy no time
func withoutInstants(s interval.Set) interval.Set {
	var kept []interval.Interval
	for _, iv := range s.Intervals() {
		if iv.Duration() > 0 {
			kept = append(kept, iv)
		}
	}
	return interval.NewSet(kept...)
}

func blocksTime(comp *ical.Component) bool {
	if transp, err := comp.Props.Text(ical.PropTransparency); err == nil && strings.EqualFold(transp, "TRANSPARENT") {
		return false
	}
	if status, err := comp.Props.Text(ical.PropStatus); err == nil && strings.EqualFold(status, "CANCELLED") {
		return false
	}
	return true
}
