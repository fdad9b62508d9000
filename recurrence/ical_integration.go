package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// RuleFromComponent extracts the recurrence rule of an iCal component
func RuleFromComponent(comp *ical.Component) (Rule, error) {
	var rule Rule

	if dtstart := comp.Props.Get(ical.PropDateTimeStart); dtstart != nil {
		start, err := dtstart.DateTime(nil)
		if err != nil {
			return rule, fmt.Errorf("failed to parse DTSTART: %w", err)
		}
		rule.DTStart = start
	}

	if rruleProp := comp.Props.Get(ical.PropRecurrenceRule); rruleProp != nil {
		rule.RRule = strings.TrimPrefix(rruleProp.Value, "RRULE:")
	}

	for _, prop := range comp.Props.Values(ical.PropRecurrenceDates) {
		times, days := parseDateList(prop)
		rule.RDates = append(rule.RDates, times...)
		rule.RDates = append(rule.RDates, days...)
	}
	for _, prop := range comp.Props.Values(ical.PropExceptionDates) {
		times, days := parseDateList(prop)
		rule.ExDates = append(rule.ExDates, times...)
		rule.ExDays = append(rule.ExDays, days...)
	}

	return rule, nil
}

// EventTimes extracts start and end times from an iCal component.
// The end comes from DTEND, then DURATION, then the RFC 5545 defaults: one
// day for all-day events and zero length otherwise. For VTODO a later DUE
// extends the end.
func EventTimes(comp *ical.Component) (start, end time.Time, ok bool) {
	dtstart := comp.Props.Get(ical.PropDateTimeStart)
	if dtstart != nil {
		var err error
		if start, err = dtstart.DateTime(nil); err != nil {
			return start, end, false
		}
		ok = true

		allDay := isDateValue(dtstart)
		if dtend := comp.Props.Get(ical.PropDateTimeEnd); dtend != nil {
			if end, err = dtend.DateTime(nil); err != nil {
				return start, end, false
			}
			// Same-date DTEND on an all-day event still covers the day
			if allDay && end.Equal(start) {
				end = start.AddDate(0, 0, 1)
			}
		} else if durationProp := comp.Props.Get(ical.PropDuration); durationProp != nil {
			duration, err := durationProp.Duration()
			if err != nil {
				return start, end, false
			}
			end = start.Add(duration)
		} else if allDay {
			end = start.AddDate(0, 0, 1)
		} else {
			end = start
		}
	}

	if comp.Name == ical.CompToDo {
		if dueProp := comp.Props.Get(ical.PropDue); dueProp != nil {
			due, err := dueProp.DateTime(nil)
			if err != nil {
				return start, end, ok
			}
			if !ok {
				return due, due, true
			}
			if due.After(end) {
				end = due
			}
		}
	}

	return start, end, ok
}

// parseDateList parses a comma-separated RDATE or EXDATE value into
// date-time instants and date-only days. Days are returned as midnight UTC;
// unparseable entries are skipped.
func parseDateList(prop ical.Prop) (times, days []time.Time) {
	loc := time.UTC
	if tzid := prop.Params.Get("TZID"); tzid != "" {
		if l, err := time.LoadLocation(tzid); err == nil {
			loc = l
		}
	}
	dateOnly := strings.EqualFold(prop.Params.Get("VALUE"), "DATE")

	for _, raw := range strings.Split(prop.Value, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t, err := parseICalTime(raw, loc, dateOnly)
		if err != nil {
			continue
		}
		if dateOnly || !strings.Contains(raw, "T") {
			days = append(days, t)
		} else {
			times = append(times, t)
		}
	}
	return times, days
}

func parseICalTime(value string, loc *time.Location, dateOnly bool) (time.Time, error) {
	switch {
	case dateOnly || !strings.Contains(value, "T"):
		t, err := time.Parse("20060102", value)
		if err != nil {
			return t, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	case strings.HasSuffix(value, "Z"):
		return time.Parse("20060102T150405Z", value)
	default:
		return time.ParseInLocation("20060102T150405", value, loc)
	}
}

func isDateValue(prop *ical.Prop) bool {
	return strings.EqualFold(prop.Params.Get("VALUE"), "DATE") || !strings.Contains(prop.Value, "T")
}
