package freebusy

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/cyp0633/libinterval/interval"
)

const productID = "-//github.com/cyp0633/libinterval//NONSGML v1.0//EN"

// Decode reads one VCALENDAR from r
func Decode(r io.Reader) (*ical.Calendar, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoCalendar
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}
	return cal, nil
}

// Encode writes busy as a single VFREEBUSY component covering window.
// Periods are written in UTC, one FREEBUSY property each. Zero-length
// periods are omitted.
func Encode(w io.Writer, busy interval.Set, window interval.Interval, organizer string) error {
	window = window.Normalize()

	fb := ical.NewComponent(ical.CompFreeBusy)
	fb.Props.SetText(ical.PropUID, uuid.New().String())
	fb.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	fb.Props.SetDateTime(ical.PropDateTimeStart, window.Start.UTC())
	fb.Props.SetDateTime(ical.PropDateTimeEnd, window.End.UTC())
	if organizer != "" {
		prop := ical.NewProp(ical.PropOrganizer)
		prop.Value = organizer
		fb.Props.Set(prop)
	}

	for _, period := range withoutInstants(busy.Clip(window)).Intervals() {
		prop := ical.NewProp(ical.PropFreeBusy)
		prop.Params.Set("FBTYPE", "BUSY")
		prop.Value = formatUTC(period.Start) + "/" + formatUTC(period.End)
		fb.Props.Add(prop)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Children = append(cal.Children, fb)

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// ReadFreeBusy collects the busy periods of every VFREEBUSY in cal.
// Periods are either start/end or start/duration; FREE periods are ignored.
func ReadFreeBusy(cal *ical.Calendar) (interval.Set, error) {
	if cal == nil {
		return interval.Set{}, ErrNoCalendar
	}

	var periods []interval.Interval
	for _, child := range cal.Children {
		if child.Name != ical.CompFreeBusy {
			continue
		}
		for _, prop := range child.Props.Values(ical.PropFreeBusy) {
			if strings.EqualFold(prop.Params.Get("FBTYPE"), "FREE") {
				continue
			}
			for _, raw := range strings.Split(prop.Value, ",") {
				period, err := parsePeriod(strings.TrimSpace(raw))
				if err != nil {
					return interval.Set{}, err
				}
				periods = append(periods, period)
			}
		}
	}
	return interval.NewSet(periods...).Merge(), nil
}

func parsePeriod(value string) (interval.Interval, error) {
	startRaw, endRaw, ok := strings.Cut(value, "/")
	if !ok {
		return interval.Interval{}, fmt.Errorf("malformed period %q", value)
	}

	start, err := parseUTC(startRaw)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("malformed period start %q: %w", value, err)
	}

	if strings.HasPrefix(endRaw, "P") || strings.HasPrefix(endRaw, "+P") || strings.HasPrefix(endRaw, "-P") {
		prop := ical.NewProp(ical.PropDuration)
		prop.Value = endRaw
		d, err := prop.Duration()
		if err != nil {
			return interval.Interval{}, fmt.Errorf("malformed period duration %q: %w", value, err)
		}
		return interval.New(start, start.Add(d)), nil
	}

	end, err := parseUTC(endRaw)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("malformed period end %q: %w", value, err)
	}
	return interval.New(start, end), nil
}

func formatUTC(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func parseUTC(value string) (time.Time, error) {
	return time.Parse("20060102T150405Z", value)
}
