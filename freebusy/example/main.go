package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/cyp0633/libinterval/freebusy"
	"github.com/cyp0633/libinterval/interval"
	"github.com/cyp0633/libinterval/recurrence"
)

const organizer = "mailto:demo@example.com"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	engine := recurrence.NewEngineWithConfig(recurrence.DefaultEngineConfig, recurrence.WithLogger(logger))
	defer engine.Close()

	planner := freebusy.NewPlanner(recurrence.NewExpander(engine, logger), freebusy.WithLogger(logger))

	monday := nextMonday(time.Now().UTC())
	window := interval.New(monday.Add(8*time.Hour), monday.AddDate(0, 0, 5).Add(18*time.Hour))
	cal := sampleCalendar(monday)

	free, err := planner.Free(cal, window)
	if err != nil {
		log.Fatalf("Failed to compute free time: %v", err)
	}
	log.Printf("Free this week: %v (%v in total)", free, free.Duration())

	conflicts, err := planner.Conflicts(cal, window)
	if err != nil {
		log.Fatalf("Failed to compute conflicts: %v", err)
	}
	log.Printf("Double-booked: %v", conflicts)

	busy, err := planner.Busy(cal, window)
	if err != nil {
		log.Fatalf("Failed to compute busy time: %v", err)
	}
	if err := freebusy.Encode(os.Stdout, busy, window, organizer); err != nil {
		log.Fatalf("Failed to encode free/busy: %v", err)
	}
}

// sampleCalendar builds a week with a daily standup, a weekly review that
// collides with it, and a lunch block
func sampleCalendar(monday time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, "-//github.com/cyp0633/libinterval//example//EN")
	cal.Props.SetText(ical.PropVersion, "2.0")

	addEvent(cal, "Standup", monday.Add(9*time.Hour), 30*time.Minute, "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR")
	addEvent(cal, "Design review", monday.Add(9*time.Hour+15*time.Minute), time.Hour, "FREQ=WEEKLY")
	addEvent(cal, "Lunch", monday.Add(12*time.Hour), time.Hour, "FREQ=DAILY;COUNT=5")

	return cal
}

func addEvent(cal *ical.Calendar, summary string, start time.Time, length time.Duration, rrule string) {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uuid.New().String())
	event.Props.SetText(ical.PropSummary, summary)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(length))
	if rrule != "" {
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = rrule
		event.Props.Set(prop)
	}
	cal.Children = append(cal.Children, event.Component)
}

func nextMonday(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
