package recurrence

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFirst(t *testing.T, ics string) *ical.Component {
	t.Helper()
	ics = strings.ReplaceAll(ics, "\n", "\r\n")
	cal, err := ical.NewDecoder(strings.NewReader(ics)).Decode()
	require.NoError(t, err)
	require.NotEmpty(t, cal.Children)
	for _, child := range cal.Children {
		if child.Name == ical.CompEvent || child.Name == ical.CompToDo {
			return child
		}
	}
	t.Fatal("no VEVENT or VTODO in calendar")
	return nil
}

const recurringEvent = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//libinterval//test//EN
BEGIN:VEVENT
UID:weekly@example.com
DTSTAMP:20240101T000000Z
DTSTART:20240101T090000Z
DTEND:20240101T100000Z
RRULE:FREQ=WEEKLY;COUNT=4
RDATE:20240103T090000Z,20240105T090000Z
EXDATE;VALUE=DATE:20240108
EXDATE:20240115T090000Z
END:VEVENT
END:VCALENDAR
`

func TestRuleFromComponent(t *testing.T) {
	comp := decodeFirst(t, recurringEvent)

	rule, err := RuleFromComponent(comp)
	require.NoError(t, err)

	assert.True(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).Equal(rule.DTStart))
	assert.Equal(t, "FREQ=WEEKLY;COUNT=4", rule.RRule)
	require.Len(t, rule.RDates, 2)
	assert.True(t, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC).Equal(rule.RDates[1]))
	require.Len(t, rule.ExDates, 1)
	require.Len(t, rule.ExDays, 1)
	assert.True(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC).Equal(rule.ExDays[0]))

	occurrences, err := NewEngine().Occurrences(rule)
	require.NoError(t, err)

	want := []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC),
	}
	require.Len(t, occurrences, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(occurrences[i]), "occurrence %d: got %v", i, occurrences[i])
	}
}

func TestRuleFromComponent_Empty(t *testing.T) {
	comp := &ical.Component{
		Name:  ical.CompEvent,
		Props: make(ical.Props),
	}

	rule, err := RuleFromComponent(comp)
	require.NoError(t, err)
	assert.True(t, rule.DTStart.IsZero())
	assert.Equal(t, "", rule.RRule)
	assert.Empty(t, rule.RDates)
	assert.Empty(t, rule.ExDates)
	assert.Empty(t, rule.ExDays)
}

func TestParseDateList_TZID(t *testing.T) {
	prop := ical.NewProp(ical.PropExceptionDates)
	prop.Params.Set("TZID", "Asia/Shanghai")
	prop.Value = "20240101T090000, 20240102T090000"

	dates, days := parseDateList(*prop)
	require.Len(t, dates, 2)
	assert.Empty(t, days)

	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 1, 9, 0, 0, 0, shanghai).Equal(dates[0]))
	assert.True(t, time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC).Equal(dates[1]))
}

func TestParseDateList_DateOnly(t *testing.T) {
	prop := ical.NewProp(ical.PropExceptionDates)
	prop.Params.Set("VALUE", "DATE")
	prop.Value = "20240108,20240109"

	dates, days := parseDateList(*prop)
	assert.Empty(t, dates)
	require.Len(t, days, 2)
	assert.True(t, time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC).Equal(days[1]))

	prop = ical.NewProp(ical.PropExceptionDates)
	prop.Value = "20240108T000000Z"

	dates, days = parseDateList(*prop)
	require.Len(t, dates, 1)
	assert.Empty(t, days)
}

func TestEventTimes(t *testing.T) {
	tests := []struct {
		name      string
		ics       string
		wantStart time.Time
		wantEnd   time.Time
		wantOK    bool
	}{
		{
			name: "DTEND",
			ics: `BEGIN:VCALENDAR
VERSION:2.0
PRODID:test
BEGIN:VEVENT
UID:1
DTSTAMP:20240101T000000Z
DTSTART:20240101T090000Z
DTEND:20240101T103000Z
END:VEVENT
END:VCALENDAR
`,
			wantStart: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
			wantOK:    true,
		},
		{
			name: "DURATION",
			ics: `BEGIN:VCALENDAR
VERSION:2.0
PRODID:test
BEGIN:VEVENT
UID:2
DTSTAMP:20240101T000000Z
DTSTART:20240101T090000Z
DURATION:PT45M
END:VEVENT
END:VCALENDAR
`,
			wantStart: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 1, 9, 45, 0, 0, time.UTC),
			wantOK:    true,
		},
		{
			name: "instantaneous",
			ics: `BEGIN:VCALENDAR
VERSION:2.0
PRODID:test
BEGIN:VEVENT
UID:3
DTSTAMP:20240101T000000Z
DTSTART:20240101T090000Z
END:VEVENT
END:VCALENDAR
`,
			wantStart: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			wantOK:    true,
		},
		{
			name: "all-day without DTEND",
			ics: `BEGIN:VCALENDAR
VERSION:2.0
PRODID:test
BEGIN:VEVENT
UID:4
DTSTAMP:20240101T000000Z
DTSTART;VALUE=DATE:20240101
END:VEVENT
END:VCALENDAR
`,
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			wantOK:    true,
		},
		{
			name: "todo with only DUE",
			ics: `BEGIN:VCALENDAR
VERSION:2.0
PRODID:test
BEGIN:VTODO
UID:5
DTSTAMP:20240101T000000Z
DUE:20240105T170000Z
END:VTODO
END:VCALENDAR
`,
			wantStart: time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC),
			wantOK:    true,
		},
		{
			name: "todo with later DUE",
			ics: `BEGIN:VCALENDAR
VERSION:2.0
PRODID:test
BEGIN:VTODO
UID:6
DTSTAMP:20240101T000000Z
DTSTART:20240105T090000Z
DURATION:PT1H
DUE:20240105T170000Z
END:VTODO
END:VCALENDAR
`,
			wantStart: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC),
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := EventTimes(decodeFirst(t, tt.ics))
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.wantStart.Equal(start), "start: got %v", start)
			assert.True(t, tt.wantEnd.Equal(end), "end: got %v", end)
		})
	}
}

func TestEventTimes_NoStart(t *testing.T) {
	_, _, ok := EventTimes(&ical.Component{Name: ical.CompEvent, Props: make(ical.Props)})
	assert.False(t, ok)
}
