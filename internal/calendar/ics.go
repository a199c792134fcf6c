package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pfrederiksen/motogp-ics/internal/event"
)

// ProductID identifies the generator in the PRODID property.
const ProductID = "-//pfrederiksen//motogp-ics//EN"

// NewCalendar converts records into a calendar, one VEVENT per record in
// the given order. DTSTAMP is the event start, so the output depends only
// on the records.
func NewCalendar(records []*event.Record) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ics.MethodPublish)

	for _, rec := range records {
		ev := cal.AddEvent(rec.ID)
		ev.SetDtStampTime(rec.Begin)
		ev.SetSummary(rec.Name)
		ev.SetLocation(rec.Location)
		ev.SetURL(rec.URL)
		ev.SetStartAt(rec.Begin)
		ev.SetProperty(ics.ComponentProperty(ics.PropertyDuration), FormatDuration(rec.Duration))
		ev.SetDescription(rec.Description)

		for _, r := range rec.Reminders {
			alarm := ev.AddAlarm()
			alarm.SetAction(ics.ActionAudio)
			alarm.SetTrigger(FormatDuration(-r.Before))
		}
	}

	return cal
}

// Write serializes records as an .ics document to w. Lines end in CRLF
// regardless of platform.
func Write(w io.Writer, records []*event.Record) error {
	return NewCalendar(records).SerializeTo(w, ics.WithNewLineWindows)
}

// FormatDuration renders d as an RFC 5545 dur-value such as "PT6H15M",
// "P2DT6H15M" or "-PT30M". Sub-second precision is dropped.
func FormatDuration(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')

	secs := int64(d / time.Second)
	days := secs / 86400
	secs %= 86400
	h, m, s := secs/3600, secs%3600/60, secs%60

	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
		if secs == 0 {
			return b.String()
		}
	}

	b.WriteByte('T')
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s > 0 || (h == 0 && m == 0) {
		fmt.Fprintf(&b, "%dS", s)
	}

	return b.String()
}
