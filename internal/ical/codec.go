// Package ical encodes and decodes the blocked-date interchange format:
// an iCalendar document of all-day events, one per compressed range.
package ical

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/rental-availability/backend/internal/availability"
)

// ManualLabel is the human-readable source label for owner-edited days.
const ManualLabel = "Custom"

const (
	productID = "-//rental-availability//blocked-dates//EN"
	uidDomain = "rental-availability"

	dateValueLayout = "20060102"
)

// Encode emits one all-day VEVENT per blocked range. DTEND is exclusive,
// one day past the last blocked day. The event description carries the
// source's display label: ManualLabel for owner edits, the feed's display
// name (looked up in labels by feed ID, falling back to the raw ID)
// otherwise.
//
// Output is deterministic for identical inputs: events are ordered by
// start date, UIDs derive from the start date, and DTSTAMP is pinned to
// the range start rather than the wall clock, so exports can be diffed.
func Encode(ranges []availability.BlockedRange, labels map[string]string) string {
	sorted := make([]availability.BlockedRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, r := range sorted {
		uid := fmt.Sprintf("blocked-%s@%s", r.Start.Time().Format(dateValueLayout), uidDomain)
		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(r.Start.Time())
		ev.SetAllDayStartAt(r.Start.Time())
		ev.SetAllDayEndAt(r.End.Next().Time())
		ev.SetSummary("Not available")
		ev.SetDescription(sourceLabel(r.Source, labels))
	}

	return cal.Serialize()
}

func sourceLabel(tag availability.SourceTag, labels map[string]string) string {
	if tag.IsManual() {
		return ManualLabel
	}
	if name, ok := labels[tag.FeedID]; ok && name != "" {
		return name
	}
	return tag.FeedID
}

// Decode extracts all-day event spans from an iCalendar document and
// returns the union of their days, sorted ascending.
//
// Individual events that are not all-day, have unparseable dates, or cover
// a zero-length or inverted span are skipped; only a document the parser
// cannot read at all fails the whole decode. An empty day list with a nil
// error is a valid outcome and distinct from a parse failure.
func Decode(body []byte) ([]availability.Day, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("empty calendar document")
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar document: %w", err)
	}

	seen := make(map[availability.Day]struct{})
	for _, ev := range cal.Events() {
		start, end, ok := allDaySpan(ev)
		if !ok {
			continue
		}
		// end is exclusive; reject zero-length and inverted spans.
		if !end.After(start) {
			continue
		}
		for d := start; d.Before(end); d = d.Next() {
			seen[d] = struct{}{}
		}
	}

	days := make([]availability.Day, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// allDaySpan returns the [start, end) day span of an all-day event. ok is
// false for timed or malformed events.
func allDaySpan(ev *ics.VEvent) (start, end availability.Day, ok bool) {
	startProp := ev.GetProperty(ics.ComponentPropertyDtStart)
	if startProp == nil || !isDateValue(startProp) {
		return availability.Day{}, availability.Day{}, false
	}

	start, err := parseDateValue(startProp.Value)
	if err != nil {
		return availability.Day{}, availability.Day{}, false
	}

	endProp := ev.GetProperty(ics.ComponentPropertyDtEnd)
	if endProp == nil {
		// No DTEND on an all-day event means a single blocked day.
		return start, start.Next(), true
	}
	if !isDateValue(endProp) {
		return availability.Day{}, availability.Day{}, false
	}
	end, err = parseDateValue(endProp.Value)
	if err != nil {
		return availability.Day{}, availability.Day{}, false
	}
	return start, end, true
}

// isDateValue reports whether the property holds a date-only value, either
// via VALUE=DATE or a value without a time part.
func isDateValue(p *ics.IANAProperty) bool {
	if vs, found := p.ICalParameters["VALUE"]; found && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func parseDateValue(v string) (availability.Day, error) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{dateValueLayout, availability.DayLayout} {
		if t, err := time.Parse(layout, v); err == nil {
			return availability.DayOf(t), nil
		}
	}
	return availability.Day{}, fmt.Errorf("invalid date value %q", v)
}
