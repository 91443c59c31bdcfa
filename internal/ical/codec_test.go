package ical

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rental-availability/backend/internal/availability"
)

func day(t *testing.T, s string) availability.Day {
	t.Helper()
	d, err := availability.ParseDay(s)
	require.NoError(t, err)
	return d
}

func icsDoc(lines ...string) []byte {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR", "")
	return []byte(strings.Join(all, "\r\n"))
}

func TestEncodeDeterministic(t *testing.T) {
	ranges := []availability.BlockedRange{
		{Start: day(t, "2026-08-10"), End: day(t, "2026-08-12"), Source: availability.FeedTag("abc")},
		{Start: day(t, "2026-08-01"), End: day(t, "2026-08-03"), Source: availability.ManualTag()},
	}
	labels := map[string]string{"abc": "Airbnb"}

	first := Encode(ranges, labels)
	second := Encode(ranges, labels)
	assert.Equal(t, first, second, "identical input must produce byte-stable output")

	// Events are ordered by start date regardless of input order.
	firstIdx := strings.Index(first, "20260801")
	secondIdx := strings.Index(first, "20260810")
	require.NotEqual(t, -1, firstIdx)
	require.NotEqual(t, -1, secondIdx)
	assert.Less(t, firstIdx, secondIdx)
}

func TestEncodeSourceLabels(t *testing.T) {
	ranges := []availability.BlockedRange{
		{Start: day(t, "2026-08-01"), End: day(t, "2026-08-01"), Source: availability.ManualTag()},
		{Start: day(t, "2026-08-05"), End: day(t, "2026-08-05"), Source: availability.FeedTag("abc")},
		{Start: day(t, "2026-08-09"), End: day(t, "2026-08-09"), Source: availability.FeedTag("unknown")},
	}

	doc := Encode(ranges, map[string]string{"abc": "Airbnb"})

	assert.Contains(t, doc, "DESCRIPTION:"+ManualLabel)
	assert.Contains(t, doc, "DESCRIPTION:Airbnb")
	// Unmapped feed IDs fall back to the raw ID.
	assert.Contains(t, doc, "DESCRIPTION:unknown")
}

func TestEncodeExclusiveEnd(t *testing.T) {
	ranges := []availability.BlockedRange{
		{Start: day(t, "2026-08-01"), End: day(t, "2026-08-03"), Source: availability.ManualTag()},
	}

	doc := Encode(ranges, nil)

	// DTEND is one day past the inclusive last blocked day.
	assert.Contains(t, doc, "20260801")
	assert.Contains(t, doc, "20260804")
}

func TestDecodeEncodedDocumentReproducesDays(t *testing.T) {
	ranges := []availability.BlockedRange{
		{Start: day(t, "2026-08-01"), End: day(t, "2026-08-03"), Source: availability.ManualTag()},
		{Start: day(t, "2026-08-10"), End: day(t, "2026-08-10"), Source: availability.FeedTag("abc")},
	}

	days, err := Decode([]byte(Encode(ranges, nil)))
	require.NoError(t, err)

	want := append(
		availability.DaysBetween(day(t, "2026-08-01"), day(t, "2026-08-03")),
		day(t, "2026-08-10"),
	)
	assert.Equal(t, want, days)
}

func TestDecodeAllDayEvent(t *testing.T) {
	doc := icsDoc(
		"BEGIN:VEVENT",
		"UID:evt-1",
		"DTSTAMP:20260801T000000Z",
		"DTSTART;VALUE=DATE:20260801",
		"DTEND;VALUE=DATE:20260803",
		"SUMMARY:Reserved",
		"END:VEVENT",
	)

	days, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, []availability.Day{day(t, "2026-08-01"), day(t, "2026-08-02")}, days)
}

func TestDecodeMissingDtEndMeansSingleDay(t *testing.T) {
	doc := icsDoc(
		"BEGIN:VEVENT",
		"UID:evt-1",
		"DTSTAMP:20260801T000000Z",
		"DTSTART;VALUE=DATE:20260801",
		"END:VEVENT",
	)

	days, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, []availability.Day{day(t, "2026-08-01")}, days)
}

func TestDecodeSkipsTimedEvents(t *testing.T) {
	doc := icsDoc(
		"BEGIN:VEVENT",
		"UID:evt-timed",
		"DTSTAMP:20260801T000000Z",
		"DTSTART:20260801T120000Z",
		"DTEND:20260801T140000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:evt-allday",
		"DTSTAMP:20260801T000000Z",
		"DTSTART;VALUE=DATE:20260805",
		"DTEND;VALUE=DATE:20260806",
		"END:VEVENT",
	)

	days, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, []availability.Day{day(t, "2026-08-05")}, days)
}

func TestDecodeSkipsZeroLengthAndInvertedSpans(t *testing.T) {
	doc := icsDoc(
		"BEGIN:VEVENT",
		"UID:evt-zero",
		"DTSTAMP:20260801T000000Z",
		"DTSTART;VALUE=DATE:20260801",
		"DTEND;VALUE=DATE:20260801",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:evt-inverted",
		"DTSTAMP:20260801T000000Z",
		"DTSTART;VALUE=DATE:20260810",
		"DTEND;VALUE=DATE:20260805",
		"END:VEVENT",
	)

	days, err := Decode(doc)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestDecodeSkipsMalformedEventButKeepsValidOnes(t *testing.T) {
	doc := icsDoc(
		"BEGIN:VEVENT",
		"UID:evt-bad-date",
		"DTSTAMP:20260801T000000Z",
		"DTSTART;VALUE=DATE:99999999",
		"DTEND;VALUE=DATE:20260803",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:evt-good",
		"DTSTAMP:20260801T000000Z",
		"DTSTART;VALUE=DATE:20260820",
		"DTEND;VALUE=DATE:20260821",
		"END:VEVENT",
	)

	days, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, []availability.Day{day(t, "2026-08-20")}, days)
}

func TestDecodeOverlappingEventsYieldUnion(t *testing.T) {
	doc := icsDoc(
		"BEGIN:VEVENT",
		"UID:evt-1",
		"DTSTAMP:20260801T000000Z",
		"DTSTART;VALUE=DATE:20260801",
		"DTEND;VALUE=DATE:20260804",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:evt-2",
		"DTSTAMP:20260801T000000Z",
		"DTSTART;VALUE=DATE:20260803",
		"DTEND;VALUE=DATE:20260806",
		"END:VEVENT",
	)

	days, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, availability.DaysBetween(day(t, "2026-08-01"), day(t, "2026-08-05")), days)
}

func TestDecodeRejectsUnparseableDocument(t *testing.T) {
	_, err := Decode([]byte("this is not a calendar"))
	assert.Error(t, err)

	_, err = Decode(nil)
	assert.Error(t, err)
}
