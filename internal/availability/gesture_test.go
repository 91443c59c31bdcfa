package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGestureClickBlocksEmptyDay(t *testing.T) {
	s := NewStore()
	g := NewGesture(s)
	d := day(t, "2026-06-01")

	g.PointerDown(d)
	g.PointerUp()

	tag, ok := s.SourceOf(d)
	require.True(t, ok)
	assert.Equal(t, ManualTag(), tag)
	assert.Equal(t, GestureIdle, g.State())
}

func TestGestureClickUnblocksManualDay(t *testing.T) {
	s := NewStore()
	g := NewGesture(s)
	d := day(t, "2026-06-01")
	s.SetManual(d)

	g.PointerDown(d)
	g.PointerUp()

	assert.False(t, s.IsBlocked(d))
}

func TestGestureClickOnFeedDayIsNoOp(t *testing.T) {
	s := NewStore()
	g := NewGesture(s)
	d := day(t, "2026-06-01")
	s.MergeFeedDates("airbnb", []Day{d})

	g.PointerDown(d)
	g.PointerUp()

	tag, ok := s.SourceOf(d)
	require.True(t, ok)
	assert.Equal(t, FeedTag("airbnb"), tag)
}

func TestGestureDragOverwritesFeedDays(t *testing.T) {
	s := NewStore()
	g := NewGesture(s)
	d1 := day(t, "2026-06-01")
	d3 := day(t, "2026-06-03")
	d5 := day(t, "2026-06-05")
	s.MergeFeedDates("vrbo", []Day{d3})

	g.PointerDown(d1)
	g.PointerEnter(d5)
	g.PointerUp()

	for _, d := range DaysBetween(d1, d5) {
		tag, ok := s.SourceOf(d)
		require.True(t, ok, "day %s should be blocked", d)
		assert.Equal(t, ManualTag(), tag)
	}
}

func TestGestureDragBackwards(t *testing.T) {
	// Dragging right-to-left commits the same normalized range.
	s := NewStore()
	g := NewGesture(s)

	g.PointerDown(day(t, "2026-06-05"))
	g.PointerEnter(day(t, "2026-06-02"))
	g.PointerUp()

	assert.Equal(t, 4, s.Len())
	assert.True(t, s.IsBlocked(day(t, "2026-06-02")))
	assert.True(t, s.IsBlocked(day(t, "2026-06-05")))
}

func TestGesturePointerUpWithoutDownIsNoOp(t *testing.T) {
	s := NewStore()
	g := NewGesture(s)

	g.PointerUp()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, GestureIdle, g.State())
}

func TestGesturePointerEnterWhileIdleIsIgnored(t *testing.T) {
	s := NewStore()
	g := NewGesture(s)

	g.PointerEnter(day(t, "2026-06-01"))
	g.PointerUp()

	assert.Equal(t, 0, s.Len())
}

func TestGestureHighlightTracksCursor(t *testing.T) {
	s := NewStore()
	g := NewGesture(s)

	_, _, ok := g.Highlight()
	assert.False(t, ok, "no highlight while idle")

	g.PointerDown(day(t, "2026-06-03"))
	g.PointerEnter(day(t, "2026-06-01"))

	start, end, ok := g.Highlight()
	require.True(t, ok)
	assert.Equal(t, day(t, "2026-06-01"), start)
	assert.Equal(t, day(t, "2026-06-03"), end)

	// Highlighting never mutates the store.
	assert.Equal(t, 0, s.Len())
}

func TestGestureDragThenClickSequence(t *testing.T) {
	// A fresh gesture cycle starts clean after each commit.
	s := NewStore()
	g := NewGesture(s)

	g.PointerDown(day(t, "2026-06-01"))
	g.PointerEnter(day(t, "2026-06-02"))
	g.PointerUp()
	require.Equal(t, 2, s.Len())

	g.PointerDown(day(t, "2026-06-01"))
	g.PointerUp()

	assert.False(t, s.IsBlocked(day(t, "2026-06-01")))
	assert.True(t, s.IsBlocked(day(t, "2026-06-02")))
}
