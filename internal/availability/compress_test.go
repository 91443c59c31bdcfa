package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) Day {
	t.Helper()
	d, err := ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestCompressEmpty(t *testing.T) {
	assert.Nil(t, Compress(nil))
	assert.Nil(t, Compress(map[Day]SourceTag{}))
}

func TestCompressMergesConsecutiveSameSource(t *testing.T) {
	m := map[Day]SourceTag{
		day(t, "2026-03-01"): ManualTag(),
		day(t, "2026-03-02"): ManualTag(),
		day(t, "2026-03-03"): ManualTag(),
	}

	ranges := Compress(m)
	require.Len(t, ranges, 1)
	assert.Equal(t, day(t, "2026-03-01"), ranges[0].Start)
	assert.Equal(t, day(t, "2026-03-03"), ranges[0].End)
	assert.Equal(t, ManualTag(), ranges[0].Source)
}

func TestCompressSplitsOnGap(t *testing.T) {
	m := map[Day]SourceTag{
		day(t, "2026-03-01"): ManualTag(),
		day(t, "2026-03-02"): ManualTag(),
		day(t, "2026-03-05"): ManualTag(),
	}

	ranges := Compress(m)
	require.Len(t, ranges, 2)
	assert.Equal(t, day(t, "2026-03-02"), ranges[0].End)
	assert.Equal(t, day(t, "2026-03-05"), ranges[1].Start)
}

func TestCompressSplitsOnSourceChange(t *testing.T) {
	// Consecutive days with different sources must not merge.
	m := map[Day]SourceTag{
		day(t, "2026-03-01"): ManualTag(),
		day(t, "2026-03-02"): FeedTag("airbnb"),
		day(t, "2026-03-03"): FeedTag("airbnb"),
	}

	ranges := Compress(m)
	require.Len(t, ranges, 2)
	assert.Equal(t, ManualTag(), ranges[0].Source)
	assert.Equal(t, FeedTag("airbnb"), ranges[1].Source)
	assert.Equal(t, day(t, "2026-03-02"), ranges[1].Start)
	assert.Equal(t, day(t, "2026-03-03"), ranges[1].End)
}

func TestCompressSpansMonthBoundary(t *testing.T) {
	m := map[Day]SourceTag{
		day(t, "2026-01-31"): ManualTag(),
		day(t, "2026-02-01"): ManualTag(),
	}

	ranges := Compress(m)
	require.Len(t, ranges, 1)
	assert.Equal(t, day(t, "2026-01-31"), ranges[0].Start)
	assert.Equal(t, day(t, "2026-02-01"), ranges[0].End)
}

func TestCompressNoAdjacentEqualSources(t *testing.T) {
	m := map[Day]SourceTag{
		day(t, "2026-03-01"): ManualTag(),
		day(t, "2026-03-02"): FeedTag("vrbo"),
		day(t, "2026-03-03"): ManualTag(),
		day(t, "2026-03-05"): ManualTag(),
		day(t, "2026-03-06"): ManualTag(),
		day(t, "2026-03-09"): FeedTag("vrbo"),
	}

	ranges := Compress(m)
	for i := 1; i < len(ranges); i++ {
		prev, cur := ranges[i-1], ranges[i]
		assert.True(t, prev.End.Before(cur.Start), "ranges must be sorted and disjoint")
		if cur.Start == prev.End.Next() {
			assert.NotEqual(t, prev.Source, cur.Source,
				"adjacent ranges with equal sources must have been merged")
		}
	}
}

func TestCompressExpandRoundTrip(t *testing.T) {
	m := map[Day]SourceTag{
		day(t, "2026-03-01"): ManualTag(),
		day(t, "2026-03-02"): ManualTag(),
		day(t, "2026-03-03"): FeedTag("airbnb"),
		day(t, "2026-03-04"): FeedTag("airbnb"),
		day(t, "2026-03-08"): FeedTag("google"),
		day(t, "2026-03-10"): ManualTag(),
		day(t, "2026-12-31"): ManualTag(),
		day(t, "2027-01-01"): ManualTag(),
	}

	assert.Equal(t, m, Expand(Compress(m)))
}

func TestExpandSingleDayRange(t *testing.T) {
	ranges := []BlockedRange{
		{Start: day(t, "2026-03-01"), End: day(t, "2026-03-01"), Source: ManualTag()},
	}

	m := Expand(ranges)
	require.Len(t, m, 1)
	assert.Equal(t, ManualTag(), m[day(t, "2026-03-01")])
}
