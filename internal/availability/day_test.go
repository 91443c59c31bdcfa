package availability

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayRejectsGarbage(t *testing.T) {
	_, err := ParseDay("not-a-date")
	assert.Error(t, err)

	_, err = ParseDay("2026-13-01")
	assert.Error(t, err)
}

func TestDayOrderingAndArithmetic(t *testing.T) {
	a := day(t, "2026-02-28")
	b := a.Next()

	assert.Equal(t, day(t, "2026-03-01"), b, "2026 is not a leap year")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, a, b.AddDays(-1))
}

func TestDaysBetween(t *testing.T) {
	days := DaysBetween(day(t, "2026-07-01"), day(t, "2026-07-03"))
	require.Len(t, days, 3)
	assert.Equal(t, day(t, "2026-07-02"), days[1])

	assert.Len(t, DaysBetween(day(t, "2026-07-01"), day(t, "2026-07-01")), 1)
	assert.Nil(t, DaysBetween(day(t, "2026-07-03"), day(t, "2026-07-01")))
}

func TestDayJSONRoundTrip(t *testing.T) {
	d := day(t, "2026-07-04")

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-07-04"`, string(data))

	var decoded Day
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, d, decoded)
}

func TestSourceTagStringRoundTrip(t *testing.T) {
	for _, tag := range []SourceTag{ManualTag(), FeedTag("airbnb")} {
		parsed, err := ParseSourceTag(tag.String())
		require.NoError(t, err)
		assert.Equal(t, tag, parsed)
	}

	_, err := ParseSourceTag("feed:")
	assert.Error(t, err)
	_, err = ParseSourceTag("bogus")
	assert.Error(t, err)
}
