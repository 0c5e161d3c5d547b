package utils

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestResolvePeriodToday(t *testing.T) {
    start, end, err := ResolvePeriod("today", "", "")
    require.NoError(t, err)

    now := time.Now().UTC()
    assert.Equal(t, now.Day(), start.Day())
    assert.Equal(t, 0, start.Hour())
    assert.Equal(t, 23, end.Hour())
    assert.True(t, end.After(start))
}

func TestResolvePeriodWeek(t *testing.T) {
    start, end, err := ResolvePeriod("week", "", "")
    require.NoError(t, err)

    days := end.Sub(start).Hours() / 24
    assert.InDelta(t, 7, days, 0.01)
}

func TestResolvePeriodMonth(t *testing.T) {
    start, _, err := ResolvePeriod("month", "", "")
    require.NoError(t, err)

    assert.Equal(t, 1, start.Day())
    assert.Equal(t, 0, start.Hour())
}

func TestResolvePeriodCustom(t *testing.T) {
    start, end, err := ResolvePeriod("custom", "2024-01-01", "2024-01-31")
    require.NoError(t, err)

    assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
    // The end date is inclusive through the last second of the day.
    assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), end)
}

func TestResolvePeriodCustomInvalidDates(t *testing.T) {
    _, _, err := ResolvePeriod("custom", "01/01/2024", "2024-01-31")
    assert.ErrorIs(t, err, ErrInvalidDateRange)

    _, _, err = ResolvePeriod("custom", "2024-01-01", "")
    assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestResolvePeriodUnknownFallsBackToToday(t *testing.T) {
    start, end, err := ResolvePeriod("fortnight", "", "")
    require.NoError(t, err)
    assert.Equal(t, start.Day(), end.Day())
}
