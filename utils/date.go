package utils

import (
    "errors"
    "time"
)

var ErrInvalidDateRange = errors.New("invalid date format, use YYYY-MM-DD")

// ResolvePeriod turns a named reporting period into a concrete [start, end]
// range. "custom" requires both dates; an unknown name falls back to today.
func ResolvePeriod(period, startDate, endDate string) (time.Time, time.Time, error) {
    now := time.Now().UTC()

    switch period {
    case "week":
        return now.AddDate(0, 0, -7), now, nil
    case "month":
        start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
        return start, now, nil
    case "custom":
        start, err := time.Parse("2006-01-02", startDate)
        if err != nil {
            return time.Time{}, time.Time{}, ErrInvalidDateRange
        }
        end, err := time.Parse("2006-01-02", endDate)
        if err != nil {
            return time.Time{}, time.Time{}, ErrInvalidDateRange
        }
        return start, end.AddDate(0, 0, 1).Add(-time.Second), nil
    default:
        start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
        end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
        return start, end, nil
    }
}
