package stats

import (
	"time"

	"beautyfood-backend/domain"
)

// WeekStart returns the Monday on or before t. Sunday walks back six days.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return t, nil
}

func parseMonth(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(domain.MonthLayout, s, loc)
	if err != nil {
		return time.Time{}, domain.ErrInvalidMonth
	}
	return t, nil
}
