package service

import (
	"strings"
	"time"

	"billing/pkg/pagination"
)

const dateLayout = "2006-01-02"

func pageOf(page, limit int) pagination.Params {
	return pagination.New(page, limit)
}

// parseDateRange turns inclusive YYYY-MM-DD bounds into a UTC half-open
// interval [from 00:00, to+1 00:00). Empty bounds stay nil.
func parseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from = strings.TrimSpace(from); from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.UTC)
		if err != nil {
			return nil, nil, invalid("from", "expected YYYY-MM-DD, got %q", from)
		}
		start = &t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := time.ParseInLocation(dateLayout, to, time.UTC)
		if err != nil {
			return nil, nil, invalid("to", "expected YYYY-MM-DD, got %q", to)
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, invalid("from", "from must not be after to")
	}
	return start, end, nil
}

// startOfDay truncates t to midnight UTC
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
