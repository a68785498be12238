package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

var relativeDatePattern = regexp.MustCompile(`^in (\d+) (minute|hour|day|week|month)s?$`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
}

// ParseDate accepts Unix milliseconds, common absolute layouts and a few
// relative phrases ("today", "tomorrow", "next week", "in 3 days").
// Relative phrases resolve against now in its location.
func ParseDate(value string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	endOfDay := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
	}

	switch s {
	case "now":
		return now, nil
	case "today":
		return endOfDay(now), nil
	case "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), nil
	case "yesterday":
		return endOfDay(now.AddDate(0, 0, -1)), nil
	case "next week":
		return endOfDay(now.AddDate(0, 0, 7)), nil
	case "next month":
		return endOfDay(now.AddDate(0, 1, 0)), nil
	}

	if m := relativeDatePattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "minute":
			return now.Add(time.Duration(n) * time.Minute), nil
		case "hour":
			return now.Add(time.Duration(n) * time.Hour), nil
		case "day":
			return endOfDay(now.AddDate(0, 0, n)), nil
		case "week":
			return endOfDay(now.AddDate(0, 0, 7*n)), nil
		case "month":
			return endOfDay(now.AddDate(0, n, 0)), nil
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(value), now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognised date %q", value)
}
