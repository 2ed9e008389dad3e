package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayLabels names the menu days, Monday first
var DayLabels = [7]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// Week is an ISO-8601 week: weeks start on Monday and week 1 holds the year's first Thursday
type Week struct {
	Year   int `json:"year"`
	Number int `json:"number"`
}

// WeekOf returns the ISO week containing the calendar date of t
func WeekOf(t time.Time) Week {
	year, week := t.ISOWeek()
	return Week{Year: year, Number: week}
}

// Key formats the week as "2024-W1"
func (w Week) Key() string {
	return fmt.Sprintf("%d-W%d", w.Year, w.Number)
}

func (w Week) String() string {
	return w.Key()
}

// Monday returns midnight UTC of the week's first day
func (w Week) Monday() time.Time {
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(w.Number-1)*7)
}

// Day returns the date of day i, Monday being 0
func (w Week) Day(i int) time.Time {
	return w.Monday().AddDate(0, 0, i)
}

// Next returns the following week
func (w Week) Next() Week {
	return WeekOf(w.Monday().AddDate(0, 0, 7))
}

// Prev returns the preceding week
func (w Week) Prev() Week {
	return WeekOf(w.Monday().AddDate(0, 0, -7))
}

// WeeksInYear returns 52 or 53
func WeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// ParseWeekKey parses "2024-W1" or "2024-W01"
func ParseWeekKey(key string) (Week, error) {
	yearPart, weekPart, ok := strings.Cut(strings.TrimSpace(key), "-W")
	if !ok {
		return Week{}, fmt.Errorf("parse week key %q: want YEAR-WNUMBER", key)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return Week{}, fmt.Errorf("parse week key %q: bad year: %w", key, err)
	}
	number, err := strconv.Atoi(weekPart)
	if err != nil {
		return Week{}, fmt.Errorf("parse week key %q: bad week: %w", key, err)
	}
	if number < 1 || number > WeeksInYear(year) {
		return Week{}, fmt.Errorf("parse week key %q: week %d out of range", key, number)
	}
	return Week{Year: year, Number: number}, nil
}
