package record

import (
	"fmt"
	"time"
)

// DateInfo holds the calendar fields derived from a record's creation time.
type DateInfo struct {
	Year      int    `json:"year" bson:"year" yaml:"year"`
	Month     int    `json:"month" bson:"month" yaml:"month"`
	MonthName string `json:"monthName" bson:"monthName" yaml:"month_name"`
	Week      int    `json:"week" bson:"week" yaml:"week"`
	Day       int    `json:"day" bson:"day" yaml:"day"`
	DayOfWeek int    `json:"dayOfWeek" bson:"dayOfWeek" yaml:"day_of_week"`
	DayName   string `json:"dayName" bson:"dayName" yaml:"day_name"`
	// FullDate is the local calendar date formatted as YYYY-MM-DD.
	FullDate string `json:"fullDate" bson:"fullDate" yaml:"full_date"`
}

// NewDateInfo derives the calendar fields of t in loc.
func NewDateInfo(t time.Time, loc *time.Location) DateInfo {
	if loc != nil {
		t = t.In(loc)
	}
	return DateInfo{
		Year:      t.Year(),
		Month:     int(t.Month()),
		MonthName: t.Month().String(),
		Week:      WeekOfYear(t),
		Day:       t.Day(),
		DayOfWeek: int(t.Weekday()),
		DayName:   t.Weekday().String(),
		FullDate:  t.Format(time.DateOnly),
	}
}

// WeekOfYear returns the Sunday-start week of t's year, where the week
// containing January 1 is week 1. The result is between 1 and 54.
func WeekOfYear(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return (t.YearDay()-1+int(jan1.Weekday()))/7 + 1
}

// ValidDate reports whether year, month and day form an existing calendar date.
func ValidDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Day() == day && int(d.Month()) == month
}

// ParseFullDate parses a YYYY-MM-DD date.
func ParseFullDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time.Parse(%q) > %w", s, err)
	}
	return t, nil
}
