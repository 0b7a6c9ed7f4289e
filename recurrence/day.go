package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// DayOfWeek is a day or day group used by patterns. The zero value means
// unset.
type DayOfWeek int

const (
	Sunday DayOfWeek = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	// Day matches any day.
	Day
	// Weekday matches Monday through Friday.
	Weekday
	// WeekendDay matches Saturday and Sunday.
	WeekendDay
)

var dayNames = []string{"", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Day", "Weekday", "WeekendDay"}

// FromWeekday converts a time.Weekday.
func FromWeekday(d time.Weekday) DayOfWeek {
	return DayOfWeek(d) + Sunday
}

func (d DayOfWeek) String() string {
	if d < 0 || int(d) >= len(dayNames) {
		return fmt.Sprintf("DayOfWeek(%d)", int(d))
	}
	return dayNames[d]
}

// ParseDayOfWeek parses a day name.
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	for i := 1; i < len(dayNames); i++ {
		if dayNames[i] == s {
			return DayOfWeek(i), nil
		}
	}
	return 0, fmt.Errorf("%w: day of week %q", ErrInvalid, s)
}

func formatDays(days []DayOfWeek) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return strings.Join(names, " ")
}

func parseDays(s string) ([]DayOfWeek, error) {
	fields := strings.Fields(s)
	days := make([]DayOfWeek, 0, len(fields))
	for _, f := range fields {
		d, err := ParseDayOfWeek(f)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

// WeekIndex selects a week of the month for relative patterns.
type WeekIndex int

const (
	First WeekIndex = iota + 1
	Second
	Third
	Fourth
	Last
)

var weekIndexNames = []string{"", "First", "Second", "Third", "Fourth", "Last"}

func (i WeekIndex) String() string {
	if i < 0 || int(i) >= len(weekIndexNames) {
		return fmt.Sprintf("WeekIndex(%d)", int(i))
	}
	return weekIndexNames[i]
}

// ParseWeekIndex parses a week index name.
func ParseWeekIndex(s string) (WeekIndex, error) {
	for i := 1; i < len(weekIndexNames); i++ {
		if weekIndexNames[i] == s {
			return WeekIndex(i), nil
		}
	}
	return 0, fmt.Errorf("%w: day of week index %q", ErrInvalid, s)
}

func parseMonth(s string) (time.Month, error) {
	for m := time.January; m <= time.December; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: month %q", ErrInvalid, s)
}
