package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Pattern is the repeating part of a recurrence. The concrete patterns
// in this package are the only implementations.
type Pattern interface {
	// XMLElement is the pattern element name, also used as the JSON type.
	XMLElement() string
	Validate() error
	fields(emit func(name string, v any))
	setField(name, value string) error
}

// Field names shared by patterns.
const (
	fieldInterval       = "Interval"
	fieldDaysOfWeek     = "DaysOfWeek"
	fieldFirstDayOfWeek = "FirstDayOfWeek"
	fieldDayOfMonth     = "DayOfMonth"
	fieldDayOfWeekIndex = "DayOfWeekIndex"
	fieldMonth          = "Month"
)

var patterns = map[string]func() Pattern{
	"DailyRecurrence":           func() Pattern { return &Daily{} },
	"WeeklyRecurrence":          func() Pattern { return &Weekly{} },
	"AbsoluteMonthlyRecurrence": func() Pattern { return &AbsoluteMonthly{} },
	"RelativeMonthlyRecurrence": func() Pattern { return &RelativeMonthly{} },
	"AbsoluteYearlyRecurrence":  func() Pattern { return &AbsoluteYearly{} },
	"RelativeYearlyRecurrence":  func() Pattern { return &RelativeYearly{} },
	"DailyRegeneration":         func() Pattern { return &DailyRegeneration{} },
	"WeeklyRegeneration":        func() Pattern { return &WeeklyRegeneration{} },
	"MonthlyRegeneration":       func() Pattern { return &MonthlyRegeneration{} },
	"YearlyRegeneration":        func() Pattern { return &YearlyRegeneration{} },
}

func newPattern(elem string) (Pattern, error) {
	create, ok := patterns[elem]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPattern, elem)
	}
	return create(), nil
}

// Daily repeats every Interval days.
type Daily struct {
	Interval int
}

func (*Daily) XMLElement() string { return "DailyRecurrence" }

func (p *Daily) Validate() error { return checkInterval(p.Interval) }

func (p *Daily) fields(emit func(string, any)) { emit(fieldInterval, p.Interval) }

func (p *Daily) setField(name, value string) error {
	return setInterval(&p.Interval, name, value)
}

// Weekly repeats on DaysOfWeek every Interval weeks.
type Weekly struct {
	Interval   int
	DaysOfWeek []DayOfWeek
	// FirstDayOfWeek is written only when set.
	FirstDayOfWeek DayOfWeek
}

func (*Weekly) XMLElement() string { return "WeeklyRecurrence" }

func (p *Weekly) Validate() error {
	if err := checkInterval(p.Interval); err != nil {
		return err
	}
	if len(p.DaysOfWeek) == 0 {
		return fmt.Errorf("%w: weekly pattern without days", ErrInvalid)
	}
	return nil
}

func (p *Weekly) fields(emit func(string, any)) {
	emit(fieldInterval, p.Interval)
	emit(fieldDaysOfWeek, formatDays(p.DaysOfWeek))
	if p.FirstDayOfWeek != 0 {
		emit(fieldFirstDayOfWeek, p.FirstDayOfWeek.String())
	}
}

func (p *Weekly) setField(name, value string) error {
	var err error
	switch name {
	case fieldDaysOfWeek:
		p.DaysOfWeek, err = parseDays(value)
	case fieldFirstDayOfWeek:
		p.FirstDayOfWeek, err = ParseDayOfWeek(value)
	default:
		return setInterval(&p.Interval, name, value)
	}
	return err
}

// AbsoluteMonthly repeats on a day of the month every Interval months.
type AbsoluteMonthly struct {
	Interval   int
	DayOfMonth int
}

func (*AbsoluteMonthly) XMLElement() string { return "AbsoluteMonthlyRecurrence" }

func (p *AbsoluteMonthly) Validate() error {
	if err := checkInterval(p.Interval); err != nil {
		return err
	}
	return checkDayOfMonth(p.DayOfMonth)
}

func (p *AbsoluteMonthly) fields(emit func(string, any)) {
	emit(fieldInterval, p.Interval)
	emit(fieldDayOfMonth, p.DayOfMonth)
}

func (p *AbsoluteMonthly) setField(name, value string) error {
	if name == fieldDayOfMonth {
		return parseCount(&p.DayOfMonth, name, value)
	}
	return setInterval(&p.Interval, name, value)
}

// RelativeMonthly repeats on e.g. the second Tuesday every Interval months.
type RelativeMonthly struct {
	Interval       int
	DayOfWeek      DayOfWeek
	DayOfWeekIndex WeekIndex
}

func (*RelativeMonthly) XMLElement() string { return "RelativeMonthlyRecurrence" }

func (p *RelativeMonthly) Validate() error {
	if err := checkInterval(p.Interval); err != nil {
		return err
	}
	return checkRelative(p.DayOfWeek, p.DayOfWeekIndex)
}

func (p *RelativeMonthly) fields(emit func(string, any)) {
	emit(fieldInterval, p.Interval)
	emit(fieldDaysOfWeek, p.DayOfWeek.String())
	emit(fieldDayOfWeekIndex, p.DayOfWeekIndex.String())
}

func (p *RelativeMonthly) setField(name, value string) error {
	var err error
	switch name {
	case fieldDaysOfWeek:
		p.DayOfWeek, err = ParseDayOfWeek(value)
	case fieldDayOfWeekIndex:
		p.DayOfWeekIndex, err = ParseWeekIndex(value)
	default:
		return setInterval(&p.Interval, name, value)
	}
	return err
}

// AbsoluteYearly repeats on a fixed date every year.
type AbsoluteYearly struct {
	DayOfMonth int
	Month      time.Month
}

func (*AbsoluteYearly) XMLElement() string { return "AbsoluteYearlyRecurrence" }

func (p *AbsoluteYearly) Validate() error {
	if err := checkDayOfMonth(p.DayOfMonth); err != nil {
		return err
	}
	return checkMonth(p.Month)
}

func (p *AbsoluteYearly) fields(emit func(string, any)) {
	emit(fieldDayOfMonth, p.DayOfMonth)
	emit(fieldMonth, p.Month.String())
}

func (p *AbsoluteYearly) setField(name, value string) error {
	var err error
	switch name {
	case fieldDayOfMonth:
		err = parseCount(&p.DayOfMonth, name, value)
	case fieldMonth:
		p.Month, err = parseMonth(value)
	}
	return err
}

// RelativeYearly repeats on e.g. the last Friday of March every year.
type RelativeYearly struct {
	DayOfWeek      DayOfWeek
	DayOfWeekIndex WeekIndex
	Month          time.Month
}

func (*RelativeYearly) XMLElement() string { return "RelativeYearlyRecurrence" }

func (p *RelativeYearly) Validate() error {
	if err := checkRelative(p.DayOfWeek, p.DayOfWeekIndex); err != nil {
		return err
	}
	return checkMonth(p.Month)
}

func (p *RelativeYearly) fields(emit func(string, any)) {
	emit(fieldDaysOfWeek, p.DayOfWeek.String())
	emit(fieldDayOfWeekIndex, p.DayOfWeekIndex.String())
	emit(fieldMonth, p.Month.String())
}

func (p *RelativeYearly) setField(name, value string) error {
	var err error
	switch name {
	case fieldDaysOfWeek:
		p.DayOfWeek, err = ParseDayOfWeek(value)
	case fieldDayOfWeekIndex:
		p.DayOfWeekIndex, err = ParseWeekIndex(value)
	case fieldMonth:
		p.Month, err = parseMonth(value)
	}
	return err
}

// Regeneration patterns repeat a task Interval units after the previous
// occurrence is completed.
type (
	DailyRegeneration   struct{ Interval int }
	WeeklyRegeneration  struct{ Interval int }
	MonthlyRegeneration struct{ Interval int }
	YearlyRegeneration  struct{ Interval int }
)

func (*DailyRegeneration) XMLElement() string { return "DailyRegeneration" }

func (p *DailyRegeneration) Validate() error { return checkInterval(p.Interval) }

func (p *DailyRegeneration) fields(emit func(string, any)) { emit(fieldInterval, p.Interval) }

func (p *DailyRegeneration) setField(name, value string) error {
	return setInterval(&p.Interval, name, value)
}

func (*WeeklyRegeneration) XMLElement() string { return "WeeklyRegeneration" }

func (p *WeeklyRegeneration) Validate() error { return checkInterval(p.Interval) }

func (p *WeeklyRegeneration) fields(emit func(string, any)) { emit(fieldInterval, p.Interval) }

func (p *WeeklyRegeneration) setField(name, value string) error {
	return setInterval(&p.Interval, name, value)
}

func (*MonthlyRegeneration) XMLElement() string { return "MonthlyRegeneration" }

func (p *MonthlyRegeneration) Validate() error { return checkInterval(p.Interval) }

func (p *MonthlyRegeneration) fields(emit func(string, any)) { emit(fieldInterval, p.Interval) }

func (p *MonthlyRegeneration) setField(name, value string) error {
	return setInterval(&p.Interval, name, value)
}

func (*YearlyRegeneration) XMLElement() string { return "YearlyRegeneration" }

func (p *YearlyRegeneration) Validate() error { return checkInterval(p.Interval) }

func (p *YearlyRegeneration) fields(emit func(string, any)) { emit(fieldInterval, p.Interval) }

func (p *YearlyRegeneration) setField(name, value string) error {
	return setInterval(&p.Interval, name, value)
}

// setInterval handles the Interval field and ignores any other name.
func setInterval(dst *int, name, value string) error {
	if name != fieldInterval {
		return nil
	}
	return parseCount(dst, name, value)
}

func parseCount(dst *int, name, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s %q", ErrInvalid, name, value)
	}
	*dst = n
	return nil
}

func checkInterval(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: interval %d, must be at least 1", ErrInvalid, n)
	}
	return nil
}

func checkDayOfMonth(n int) error {
	if n < 1 || n > 31 {
		return fmt.Errorf("%w: day of month %d, must be 1..31", ErrInvalid, n)
	}
	return nil
}

func checkMonth(m time.Month) error {
	if m < time.January || m > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalid, m)
	}
	return nil
}

func checkRelative(d DayOfWeek, i WeekIndex) error {
	if d < Sunday || d > WeekendDay {
		return fmt.Errorf("%w: day of week %d", ErrInvalid, d)
	}
	if i < First || i > Last {
		return fmt.Errorf("%w: day of week index %d", ErrInvalid, i)
	}
	return nil
}
