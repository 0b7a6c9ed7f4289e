package recurrence

import (
	"fmt"
	"time"

	"github.com/rbaliyan/ews/wire"
)

// Range bounds a recurrence. Dates are calendar dates; only the year,
// month and day of StartDate and EndDate are written.
type Range interface {
	XMLElement() string
	Start() time.Time
	Validate() error
	fields(emit func(name string, v any))
	setField(name, value string) error
}

const (
	fieldStartDate   = "StartDate"
	fieldEndDate     = "EndDate"
	fieldOccurrences = "NumberOfOccurrences"
)

var ranges = map[string]func() Range{
	"NoEndRecurrence":    func() Range { return &NoEndRange{} },
	"EndDateRecurrence":  func() Range { return &EndDateRange{} },
	"NumberedRecurrence": func() Range { return &NumberedRange{} },
}

func newRange(elem string) (Range, error) {
	create, ok := ranges[elem]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRange, elem)
	}
	return create(), nil
}

// NoEndRange repeats forever from StartDate.
type NoEndRange struct {
	StartDate time.Time
}

func (*NoEndRange) XMLElement() string { return "NoEndRecurrence" }

func (r *NoEndRange) Start() time.Time { return r.StartDate }

func (r *NoEndRange) Validate() error { return checkStart(r.StartDate) }

func (r *NoEndRange) fields(emit func(string, any)) {
	emit(fieldStartDate, wire.FormatDate(r.StartDate))
}

func (r *NoEndRange) setField(name, value string) error {
	return setStart(&r.StartDate, name, value)
}

// EndDateRange repeats from StartDate until EndDate inclusive.
type EndDateRange struct {
	StartDate time.Time
	EndDate   time.Time
}

func (*EndDateRange) XMLElement() string { return "EndDateRecurrence" }

func (r *EndDateRange) Start() time.Time { return r.StartDate }

func (r *EndDateRange) Validate() error {
	if err := checkStart(r.StartDate); err != nil {
		return err
	}
	if dateOf(r.EndDate).Before(dateOf(r.StartDate)) {
		return fmt.Errorf("%w: end date %s before start date %s",
			ErrInvalid, wire.FormatDate(r.EndDate), wire.FormatDate(r.StartDate))
	}
	return nil
}

func (r *EndDateRange) fields(emit func(string, any)) {
	emit(fieldStartDate, wire.FormatDate(r.StartDate))
	emit(fieldEndDate, wire.FormatDate(r.EndDate))
}

func (r *EndDateRange) setField(name, value string) error {
	if name == fieldEndDate {
		t, err := wire.ParseDate(value)
		if err != nil {
			return err
		}
		r.EndDate = t
		return nil
	}
	return setStart(&r.StartDate, name, value)
}

// NumberedRange repeats Occurrences times from StartDate.
type NumberedRange struct {
	StartDate   time.Time
	Occurrences int
}

func (*NumberedRange) XMLElement() string { return "NumberedRecurrence" }

func (r *NumberedRange) Start() time.Time { return r.StartDate }

func (r *NumberedRange) Validate() error {
	if err := checkStart(r.StartDate); err != nil {
		return err
	}
	if r.Occurrences < 1 {
		return fmt.Errorf("%w: %d occurrences, must be at least 1", ErrInvalid, r.Occurrences)
	}
	return nil
}

func (r *NumberedRange) fields(emit func(string, any)) {
	emit(fieldStartDate, wire.FormatDate(r.StartDate))
	emit(fieldOccurrences, r.Occurrences)
}

func (r *NumberedRange) setField(name, value string) error {
	if name == fieldOccurrences {
		return parseCount(&r.Occurrences, name, value)
	}
	return setStart(&r.StartDate, name, value)
}

func setStart(dst *time.Time, name, value string) error {
	if name != fieldStartDate {
		return nil
	}
	t, err := wire.ParseDate(value)
	if err != nil {
		return err
	}
	*dst = t
	return nil
}

func checkStart(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("%w: missing start date", ErrInvalid)
	}
	return nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
