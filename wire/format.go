package wire

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Floating marks a time.Time as a wall-clock value without a zone.
// Floating values are scoped to a concrete zone only when written.
var Floating = time.FixedZone("Floating", 0)

// IsFloating reports whether t is a floating wall-clock value.
func IsFloating(t time.Time) bool {
	return t.Location() == Floating
}

// ToFloating keeps the wall clock of t and drops its zone.
func ToFloating(t time.Time) time.Time {
	return Rezone(t, Floating)
}

// Rezone reinterprets the wall clock of t in loc.
func Rezone(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

const (
	layoutUTC      = "2006-01-02T15:04:05.999999999Z07:00"
	layoutFloating = "2006-01-02T15:04:05.999999999"
	layoutDate     = "2006-01-02"
	layoutDateZone = "2006-01-02Z07:00"
)

// FormatDateTime formats t as xs:dateTime. Floating values are written
// without an offset; all others are written as UTC instants.
func FormatDateTime(t time.Time) string {
	if IsFloating(t) {
		return t.Format(layoutFloating)
	}
	return t.UTC().Format(layoutUTC)
}

// ParseDateTime parses xs:dateTime. Values without an offset come back
// floating; date-only values are midnight UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(layoutUTC, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(layoutFloating, s, Floating); err == nil {
		return t, nil
	}
	if t, err := ParseDate(s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: date-time %q", ErrInvalidValue, s)
}

// FormatDate formats the calendar date of t as xs:date.
func FormatDate(t time.Time) string {
	return t.Format(layoutDate)
}

// ParseDate parses xs:date, with or without an offset, to midnight UTC of
// that calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(layoutDate, s)
	if err != nil {
		t, err = time.Parse(layoutDateZone, s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidValue, s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Approximations used for the calendar components of xs:duration.
const (
	durationDay   = 24 * time.Hour
	durationMonth = 30 * durationDay
	durationYear  = 365 * durationDay
)

// FormatDuration formats d as xs:duration using days, hours, minutes and
// seconds.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}
	sb.WriteByte('P')
	if days := d / durationDay; days > 0 {
		sb.WriteString(strconv.FormatInt(int64(days), 10))
		sb.WriteByte('D')
		d -= days * durationDay
	}
	if d == 0 {
		return sb.String()
	}
	sb.WriteByte('T')
	if h := d / time.Hour; h > 0 {
		sb.WriteString(strconv.FormatInt(int64(h), 10))
		sb.WriteByte('H')
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		sb.WriteString(strconv.FormatInt(int64(m), 10))
		sb.WriteByte('M')
		d -= m * time.Minute
	}
	if d > 0 {
		sb.WriteString(strconv.FormatFloat(d.Seconds(), 'f', -1, 64))
		sb.WriteByte('S')
	}
	return sb.String()
}

// ParseDuration parses xs:duration. Years and months are approximated as
// 365 and 30 days.
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	s = strings.TrimSpace(s)
	bad := func() (time.Duration, error) {
		return 0, fmt.Errorf("%w: duration %q", ErrInvalidValue, orig)
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") || len(s) < 2 {
		return bad()
	}
	s = s[1:]

	var total time.Duration
	inTime := false
	seen := false
	for len(s) > 0 {
		if s[0] == 'T' {
			if inTime || len(s) == 1 {
				return bad()
			}
			inTime = true
			s = s[1:]
			continue
		}
		i := 0
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
			i++
		}
		if i == 0 || i == len(s) {
			return bad()
		}
		num, unit := s[:i], s[i]
		s = s[i+1:]
		seen = true

		if unit == 'S' && inTime {
			f, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return bad()
			}
			total += time.Duration(f * float64(time.Second))
			continue
		}
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			return bad()
		}
		var scale time.Duration
		switch {
		case !inTime && unit == 'Y':
			scale = durationYear
		case !inTime && unit == 'M':
			scale = durationMonth
		case !inTime && unit == 'W':
			scale = 7 * durationDay
		case !inTime && unit == 'D':
			scale = durationDay
		case inTime && unit == 'H':
			scale = time.Hour
		case inTime && unit == 'M':
			scale = time.Minute
		default:
			return bad()
		}
		total += time.Duration(n) * scale
	}
	if !seen {
		return bad()
	}
	if neg {
		total = -total
	}
	return total, nil
}

// FormatBool formats xs:boolean.
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}

// ParseBool parses xs:boolean ("true", "false", "1", "0").
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: boolean %q", ErrInvalidValue, s)
}

// FormatInt formats an integer.
func FormatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// ParseInt parses an integer.
func ParseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: integer %q", ErrInvalidValue, s)
	}
	return n, nil
}

// FormatFloat formats xs:double, including the special values.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseFloat parses xs:double, including the special values.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: double %q", ErrInvalidValue, s)
	}
	return f, nil
}

// FormatBase64 encodes b as xs:base64Binary.
func FormatBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// ParseBase64 decodes xs:base64Binary. Embedded whitespace is ignored.
func ParseBase64(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
	b, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrInvalidValue, err)
	}
	return b, nil
}
