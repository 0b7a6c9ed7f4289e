package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"
)

func TestDurationRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "PT0S"},
		{"minutes", 15 * time.Minute, "PT15M"},
		{"hours and minutes", 90 * time.Minute, "PT1H30M"},
		{"days", 48 * time.Hour, "P2D"},
		{"mixed", 26*time.Hour + 5*time.Second, "P1DT2H5S"},
		{"fractional seconds", 1500 * time.Millisecond, "PT1.5S"},
		{"negative", -8 * time.Hour, "-PT8H"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDuration(tt.d)
			if got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
			back, err := ParseDuration(got)
			if err != nil {
				t.Fatalf("ParseDuration(%q): %v", got, err)
			}
			if back != tt.d {
				t.Errorf("round trip = %v, want %v", back, tt.d)
			}
		})
	}
}

func TestParseDurationCalendarUnits(t *testing.T) {
	got, err := ParseDuration("P1Y2M1W")
	if err != nil {
		t.Fatal(err)
	}
	want := 365*24*time.Hour + 60*24*time.Hour + 7*24*time.Hour
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, s := range []string{"", "P", "PT", "1H", "PT1X", "P1H", "PT1.5M", "P1DT"} {
		t.Run(s, func(t *testing.T) {
			if _, err := ParseDuration(s); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("ParseDuration(%q) error = %v, want ErrInvalidValue", s, err)
			}
		})
	}
}

func TestDateTime(t *testing.T) {
	t.Run("UTC instant", func(t *testing.T) {
		loc := time.FixedZone("X", 2*3600)
		in := time.Date(2024, 3, 1, 10, 30, 0, 0, loc)
		s := FormatDateTime(in)
		if s != "2024-03-01T08:30:00Z" {
			t.Errorf("got %q", s)
		}
		back, err := ParseDateTime(s)
		if err != nil {
			t.Fatal(err)
		}
		if !back.Equal(in) {
			t.Errorf("round trip %v != %v", back, in)
		}
	})

	t.Run("floating keeps wall clock", func(t *testing.T) {
		in := time.Date(2024, 3, 1, 10, 30, 15, 0, Floating)
		s := FormatDateTime(in)
		if s != "2024-03-01T10:30:15" {
			t.Errorf("got %q", s)
		}
		back, err := ParseDateTime(s)
		if err != nil {
			t.Fatal(err)
		}
		if !IsFloating(back) || !back.Equal(in) {
			t.Errorf("round trip %v != %v", back, in)
		}
	})

	t.Run("date only", func(t *testing.T) {
		back, err := ParseDateTime("2024-03-01")
		if err != nil {
			t.Fatal(err)
		}
		if !back.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("got %v", back)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := ParseDateTime("yesterday"); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v", err)
		}
	})
}

func TestParseDateWithOffset(t *testing.T) {
	got, err := ParseDate("2024-12-31-08:00")
	if err != nil {
		t.Fatal(err)
	}
	if FormatDate(got) != "2024-12-31" {
		t.Errorf("got %v", got)
	}
}

func TestScalarCodecs(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		for in, want := range map[string]bool{"true": true, "false": false, "1": true, "0": false, "TRUE": true} {
			got, err := ParseBool(in)
			if err != nil || got != want {
				t.Errorf("ParseBool(%q) = %v, %v", in, got, err)
			}
		}
		if _, err := ParseBool("yes"); err == nil {
			t.Error("expected error for yes")
		}
	})

	t.Run("int", func(t *testing.T) {
		for _, n := range []int64{0, -1, 42, math.MaxInt64, math.MinInt64} {
			got, err := ParseInt(FormatInt(n))
			if err != nil || got != n {
				t.Errorf("round trip %d = %d, %v", n, got, err)
			}
		}
	})

	t.Run("float", func(t *testing.T) {
		for _, f := range []float64{0, 1.5, -2.25, 1e300, math.Inf(1), math.Inf(-1)} {
			got, err := ParseFloat(FormatFloat(f))
			if err != nil || got != f {
				t.Errorf("round trip %v = %v, %v", f, got, err)
			}
		}
		got, err := ParseFloat(FormatFloat(math.NaN()))
		if err != nil || !math.IsNaN(got) {
			t.Errorf("NaN round trip = %v, %v", got, err)
		}
	})

	t.Run("base64", func(t *testing.T) {
		for _, b := range [][]byte{{}, {0}, []byte("hello"), bytes.Repeat([]byte{0xff, 0x00}, 100)} {
			got, err := ParseBase64(FormatBase64(b))
			if err != nil || !bytes.Equal(got, b) {
				t.Errorf("round trip %x = %x, %v", b, got, err)
			}
		}
		got, err := ParseBase64("aGVs\n bG8=")
		if err != nil || string(got) != "hello" {
			t.Errorf("whitespace tolerant decode = %q, %v", got, err)
		}
	})
}
