package civil

import (
	"testing"
	"time"
)

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
		iso     string
	}{
		{"-03:00", false, "-03:00"},
		{"+05:30", false, "+05:30"},
		{"+00:00", false, "+00:00"},
		{"03:00", true, ""},
		{"-3:00", true, ""},
		{"-25:00", true, ""},
		{"garbage", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			o, err := ParseOffset(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if o.String() != tt.iso {
				t.Errorf("String() = %q, want %q", o.String(), tt.iso)
			}
		})
	}
}

func TestToUTC(t *testing.T) {
	o := MustOffset("-03:00")

	// 13:00 local at -03:00 is 16:00 UTC, on every date.
	got := o.ToUTC(2025, time.August, 15, 13, 0)
	want := time.Date(2025, time.August, 15, 16, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ToUTC = %s, want %s", got, want)
	}

	// Crossing midnight: 22:30 local is 01:30 UTC the next day.
	got = o.ToUTC(2025, time.December, 31, 22, 30)
	want = time.Date(2026, time.January, 1, 1, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ToUTC across midnight = %s, want %s", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	o := MustOffset("+05:30")
	utc := o.ToUTC(2025, time.March, 3, 9, 15)

	local := o.Local(utc)
	if local.Hour() != 9 || local.Minute() != 15 {
		t.Errorf("Local() = %02d:%02d, want 09:15", local.Hour(), local.Minute())
	}
	if local.Day() != 3 {
		t.Errorf("Local() day = %d, want 3", local.Day())
	}
}

func TestISO(t *testing.T) {
	o := MustOffset("-03:00")
	utc := time.Date(2025, time.August, 15, 16, 0, 0, 0, time.UTC)

	got := o.ISO(utc)
	want := "2025-08-15T13:00:00-03:00"
	if got != want {
		t.Errorf("ISO() = %q, want %q", got, want)
	}
}

func TestISOIndependentOfHostZone(t *testing.T) {
	// The same instant formats identically no matter how it was constructed.
	o := MustOffset("-03:00")
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	utc := time.Date(2025, time.August, 15, 16, 0, 0, 0, time.UTC)
	inNY := utc.In(ny)
	if o.ISO(utc) != o.ISO(inNY) {
		t.Errorf("ISO depends on the incoming location: %q vs %q", o.ISO(utc), o.ISO(inNY))
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in       string
		wantErr  bool
		wantHour int
		wantMin  int
	}{
		{"13:00", false, 13, 0},
		{"09:05", false, 9, 5},
		{"23:59", false, 23, 59},
		{"24:00", true, 0, 0},
		{"12:60", true, 0, 0},
		{"1300", true, 0, 0},
		{"9:00", true, 0, 0},
		{"", true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hh, mm, err := ParseClock(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hh != tt.wantHour || mm != tt.wantMin {
				t.Errorf("ParseClock(%q) = %d:%d, want %d:%d", tt.in, hh, mm, tt.wantHour, tt.wantMin)
			}
		})
	}
}

func TestClockMinutes(t *testing.T) {
	got, err := ClockMinutes("13:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 810 {
		t.Errorf("ClockMinutes = %d, want 810", got)
	}
}
