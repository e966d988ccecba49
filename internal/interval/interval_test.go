package interval

import (
	"errors"
	"testing"
	"time"
)

func TestTimeToMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"00:00:00", 0},
		{"09:00", 540},
		{"09:00:00", 540},
		{"09:30:15", 570}, // seconds truncated
		{"23:59:59", 1439},
	}
	for _, c := range cases {
		got, err := TimeToMinutes(c.in)
		if err != nil {
			t.Fatalf("TimeToMinutes(%q): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("TimeToMinutes(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestTimeToMinutes_Invalid(t *testing.T) {
	for _, in := range []string{"", "9", "24:00", "12:60", "12:00:60", "ab:cd", "12:00:00:00", "-1:00"} {
		_, err := TimeToMinutes(in)
		if err == nil {
			t.Fatalf("TimeToMinutes(%q): expected error, got nil", in)
		}
		if !errors.Is(err, ErrInvalidClock) {
			t.Fatalf("TimeToMinutes(%q): error %v is not ErrInvalidClock", in, err)
		}
	}
}

func TestMinutesToTime(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{540, "09:00"},
		{570, "09:30"},
		{1439, "23:59"},
	}
	for _, c := range cases {
		if got := MinutesToTime(c.in); got != c.want {
			t.Fatalf("MinutesToTime(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"disjoint", 540, 570, 600, 630, false},
		{"adjacent end-to-start", 540, 570, 570, 600, false},
		{"adjacent start-to-end", 570, 600, 540, 570, false},
		{"partial", 555, 585, 540, 570, true},
		{"contained", 550, 560, 540, 570, true},
		{"containing", 540, 570, 550, 560, true},
		{"identical", 540, 570, 540, 570, true},
	}
	for _, c := range cases {
		if got := Overlaps(c.aStart, c.aEnd, c.bStart, c.bEnd); got != c.want {
			t.Fatalf("%s: Overlaps(%d,%d,%d,%d) = %v, want %v", c.name, c.aStart, c.aEnd, c.bStart, c.bEnd, got, c.want)
		}
	}
}

func TestOverlapsTime(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	if OverlapsTime(at(10, 0), at(10, 30), at(10, 30), at(11, 0)) {
		t.Fatal("adjacent intervals must not overlap")
	}
	if !OverlapsTime(at(10, 15), at(10, 45), at(10, 0), at(10, 30)) {
		t.Fatal("partially overlapping intervals must overlap")
	}
}
