package domain

import (
	"testing"
	"time"
)

func day(value string) time.Time {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDateRangeOverlaps(t *testing.T) {
	existing := DateRange{Start: day("2024-01-01"), End: day("2024-01-05")}

	cases := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{"identical", "2024-01-01", "2024-01-05", true},
		{"inside", "2024-01-02", "2024-01-03", true},
		{"covers", "2023-12-30", "2024-01-10", true},
		{"starts on end day", "2024-01-05", "2024-01-10", true},
		{"ends on start day", "2023-12-28", "2024-01-01", true},
		{"entirely before", "2023-12-20", "2023-12-31", false},
		{"entirely after", "2024-01-06", "2024-01-09", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := DateRange{Start: day(tc.start), End: day(tc.end)}
			if got := candidate.Overlaps(existing); got != tc.want {
				t.Fatalf("Overlaps(%s..%s) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
			if got := existing.Overlaps(candidate); got != tc.want {
				t.Fatalf("overlap is not symmetric for %s..%s", tc.start, tc.end)
			}
		})
	}
}

func TestNewDateRange(t *testing.T) {
	if _, err := NewDateRange(day("2024-02-01"), day("2024-02-03")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewDateRange(day("2024-02-03"), day("2024-02-03")); err != ErrInvalidDateRange {
		t.Fatalf("equal dates: got %v, want ErrInvalidDateRange", err)
	}
	if _, err := NewDateRange(day("2024-02-04"), day("2024-02-03")); err != ErrInvalidDateRange {
		t.Fatalf("reversed dates: got %v, want ErrInvalidDateRange", err)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-01")
	if err != nil || !got.Equal(day("2024-02-01")) {
		t.Fatalf("ParseDate(date) = %v, %v", got, err)
	}

	got, err = ParseDate("2024-02-01T22:15:00-05:00")
	if err != nil {
		t.Fatalf("ParseDate(rfc3339): %v", err)
	}
	if !got.Equal(day("2024-02-02")) {
		t.Fatalf("expected UTC date 2024-02-02, got %v", got)
	}

	for _, bad := range []string{"", "  ", "02/01/2024", "tomorrow"} {
		if _, err := ParseDate(bad); err != ErrInvalidDate {
			t.Fatalf("ParseDate(%q) error = %v, want ErrInvalidDate", bad, err)
		}
	}
}
