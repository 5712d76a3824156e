package leave

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCountBusinessDays(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{
			name:     "single weekday",
			start:    date(2024, time.January, 3), // Wednesday
			end:      date(2024, time.January, 3),
			expected: 1,
		},
		{
			name:     "single saturday",
			start:    date(2024, time.January, 6),
			end:      date(2024, time.January, 6),
			expected: 0,
		},
		{
			name:     "single sunday",
			start:    date(2024, time.January, 7),
			end:      date(2024, time.January, 7),
			expected: 0,
		},
		{
			name:     "monday through friday",
			start:    date(2024, time.January, 8),
			end:      date(2024, time.January, 12),
			expected: 5,
		},
		{
			name:     "weekend only",
			start:    date(2024, time.January, 6), // Saturday
			end:      date(2024, time.January, 7), // Sunday
			expected: 0,
		},
		{
			name:     "full calendar week",
			start:    date(2024, time.January, 8),  // Monday
			end:      date(2024, time.January, 14), // Sunday
			expected: 5,
		},
		{
			name:     "wednesday to next tuesday spans weekend",
			start:    date(2024, time.January, 10),
			end:      date(2024, time.January, 16),
			expected: 5,
		},
		{
			name:     "whole of january 2024",
			start:    date(2024, time.January, 1),
			end:      date(2024, time.January, 31),
			expected: 23,
		},
		{
			name:     "across month boundary",
			start:    date(2024, time.February, 28),
			end:      date(2024, time.March, 4), // leap year, spans weekend
			expected: 4,
		},
		{
			name:     "across year boundary",
			start:    date(2023, time.December, 29), // Friday
			end:      date(2024, time.January, 2),   // Tuesday
			expected: 3,
		},
		{
			name:     "full non-leap year",
			start:    date(2023, time.January, 1),
			end:      date(2023, time.December, 31),
			expected: 260,
		},
		{
			name:     "full leap year",
			start:    date(2024, time.January, 1),
			end:      date(2024, time.December, 31),
			expected: 262,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountBusinessDays(tt.start, tt.end)
			if err != nil {
				t.Fatalf("CountBusinessDays() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("CountBusinessDays() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestCountBusinessDays_RejectsReversedRange(t *testing.T) {
	_, err := CountBusinessDays(date(2024, time.January, 12), date(2024, time.January, 8))
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("CountBusinessDays() error = %v, want ErrInvalidDateRange", err)
	}
}

func TestCountBusinessDays_IgnoresClockAndZone(t *testing.T) {
	// Same calendar dates expressed with awkward clocks and zones must
	// count exactly like their midnight-UTC equivalents.
	tokyo := time.FixedZone("JST", 9*60*60)
	start := time.Date(2024, time.January, 8, 23, 59, 0, 0, tokyo)
	end := time.Date(2024, time.January, 12, 0, 1, 0, 0, tokyo)

	got, err := CountBusinessDays(start, end)
	if err != nil {
		t.Fatalf("CountBusinessDays() error = %v", err)
	}
	if got != 5 {
		t.Errorf("CountBusinessDays() = %d, want 5", got)
	}
}

func TestCountBusinessDays_LongRangeNoDrift(t *testing.T) {
	// Ten consecutive full weeks starting on a Monday: exactly 50.
	start := date(2024, time.January, 8)
	end := start.AddDate(0, 0, 10*7-1)

	got, err := CountBusinessDays(start, end)
	if err != nil {
		t.Fatalf("CountBusinessDays() error = %v", err)
	}
	if got != 50 {
		t.Errorf("CountBusinessDays() = %d, want 50", got)
	}
}
