package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

func TestParseRelativeTime(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{"plural months mixed case", "3 MoNtHs AgO", fixedNow.AddDate(0, -3, 0), false},
		{"singular week", "1 Week Ago", fixedNow.AddDate(0, 0, -7), false},
		{"days upper case", "10 DAYS AGO", fixedNow.AddDate(0, 0, -10), false},
		{"hours", "5 hours ago", fixedNow.Add(-5 * time.Hour), false},
		{"missing ago", "2 years", time.Time{}, true},
		{"bad unit", "4 decades ago", time.Time{}, true},
		{"non-numeric value", "one year ago", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseDuration(t *testing.T) {
	const day = 24 * time.Hour

	tests := []struct {
		name      string
		input     string
		want      time.Duration
		expectErr bool
	}{
		{"go syntax", "36h", 36 * time.Hour, false},
		{"1 minute", "1 minute", time.Minute, false},
		{"7 days", "7 days", 7 * day, false},
		{"4 weeks", "4 weeks", 28 * day, false},
		{"1 month approx", "1 month", 30 * day, false},
		{"2 years approx", "2 years", 730 * day, false},
		{"mixed case", "3 MoNtHs", 90 * day, false},
		{"extra space", " 1  day ", day, false},
		{"negative go syntax", "-5h", 0, true},
		{"missing unit", "3", 0, true},
		{"invalid unit", "3 decades", 0, true},
		{"zero quantity", "0 days", 0, true},
		{"empty string", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.expectErr {
				assert.Error(t, err, "Expected an error for input: %q", tt.input)
			} else if assert.NoError(t, err, "Did not expect an error for input: %q", tt.input) {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input     string
		want      int64
		expectErr bool
	}{
		{"86400", 86400, false},
		{"1 day", 86400, false},
		{"1 week", 604800, false},
		{"90m", 5400, false},
		{"0", 0, true},
		{"-60", 0, true},
		{"500ms", 0, true},
		{"weekly", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePeriod(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCutoff(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      int64
		expectErr bool
	}{
		{"empty means no floor", "", 0, false},
		{"epoch seconds", "1700000000", 1700000000, false},
		{"rfc3339", "2025-01-01T00:00:00Z", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Unix(), false},
		{"date only", "2024-06-30", time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC).Unix(), false},
		{"relative", "2 weeks ago", fixedNow.AddDate(0, 0, -14).Unix(), false},
		{"garbage", "last tuesday", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCutoff(tt.input, fixedNow)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// FuzzParseDuration makes sure arbitrary input never panics and never yields a non-positive duration.
func FuzzParseDuration(f *testing.F) {
	for _, seed := range []string{"1 day", "3 months", "720h", "", "0 days", "-1h", "99999999999 years"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		d, err := ParseDuration(s)
		if err == nil && d <= 0 {
			t.Fatalf("ParseDuration(%q) = %v without error", s, d)
		}
	})
}
