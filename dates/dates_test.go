package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var moscow = time.FixedZone("MSK", 3*60*60)

// fixedNormalizer returns a normalizer whose clock is pinned to now.
func fixedNormalizer(now time.Time) *Normalizer {
	return New(moscow, func() time.Time { return now })
}

// TestParse_ExplicitFormats verifies each explicit layout yields the encoded
// calendar date and time
func TestParse_ExplicitFormats(t *testing.T) {
	n := fixedNormalizer(time.Date(2025, 10, 10, 12, 0, 0, 0, moscow))

	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-10-07", time.Date(2025, 10, 7, 0, 0, 0, 0, moscow)},
		{"07.10.2025", time.Date(2025, 10, 7, 0, 0, 0, 0, moscow)},
		{"7.10.2025", time.Date(2025, 10, 7, 0, 0, 0, 0, moscow)},
		{"07.10.25", time.Date(2025, 10, 7, 0, 0, 0, 0, moscow)},
		{"07.10.2025 14:35", time.Date(2025, 10, 7, 14, 35, 0, 0, moscow)},
		{"2025-10-07 09:15:30", time.Date(2025, 10, 7, 9, 15, 30, 0, moscow)},
		{"  2025-10-07  ", time.Date(2025, 10, 7, 0, 0, 0, 0, moscow)},
	}

	for _, tc := range cases {
		got := n.Parse(tc.in)
		assert.True(t, tc.want.Equal(got), "%q: want %s, got %s", tc.in, tc.want, got)
	}
}

// TestParse_UTCSuffix verifies Z-suffixed timestamps are read as UTC
func TestParse_UTCSuffix(t *testing.T) {
	n := fixedNormalizer(time.Date(2025, 10, 10, 12, 0, 0, 0, moscow))

	got := n.Parse("2025-10-07T09:00:00Z")
	assert.True(t, time.Date(2025, 10, 7, 9, 0, 0, 0, time.UTC).Equal(got))

	got = n.Parse("2025-10-07T09:00:00.123Z")
	assert.True(t, time.Date(2025, 10, 7, 9, 0, 0, 123000000, time.UTC).Equal(got))
}

// TestParse_RussianMonth verifies the genitive month-name path
func TestParse_RussianMonth(t *testing.T) {
	n := fixedNormalizer(time.Date(2025, 10, 10, 12, 0, 0, 0, moscow))

	got := n.Parse("07 октября 2025")
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.October, got.Month())
	assert.Equal(t, 7, got.Day())

	got = n.Parse("3 Марта, 2024")
	assert.True(t, time.Date(2024, 3, 3, 0, 0, 0, 0, moscow).Equal(got))
}

// TestParse_FallsBackToNow verifies relative, empty and garbage input all
// yield the current time
func TestParse_FallsBackToNow(t *testing.T) {
	now := time.Date(2025, 10, 10, 12, 0, 0, 0, moscow)
	n := fixedNormalizer(now)

	for _, in := range []string{"", "сегодня в 10:00", "2 часа назад", "вчера", "5 minutes ago", "not a date", "32 октября 2025"} {
		assert.True(t, now.Equal(n.Parse(in)), "input %q", in)
	}
}

// TestIsRecent_Window verifies the inclusive seven-day window
func TestIsRecent_Window(t *testing.T) {
	n := fixedNormalizer(time.Date(2025, 10, 10, 12, 0, 0, 0, moscow))

	assert.True(t, n.IsRecent("2025-10-10", 7), "today")
	assert.True(t, n.IsRecent("03.10.2025", 7), "exactly 7 days before")
	assert.False(t, n.IsRecent("02.10.2025", 7), "8 days before")
	assert.False(t, n.IsRecent("11.10.2025", 7), "future date")
	assert.True(t, n.IsRecent("05 октября 2025", 7))
	assert.False(t, n.IsRecent("05 октября 2024", 7))
}

// TestIsRecent_Fallbacks verifies relative phrases pass and unparseable text
// does not
func TestIsRecent_Fallbacks(t *testing.T) {
	n := fixedNormalizer(time.Date(2025, 10, 10, 12, 0, 0, 0, moscow))

	assert.False(t, n.IsRecent("", 7))
	assert.False(t, n.IsRecent("   ", 7))
	assert.False(t, n.IsRecent("давным-давно", 7))
	assert.True(t, n.IsRecent("Сегодня", 7))
	assert.True(t, n.IsRecent("15 минут назад", 7))
	assert.True(t, n.IsRecent("Вчера, 18:20", 7))
	assert.True(t, n.IsRecent("an hour ago", 7))
}

// TestIsRecent_CustomWindow verifies the window parameter is honoured
func TestIsRecent_CustomWindow(t *testing.T) {
	n := fixedNormalizer(time.Date(2025, 10, 10, 12, 0, 0, 0, moscow))

	assert.False(t, n.IsRecent("2025-10-08", 1))
	assert.True(t, n.IsRecent("2025-10-09", 1))
	assert.True(t, n.IsRecent("2025-10-10", 0))
}

// TestDaysBetween verifies calendar-day arithmetic ignores time of day
func TestDaysBetween(t *testing.T) {
	from := time.Date(2025, 10, 9, 23, 59, 0, 0, moscow)
	to := time.Date(2025, 10, 10, 0, 1, 0, 0, moscow)
	require.Equal(t, 1, DaysBetween(from, to))
	assert.Equal(t, -1, DaysBetween(to, from))
	assert.Equal(t, 0, DaysBetween(from, from))
}

// TestPackageLevelHelpers verifies the default normalizer is usable
func TestPackageLevelHelpers(t *testing.T) {
	assert.False(t, IsRecent("", DefaultWindowDays))
	assert.True(t, IsRecent(time.Now().Format("2006-01-02"), DefaultWindowDays))
	assert.WithinDuration(t, time.Now(), Parse(""), time.Minute)
}
