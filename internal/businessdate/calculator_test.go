package businessdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanWeb/bobatea/internal/timezone"
)

// mustUTC converts a Moscow wall-clock time to the UTC instant a client
// would have submitted.
func mustUTC(t *testing.T, local time.Time, zone string) time.Time {
	t.Helper()
	utc, err := timezone.ToUTC(local, zone)
	require.NoError(t, err)
	return utc
}

func TestAttributeBeforeCutoff(t *testing.T) {
	// Moscow-local 2024-01-10 03:30 is before the 04:00 cutoff, so the
	// order belongs to the previous operating day.
	local := time.Date(2024, 1, 10, 3, 30, 0, 0, time.UTC)
	utc := mustUTC(t, local, "Europe/Moscow")

	result, err := Attribute(utc, "Europe/Moscow", 4)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-09", result.BusinessDate)
	assert.True(t, result.IsOvernight)
	assert.Equal(t, 3, result.Local.Hour())
}

func TestAttributeAfterCutoff(t *testing.T) {
	local := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	utc := mustUTC(t, local, "Europe/Moscow")

	result, err := Attribute(utc, "Europe/Moscow", 4)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", result.BusinessDate)
	assert.False(t, result.IsOvernight)
}

func TestAttributeHourOnlyComparison(t *testing.T) {
	// 03:00 and 03:59 behave identically: only the hour component gates
	// the decision. This matches historical reporting behavior.
	for _, minute := range []int{0, 30, 59} {
		local := time.Date(2024, 1, 10, 3, minute, 0, 0, time.UTC)
		utc := mustUTC(t, local, "Europe/Moscow")

		result, err := Attribute(utc, "Europe/Moscow", 4)
		require.NoError(t, err)
		assert.True(t, result.IsOvernight, "minute %d", minute)
		assert.Equal(t, "2024-01-09", result.BusinessDate, "minute %d", minute)
	}

	// The first minute of the cutoff hour is already the new day.
	local := time.Date(2024, 1, 10, 4, 0, 0, 0, time.UTC)
	result, err := Attribute(mustUTC(t, local, "Europe/Moscow"), "Europe/Moscow", 4)
	require.NoError(t, err)
	assert.False(t, result.IsOvernight)
	assert.Equal(t, "2024-01-10", result.BusinessDate)
}

func TestAttributeSweepAllHours(t *testing.T) {
	const cutoff = 4
	for hour := 0; hour < 24; hour++ {
		local := time.Date(2024, 5, 20, hour, 15, 0, 0, time.UTC)
		utc := mustUTC(t, local, "Asia/Vladivostok")

		result, err := Attribute(utc, "Asia/Vladivostok", cutoff)
		require.NoError(t, err)

		if hour < cutoff {
			assert.True(t, result.IsOvernight, "hour %d", hour)
			assert.Equal(t, "2024-05-19", result.BusinessDate, "hour %d", hour)
		} else {
			assert.False(t, result.IsOvernight, "hour %d", hour)
			assert.Equal(t, "2024-05-20", result.BusinessDate, "hour %d", hour)
		}
	}
}

func TestAttributeTimezoneSensitivity(t *testing.T) {
	// The same UTC instant lands on the same business date for Moscow
	// (local 04:00, exactly at cutoff) and Vladivostok (local 11:00) —
	// verified independently, not inferred from one another.
	utc := time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC)

	moscow, err := Attribute(utc, "Europe/Moscow", 4)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", moscow.BusinessDate)
	assert.False(t, moscow.IsOvernight)

	vladivostok, err := Attribute(utc, "Asia/Vladivostok", 4)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", vladivostok.BusinessDate)
	assert.False(t, vladivostok.IsOvernight)

	// Shifted two hours earlier, the two stores diverge: Moscow is at
	// 02:00 (overnight, previous day), Vladivostok at 09:00.
	utc = time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC)

	moscow, err = Attribute(utc, "Europe/Moscow", 4)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-09", moscow.BusinessDate)
	assert.True(t, moscow.IsOvernight)

	vladivostok, err = Attribute(utc, "Asia/Vladivostok", 4)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", vladivostok.BusinessDate)
	assert.False(t, vladivostok.IsOvernight)
}

func TestAttributeIdempotent(t *testing.T) {
	utc := time.Date(2024, 1, 10, 0, 45, 0, 0, time.UTC)

	first, err := Attribute(utc, "Europe/Moscow", 4)
	require.NoError(t, err)
	second, err := Attribute(utc, "Europe/Moscow", 4)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAttributeErrors(t *testing.T) {
	now := time.Now().UTC()

	_, err := Attribute(now, "Nowhere/Nothing", 4)
	assert.ErrorIs(t, err, timezone.ErrInvalidTimezone)

	_, err = Attribute(now, "Europe/Moscow", -1)
	assert.Error(t, err)

	_, err = Attribute(now, "Europe/Moscow", 24)
	assert.Error(t, err)
}
