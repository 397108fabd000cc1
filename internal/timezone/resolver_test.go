package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLocal(t *testing.T) {
	utc := time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC)

	moscow, err := ToLocal(utc, "Europe/Moscow")
	require.NoError(t, err)
	assert.Equal(t, 4, moscow.Hour())
	assert.Equal(t, 10, moscow.Day())

	vladivostok, err := ToLocal(utc, "Asia/Vladivostok")
	require.NoError(t, err)
	assert.Equal(t, 11, vladivostok.Hour())
}

func TestToLocalInvalidZone(t *testing.T) {
	_, err := ToLocal(time.Now(), "Mars/Olympus_Mons")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTimezone)

	_, err = ToLocal(time.Now(), "")
	assert.ErrorIs(t, err, ErrInvalidTimezone)
}

func TestRoundTrip(t *testing.T) {
	zones := []string{"Europe/Moscow", "Asia/Vladivostok", "Europe/Berlin", "Asia/Almaty"}
	instants := []time.Time{
		time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 15, 22, 30, 45, 0, time.UTC),
		// Around the EU spring-forward boundary (2024-03-31 01:00 UTC).
		time.Date(2024, 3, 31, 0, 59, 59, 0, time.UTC),
		time.Date(2024, 3, 31, 1, 0, 1, 0, time.UTC),
		// Around the fall-back boundary (2024-10-27 01:00 UTC); 00:30
		// lands in the repeated local hour.
		time.Date(2024, 10, 27, 0, 30, 0, 0, time.UTC),
		time.Date(2024, 10, 27, 2, 30, 0, 0, time.UTC),
	}

	for _, zone := range zones {
		for _, instant := range instants {
			local, err := ToLocal(instant, zone)
			require.NoError(t, err)

			back, err := ToUTC(local, zone)
			require.NoError(t, err)
			assert.True(t, back.Equal(instant), "round trip mismatch for %s at %s: got %s", zone, instant, back)
		}
	}
}

func TestRoundTripAmbiguousHour(t *testing.T) {
	// Berlin repeats 02:00-03:00 local on 2024-10-27; both UTC instants
	// that map onto 02:30 local must survive the round trip.
	first := time.Date(2024, 10, 27, 0, 30, 0, 0, time.UTC)  // 02:30 CEST
	second := time.Date(2024, 10, 27, 1, 30, 0, 0, time.UTC) // 02:30 CET

	for _, instant := range []time.Time{first, second} {
		local, err := ToLocal(instant, "Europe/Berlin")
		require.NoError(t, err)
		assert.Equal(t, 2, local.Hour())
		assert.Equal(t, 30, local.Minute())

		back, err := ToUTC(local, "Europe/Berlin")
		require.NoError(t, err)
		assert.True(t, back.Equal(instant), "ambiguous-hour round trip for %s: got %s", instant, back)
	}
}

func TestToUTCBareWallClock(t *testing.T) {
	// A wall clock built in some other location is reinterpreted in the
	// named zone.
	wall := time.Date(2024, 1, 10, 4, 0, 0, 0, time.UTC)

	utc, err := ToUTC(wall, "Europe/Moscow")
	require.NoError(t, err)
	assert.True(t, utc.Equal(time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC)))
}

func TestOffsetHours(t *testing.T) {
	winter := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	summer := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)

	offset, err := OffsetHours("Europe/Moscow", winter)
	require.NoError(t, err)
	assert.Equal(t, 3, offset)

	offset, err = OffsetHours("Asia/Vladivostok", winter)
	require.NoError(t, err)
	assert.Equal(t, 10, offset)

	// Berlin observes DST; the offset must follow the instant.
	offset, err = OffsetHours("Europe/Berlin", winter)
	require.NoError(t, err)
	assert.Equal(t, 1, offset)

	offset, err = OffsetHours("Europe/Berlin", summer)
	require.NoError(t, err)
	assert.Equal(t, 2, offset)

	_, err = OffsetHours("Not/AZone", winter)
	assert.ErrorIs(t, err, ErrInvalidTimezone)
}
