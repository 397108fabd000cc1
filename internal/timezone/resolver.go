// Package timezone converts instants between UTC and store-local time
// using the IANA tz database, DST rules included. It is pure and does
// no I/O beyond the embedded zone data lookup.
package timezone

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimezone is returned for zone names unknown to the IANA
// database. Callers must surface it; silently defaulting to UTC would
// misattribute every order of the affected store.
var ErrInvalidTimezone = errors.New("invalid timezone")

func load(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty zone name", ErrInvalidTimezone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

// ToLocal converts a UTC instant to wall-clock time in the named zone.
func ToLocal(utc time.Time, name string) (time.Time, error) {
	loc, err := load(name)
	if err != nil {
		return time.Time{}, err
	}
	return utc.In(loc), nil
}

// ToUTC converts local back to the UTC instant. A value produced by
// ToLocal still carries its instant, so it converts exactly; for any
// instant x, ToUTC(ToLocal(x, tz), tz) == x, including inside the
// repeated hour of a fall-back transition. A bare wall-clock value in
// some other location is reinterpreted component-wise in the named
// zone, which is inherently ambiguous during that hour.
func ToUTC(local time.Time, name string) (time.Time, error) {
	loc, err := load(name)
	if err != nil {
		return time.Time{}, err
	}
	if local.Location().String() == loc.String() {
		return local.UTC(), nil
	}
	return time.Date(
		local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(),
		loc,
	).UTC(), nil
}

// OffsetHours returns the zone's UTC offset in whole hours at the given
// instant. Zones with fractional offsets are truncated toward zero;
// none of the supported regions use them, and the value is only a
// reporting cache (attribution always goes through ToLocal).
func OffsetHours(name string, at time.Time) (int, error) {
	loc, err := load(name)
	if err != nil {
		return 0, err
	}
	_, offsetSeconds := at.In(loc).Zone()
	return offsetSeconds / 3600, nil
}
