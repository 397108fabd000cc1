// Package businessdate attributes an order instant to the operating day
// of its store. A single business spans stores across up to nine IANA
// timezones; each store closes its books at a local cutoff hour, not at
// midnight UTC.
package businessdate

import (
	"fmt"
	"time"

	"github.com/ArmanWeb/bobatea/internal/timezone"
)

// DateLayout is the calendar-date wire format of BusinessDate.
const DateLayout = "2006-01-02"

// Attribution is the result of attributing one order instant.
type Attribution struct {
	BusinessDate string
	IsOvernight  bool
	Local        time.Time
}

// Attribute derives the business date for an order placed at orderUTC
// in a store running the named timezone with the given cutoff hour.
//
// Orders before the cutoff hour belong to the previous operating day.
// The comparison is on the local hour component only: 03:00 and 03:59
// behave identically under a 04:00 cutoff. This matches historical
// reports and must not be "fixed" to a minute-precise comparison.
//
// The function is idempotent; given the same snapshotted inputs it
// re-derives the same attribution at any later time.
func Attribute(orderUTC time.Time, tzName string, cutoffHour int) (Attribution, error) {
	if cutoffHour < 0 || cutoffHour > 23 {
		return Attribution{}, fmt.Errorf("cutoff hour %d out of range 0-23", cutoffHour)
	}

	local, err := timezone.ToLocal(orderUTC, tzName)
	if err != nil {
		return Attribution{}, err
	}

	date := local
	overnight := local.Hour() < cutoffHour
	if overnight {
		date = local.AddDate(0, 0, -1)
	}

	return Attribution{
		BusinessDate: date.Format(DateLayout),
		IsOvernight:  overnight,
		Local:        local,
	}, nil
}
