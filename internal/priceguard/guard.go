// Package priceguard gates automatic propagation of externally sourced
// menu prices. A price jump above the threshold blocks the sync and
// forces human review; the rule has no configuration escape hatch.
package priceguard

import (
	"errors"
	"fmt"
	"math"
)

// AlertThresholdPercent is the variance above which a price update must
// stay pending. The boundary is exclusive: exactly 30% does not alert.
const AlertThresholdPercent = 30.0

var ErrInvalidPrice = errors.New("invalid price")

// Evaluation is the guard's verdict on one incoming price.
type Evaluation struct {
	VariancePercent float64
	Alert           bool
	// FirstSeen marks products with no previous price on record.
	// Variance is 0 for them, but callers may still require review.
	FirstSeen bool
}

// Evaluate computes the absolute percentage change between newPrice and
// previousPrice. previousPrice == nil means the product has never been
// priced; zero means the last price was free, and both count as zero
// variance rather than a division fault.
//
// Evaluate is pure: identical inputs yield identical output and no side
// effects, so it may run concurrently and repeatedly.
func Evaluate(newPrice float64, previousPrice *float64) (Evaluation, error) {
	if math.IsNaN(newPrice) || math.IsInf(newPrice, 0) {
		return Evaluation{}, fmt.Errorf("%w: non-finite value", ErrInvalidPrice)
	}
	if newPrice < 0 {
		return Evaluation{}, fmt.Errorf("%w: negative value %.2f", ErrInvalidPrice, newPrice)
	}

	eval := Evaluation{FirstSeen: previousPrice == nil}
	if previousPrice == nil || *previousPrice == 0 {
		return eval, nil
	}

	eval.VariancePercent = math.Abs((newPrice-*previousPrice) / *previousPrice) * 100
	eval.Alert = eval.VariancePercent > AlertThresholdPercent
	return eval, nil
}
