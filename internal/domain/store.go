package domain

import "time"

// DefaultCutoffHour is the local wall-clock hour at which a store's
// operating day rolls over when the store has no explicit override.
const DefaultCutoffHour = 4

// Store identifies a physical location. The core treats Timezone as the
// source of truth; UTCOffset is a denormalized reporting cache that may
// go stale across DST changes and must never feed attribution logic.
type Store struct {
	ID         int64
	Name       string
	Timezone   string
	UTCOffset  int
	CutoffHour int
	Active     bool
	CreatedAt  time.Time
}
