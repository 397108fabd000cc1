package domain

import "time"

type SyncStatus string

const (
	SyncStatusPending  SyncStatus = "pending"
	SyncStatusApproved SyncStatus = "approved"
	SyncStatusRejected SyncStatus = "rejected"
)

// ShadowMenuEntry is a staging record for an externally sourced product
// price. It is never visible to customers; a price reaches the catalog
// only through an explicit approval (human, or automatic when the
// variance guard allows it).
type ShadowMenuEntry struct {
	ID              int64
	IikoProductID   string
	Name            string
	Price           float64
	PreviousPrice   *float64
	VariancePercent float64
	PriceAlert      bool
	SyncStatus      SyncStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	UpdatedAt       time.Time
}
