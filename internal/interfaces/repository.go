package interfaces

import (
	"context"

	"github.com/ArmanWeb/bobatea/internal/domain"
)

// Интерфейсы Репозиториев (Adapter/Postgres)
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	// FindByPickupCode resolves a code within one store; codes restart
	// per business date, so the most recent match wins.
	FindByPickupCode(ctx context.Context, storeID int64, code string) (*domain.Order, error)
	// UpdateStatus persists the new status, version and appended history
	// entry in one transaction. It returns domain.ErrPersistenceConflict
	// when the row no longer carries expectedVersion.
	UpdateStatus(ctx context.Context, order *domain.Order, expectedVersion int) error
	GetStatusHistory(ctx context.Context, orderID int64) ([]*domain.TransitionLog, error)
	// NextPickupSeq allocates the next dense pickup-code number for the
	// store and business date pair.
	NextPickupSeq(ctx context.Context, storeID int64, businessDate string) (int, error)
}

type StoreRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Store, error)
	ListActive(ctx context.Context) ([]*domain.Store, error)
	// RefreshUTCOffset rewrites the denormalized reporting offset; the
	// core never reads it back.
	RefreshUTCOffset(ctx context.Context, storeID int64, offsetHours int) error
}

type MenuRepository interface {
	FindByProductID(ctx context.Context, productID string) (*domain.ShadowMenuEntry, error)
	Upsert(ctx context.Context, entry *domain.ShadowMenuEntry) error
	ListByStatus(ctx context.Context, status domain.SyncStatus) ([]*domain.ShadowMenuEntry, error)
	SetApproval(ctx context.Context, productID string, status domain.SyncStatus, approver string) error
}
