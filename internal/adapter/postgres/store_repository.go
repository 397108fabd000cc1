package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ArmanWeb/bobatea/internal/domain"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

type storeRepository struct {
	db DB
}

func NewStoreRepository(db DB) interfaces.StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) FindByID(ctx context.Context, id int64) (*domain.Store, error) {
	query := `
		SELECT id, name, timezone, utc_offset, cutoff_hour, active, created_at
		FROM stores
		WHERE id = $1
	`
	var store domain.Store
	err := r.db.QueryRow(ctx, query, id).Scan(
		&store.ID, &store.Name, &store.Timezone, &store.UTCOffset,
		&store.CutoffHour, &store.Active, &store.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	return &store, nil
}

func (r *storeRepository) ListActive(ctx context.Context) ([]*domain.Store, error) {
	query := `
		SELECT id, name, timezone, utc_offset, cutoff_hour, active, created_at
		FROM stores
		WHERE active
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	var stores []*domain.Store
	for rows.Next() {
		var store domain.Store
		if err := rows.Scan(
			&store.ID, &store.Name, &store.Timezone, &store.UTCOffset,
			&store.CutoffHour, &store.Active, &store.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, &store)
	}
	return stores, rows.Err()
}

func (r *storeRepository) RefreshUTCOffset(ctx context.Context, storeID int64, offsetHours int) error {
	query := `UPDATE stores SET utc_offset = $1 WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, offsetHours, storeID); err != nil {
		return fmt.Errorf("failed to refresh utc offset: %w", err)
	}
	return nil
}
