package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ArmanWeb/bobatea/internal/domain"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

type menuRepository struct {
	db DB
}

func NewMenuRepository(db DB) interfaces.MenuRepository {
	return &menuRepository{db: db}
}

const menuColumns = `
	id, iiko_product_id, name, price, previous_price, variance_percent,
	price_alert, sync_status, approved_by, approved_at, updated_at
`

func (r *menuRepository) FindByProductID(ctx context.Context, productID string) (*domain.ShadowMenuEntry, error) {
	query := `SELECT ` + menuColumns + ` FROM shadow_menu_entries WHERE iiko_product_id = $1`

	var entry domain.ShadowMenuEntry
	err := r.db.QueryRow(ctx, query, productID).Scan(
		&entry.ID, &entry.IikoProductID, &entry.Name, &entry.Price, &entry.PreviousPrice,
		&entry.VariancePercent, &entry.PriceAlert, &entry.SyncStatus,
		&entry.ApprovedBy, &entry.ApprovedAt, &entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMenuEntryNotFound
		}
		return nil, fmt.Errorf("failed to load shadow menu entry: %w", err)
	}
	return &entry, nil
}

func (r *menuRepository) Upsert(ctx context.Context, entry *domain.ShadowMenuEntry) error {
	query := `
		INSERT INTO shadow_menu_entries (iiko_product_id, name, price, previous_price, variance_percent,
		                                 price_alert, sync_status, approved_by, approved_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (iiko_product_id)
		DO UPDATE SET name = EXCLUDED.name,
		              price = EXCLUDED.price,
		              previous_price = EXCLUDED.previous_price,
		              variance_percent = EXCLUDED.variance_percent,
		              price_alert = EXCLUDED.price_alert,
		              sync_status = EXCLUDED.sync_status,
		              approved_by = EXCLUDED.approved_by,
		              approved_at = EXCLUDED.approved_at,
		              updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		entry.IikoProductID, entry.Name, entry.Price, entry.PreviousPrice, entry.VariancePercent,
		entry.PriceAlert, entry.SyncStatus, entry.ApprovedBy, entry.ApprovedAt, entry.UpdatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert shadow menu entry: %w", err)
	}
	return nil
}

func (r *menuRepository) ListByStatus(ctx context.Context, status domain.SyncStatus) ([]*domain.ShadowMenuEntry, error) {
	query := `SELECT ` + menuColumns + ` FROM shadow_menu_entries WHERE sync_status = $1 ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list shadow menu entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ShadowMenuEntry
	for rows.Next() {
		var entry domain.ShadowMenuEntry
		if err := rows.Scan(
			&entry.ID, &entry.IikoProductID, &entry.Name, &entry.Price, &entry.PreviousPrice,
			&entry.VariancePercent, &entry.PriceAlert, &entry.SyncStatus,
			&entry.ApprovedBy, &entry.ApprovedAt, &entry.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shadow menu entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (r *menuRepository) SetApproval(ctx context.Context, productID string, status domain.SyncStatus, approver string) error {
	query := `
		UPDATE shadow_menu_entries
		SET sync_status = $1, approved_by = $2, approved_at = $3, updated_at = $3
		WHERE iiko_product_id = $4
	`
	tag, err := r.db.Exec(ctx, query, status, approver, time.Now().UTC(), productID)
	if err != nil {
		return fmt.Errorf("failed to set approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMenuEntryNotFound
	}
	return nil
}
