package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ArmanWeb/bobatea/internal/domain"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (number, pickup_code, pickup_code_type, store_id, customer_id,
		                    total_amount, status, store_timezone, store_utc_offset, cutoff_hour,
		                    business_date, is_overnight, created_at_utc, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		order.Number, order.PickupCode, order.PickupCodeType, order.StoreID, order.CustomerID,
		order.TotalAmount, order.Status, order.StoreTimezone, order.StoreUTCOffset, order.CutoffHour,
		order.BusinessDate, order.IsOvernight, order.CreatedAtUTC, order.UpdatedAt, order.Version,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		itemQuery := `
			INSERT INTO order_items (order_id, product_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		err = tx.QueryRow(ctx, itemQuery,
			order.ID, order.Items[i].ProductID, order.Items[i].Name, order.Items[i].Quantity, order.Items[i].Price,
		).Scan(&order.Items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
		order.Items[i].OrderID = order.ID
	}

	logQuery := `
		INSERT INTO order_status_log (order_id, seq, status, actor, changed_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.Exec(ctx, logQuery, order.ID, 1, order.Status, "order-service", order.CreatedAtUTC)
	if err != nil {
		return fmt.Errorf("failed to log initial status: %w", err)
	}
	order.History = append(order.History, domain.TransitionLog{
		OrderID:   order.ID,
		Seq:       1,
		Status:    order.Status,
		Actor:     "order-service",
		ChangedAt: order.CreatedAtUTC,
	})

	return tx.Commit(ctx)
}

const orderColumns = `
	id, number, pickup_code, pickup_code_type, store_id, customer_id,
	total_amount, status, store_timezone, store_utc_offset, cutoff_hour,
	business_date::text, is_overnight, created_at_utc, updated_at,
	confirmed_at, confirmed_by, version
`

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindByPickupCode resolves a code within one store. Codes restart
// every business date, so the newest order wins: the code on a display
// or receipt always refers to the most recent order that carried it.
func (r *orderRepository) FindByPickupCode(ctx context.Context, storeID int64, code string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE store_id = $1 AND pickup_code = $2
		ORDER BY created_at_utc DESC
		LIMIT 1`
	return r.findOne(ctx, query, storeID, code)
}

func (r *orderRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	var order domain.Order
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&order.ID, &order.Number, &order.PickupCode, &order.PickupCodeType, &order.StoreID, &order.CustomerID,
		&order.TotalAmount, &order.Status, &order.StoreTimezone, &order.StoreUTCOffset, &order.CutoffHour,
		&order.BusinessDate, &order.IsOvernight, &order.CreatedAtUTC, &order.UpdatedAt,
		&order.ConfirmedAt, &order.ConfirmedBy, &order.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if err := r.loadItems(ctx, &order); err != nil {
		return nil, err
	}

	history, err := r.GetStatusHistory(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	for _, entry := range history {
		order.History = append(order.History, *entry)
	}

	return &order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `SELECT id, order_id, product_id, name, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

// UpdateStatus persists a validated transition. The version predicate
// serializes concurrent transitions for one order: the loser of a race
// matches zero rows and gets domain.ErrPersistenceConflict.
func (r *orderRepository) UpdateStatus(ctx context.Context, order *domain.Order, expectedVersion int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE orders
		SET status = $1, updated_at = $2, confirmed_at = $3, confirmed_by = $4, version = $5
		WHERE id = $6 AND version = $7
	`
	tag, err := tx.Exec(ctx, query,
		order.Status, order.UpdatedAt, order.ConfirmedAt, order.ConfirmedBy, order.Version,
		order.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPersistenceConflict
	}

	if len(order.History) > 0 {
		last := order.History[len(order.History)-1]
		logQuery := `
			INSERT INTO order_status_log (order_id, seq, status, actor, changed_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, logQuery, order.ID, last.Seq, last.Status, last.Actor, last.ChangedAt); err != nil {
			return fmt.Errorf("failed to append status log: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID int64) ([]*domain.TransitionLog, error) {
	query := `
		SELECT id, order_id, seq, status, actor, changed_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var logs []*domain.TransitionLog
	for rows.Next() {
		var entry domain.TransitionLog
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.Seq, &entry.Status, &entry.Actor, &entry.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}

// NextPickupSeq allocates a dense per-store, per-business-date counter
// in a single upsert, so two concurrent orders never share a code.
func (r *orderRepository) NextPickupSeq(ctx context.Context, storeID int64, businessDate string) (int, error) {
	query := `
		INSERT INTO pickup_code_counters (store_id, business_date, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (store_id, business_date)
		DO UPDATE SET seq = pickup_code_counters.seq + 1
		RETURNING seq
	`
	var seq int
	if err := r.db.QueryRow(ctx, query, storeID, businessDate).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate pickup sequence: %w", err)
	}
	return seq, nil
}
