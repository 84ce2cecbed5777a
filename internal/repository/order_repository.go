package repository

import (
	"context"
	"database/sql"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

// OrderRepo encapsulates database operations for orders.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo constructs an OrderRepo given a DB handle.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *OrderRepo) DB() *sql.DB { return r.db }

const orderColumns = `id, reference, user_id, event_id, tier_id, promo_code_id, quantity,
	subtotal_cents, discount_cents, total_cents, currency, status, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (model.Order, error) {
	var (
		o       model.Order
		promoID sql.NullInt64
	)
	err := row.Scan(&o.ID, &o.Reference, &o.UserID, &o.EventID, &o.TierID, &promoID,
		&o.Quantity, &o.SubtotalCents, &o.DiscountCents, &o.TotalCents, &o.Currency,
		&o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return model.Order{}, err
	}
	if promoID.Valid {
		v := uint64(promoID.Int64)
		o.PromoCodeID = &v
	}
	return o, nil
}

// CreateTx inserts an order within the provided transaction and
// populates its ID.  It runs in the same transaction as the ledger
// reservation so a failed insert rolls the reservation back with it.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders
		   (reference, user_id, event_id, tier_id, promo_code_id, quantity,
		    subtotal_cents, discount_cents, total_cents, currency, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		o.Reference, o.UserID, o.EventID, o.TierID, nullableUint(o.PromoCodeID), o.Quantity,
		o.SubtotalCents, o.DiscountCents, o.TotalCents, o.Currency, o.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// GetByID fetches a single order.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ? LIMIT 1`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return model.Order{}, ErrOrderNotFound
	}
	return o, err
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CancelTx flips a confirmed order to cancelled within the provided
// transaction.  Cancelling an already-cancelled order reports
// ErrConflict so the capacity release cannot run twice.
func (r *OrderRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
		model.OrderCancelled, id, model.OrderConfirmed)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
