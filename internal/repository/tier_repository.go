package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
	"github.com/kamalraji/plan-it-together-sub006/internal/ticketing"
)

// sqlExecer is satisfied by both *sql.DB and *sql.Tx so ledger
// operations can run standalone or inside a caller-owned transaction.
type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TierRepo encapsulates database operations for ticket_tiers.  It is
// also the production implementation of ticketing.Ledger: sold counts
// are only ever moved through a single conditional UPDATE, so the
// read-check-write sequence is atomic at the storage layer and
// concurrent reserves can never oversell a tier.
type TierRepo struct {
	db *sql.DB
}

// NewTierRepo constructs a TierRepo given a DB handle.
func NewTierRepo(db *sql.DB) *TierRepo { return &TierRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *TierRepo) DB() *sql.DB { return r.db }

const tierColumns = `id, event_id, name, price_cents, currency, quantity, sold_count,
	sale_starts_at, sale_ends_at, is_active, sort_order, created_at, updated_at`

func scanTier(row interface{ Scan(...interface{}) error }) (model.TicketTier, error) {
	var (
		t         model.TicketTier
		quantity  sql.NullInt64
		saleStart sql.NullTime
		saleEnd   sql.NullTime
	)
	err := row.Scan(&t.ID, &t.EventID, &t.Name, &t.PriceCents, &t.Currency, &quantity,
		&t.SoldCount, &saleStart, &saleEnd, &t.IsActive, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.TicketTier{}, err
	}
	if quantity.Valid {
		q := int(quantity.Int64)
		t.Quantity = &q
	}
	if saleStart.Valid {
		v := saleStart.Time
		t.SaleStartsAt = &v
	}
	if saleEnd.Valid {
		v := saleEnd.Time
		t.SaleEndsAt = &v
	}
	return t, nil
}

// Create inserts a tier and populates its ID.  SoldCount always
// starts at zero regardless of what the caller passed.
func (r *TierRepo) Create(ctx context.Context, t *model.TicketTier) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ticket_tiers
		   (event_id, name, price_cents, currency, quantity, sale_starts_at, sale_ends_at, is_active, sort_order)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		t.EventID, t.Name, t.PriceCents, t.Currency, nullableInt(t.Quantity),
		nullableTime(t.SaleStartsAt), nullableTime(t.SaleEndsAt), t.IsActive, t.SortOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.SoldCount = 0
	return nil
}

// GetByID fetches a single tier.
func (r *TierRepo) GetByID(ctx context.Context, id uint64) (model.TicketTier, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tierColumns+` FROM ticket_tiers WHERE id = ? LIMIT 1`, id)
	t, err := scanTier(row)
	if err == sql.ErrNoRows {
		return model.TicketTier{}, ErrTierNotFound
	}
	return t, err
}

// ListByEvent returns all tiers of an event ordered by sort_order, the
// same order the coordinator uses when promoting tier-agnostic
// waitlist entries.
func (r *TierRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.TicketTier, error) {
	return r.listByEvent(ctx, r.db, eventID, false)
}

// ListByEventTx is ListByEvent inside a caller-owned transaction with
// the rows locked, so a promotion batch observes stable sold counts.
func (r *TierRepo) ListByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) ([]model.TicketTier, error) {
	return r.listByEvent(ctx, tx, eventID, true)
}

type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *TierRepo) listByEvent(ctx context.Context, q sqlQuerier, eventID uint64, forUpdate bool) ([]model.TicketTier, error) {
	query := `SELECT ` + tierColumns + ` FROM ticket_tiers WHERE event_id = ? ORDER BY sort_order, id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tiers []model.TicketTier
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

// Update rewrites the organizer-editable columns of a tier owned by
// the given event.  sold_count is deliberately untouched; only the
// ledger moves it.
func (r *TierRepo) Update(ctx context.Context, t model.TicketTier) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ticket_tiers
		 SET name=?, price_cents=?, currency=?, quantity=?, sale_starts_at=?, sale_ends_at=?, is_active=?, sort_order=?
		 WHERE id=? AND event_id=?`,
		t.Name, t.PriceCents, t.Currency, nullableInt(t.Quantity),
		nullableTime(t.SaleStartsAt), nullableTime(t.SaleEndsAt), t.IsActive, t.SortOrder,
		t.ID, t.EventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTierNotFound
	}
	return nil
}

// Deactivate retires a tier.  Tiers are never hard-deleted while
// historical orders reference them.
func (r *TierRepo) Deactivate(ctx context.Context, eventID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ticket_tiers SET is_active = 0 WHERE id = ? AND event_id = ?`, id, eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTierNotFound
	}
	return nil
}

// Reserve implements ticketing.Ledger against the database.  The
// capacity check and the increment happen in one statement, so two
// concurrent reserves for the last unit serialize on the row and
// exactly one wins.
func (r *TierRepo) Reserve(ctx context.Context, tierID uint64, quantity int) (ticketing.Reservation, error) {
	return reserveOn(ctx, r.db, tierID, quantity)
}

// Release implements ticketing.Ledger; sold_count never drops below
// zero.
func (r *TierRepo) Release(ctx context.Context, tierID uint64, quantity int) error {
	return releaseOn(ctx, r.db, tierID, quantity)
}

// TxLedger returns a ticketing.Ledger whose operations run inside the
// given transaction.  Promotion handlers use it so the reservation and
// the waitlist mutation commit or roll back together.
func (r *TierRepo) TxLedger(tx *sql.Tx) ticketing.Ledger { return txLedger{tx: tx} }

type txLedger struct{ tx *sql.Tx }

func (l txLedger) Reserve(ctx context.Context, tierID uint64, quantity int) (ticketing.Reservation, error) {
	return reserveOn(ctx, l.tx, tierID, quantity)
}

func (l txLedger) Release(ctx context.Context, tierID uint64, quantity int) error {
	return releaseOn(ctx, l.tx, tierID, quantity)
}

func reserveOn(ctx context.Context, ex sqlExecer, tierID uint64, quantity int) (ticketing.Reservation, error) {
	if quantity < 1 {
		return ticketing.Reservation{}, ErrConflict
	}
	res, err := ex.ExecContext(ctx,
		`UPDATE ticket_tiers
		 SET sold_count = sold_count + ?
		 WHERE id = ? AND (quantity IS NULL OR sold_count + ? <= quantity)`,
		quantity, tierID, quantity)
	if err != nil {
		return ticketing.Reservation{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ticketing.Reservation{}, err
	}
	if n == 1 {
		return ticketing.Reservation{TierID: tierID, Quantity: quantity}, nil
	}

	// The guarded update matched nothing: either the tier is gone or
	// capacity ran out. Read back the remaining count for the error.
	var (
		capQty sql.NullInt64
		sold   int
	)
	err = ex.QueryRowContext(ctx,
		`SELECT quantity, sold_count FROM ticket_tiers WHERE id = ? LIMIT 1`, tierID).
		Scan(&capQty, &sold)
	if err == sql.ErrNoRows {
		return ticketing.Reservation{}, ErrTierNotFound
	}
	if err != nil {
		return ticketing.Reservation{}, err
	}
	remaining := 0
	if capQty.Valid {
		remaining = int(capQty.Int64) - sold
		if remaining < 0 {
			remaining = 0
		}
	}
	return ticketing.Reservation{}, &ticketing.InsufficientCapacityError{
		TierID:    tierID,
		Requested: quantity,
		Remaining: remaining,
	}
}

func releaseOn(ctx context.Context, ex sqlExecer, tierID uint64, quantity int) error {
	if quantity < 1 {
		return ErrConflict
	}
	res, err := ex.ExecContext(ctx,
		`UPDATE ticket_tiers SET sold_count = GREATEST(sold_count - ?, 0) WHERE id = ?`,
		quantity, tierID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTierNotFound
	}
	return nil
}

func nullableInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableTime(p *time.Time) interface{} {
	if p == nil {
		return nil
	}
	return p.UTC()
}

func nullableUint(p *uint64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableString(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
