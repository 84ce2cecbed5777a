package repository

import (
	"context"
	"database/sql"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

// WaitlistRepo provides data access to the waitlist_entries table.
// Mutations always run inside a caller-owned transaction: handlers
// lock an event's entries with ListByEventTx, mutate the in-memory
// queue from the ticketing package, and write the renumbered
// positions back before committing.  The row locks serialize
// concurrent queue mutations per event.
type WaitlistRepo struct {
	db *sql.DB
}

// NewWaitlistRepo returns a WaitlistRepo bound to the provided database.
func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *WaitlistRepo) DB() *sql.DB { return r.db }

const entryColumns = `id, event_id, tier_id, full_name, email, priority, position, notes, created_at`

func scanEntry(row interface{ Scan(...interface{}) error }) (model.WaitlistEntry, error) {
	var (
		e      model.WaitlistEntry
		tierID sql.NullInt64
		notes  sql.NullString
	)
	err := row.Scan(&e.ID, &e.EventID, &tierID, &e.FullName, &e.Email, &e.Priority,
		&e.Position, &notes, &e.CreatedAt)
	if err != nil {
		return model.WaitlistEntry{}, err
	}
	if tierID.Valid {
		v := uint64(tierID.Int64)
		e.TierID = &v
	}
	if notes.Valid {
		v := notes.String
		e.Notes = &v
	}
	return e, nil
}

// GetByID fetches a single entry outside of any transaction.  Used by
// handlers addressing an entry directly to discover its event before
// locking the event's queue.
func (r *WaitlistRepo) GetByID(ctx context.Context, id uint64) (model.WaitlistEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM waitlist_entries WHERE id = ? LIMIT 1`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return model.WaitlistEntry{}, ErrEntryNotFound
	}
	return e, err
}

// ListByEvent returns an event's entries in position order without
// locking, for read-only listing.
func (r *WaitlistRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.WaitlistEntry, error) {
	return r.list(ctx, r.db, eventID, "")
}

// ListByEventTx returns an event's entries in position order with the
// rows locked for update.  Every queue mutation goes through this so
// concurrent reorders, removals and promotions on the same event
// serialize against each other.
func (r *WaitlistRepo) ListByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) ([]model.WaitlistEntry, error) {
	return r.list(ctx, tx, eventID, " FOR UPDATE")
}

func (r *WaitlistRepo) list(ctx context.Context, q sqlQuerier, eventID uint64, suffix string) ([]model.WaitlistEntry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM waitlist_entries WHERE event_id = ? ORDER BY position`+suffix,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.WaitlistEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertTx inserts an entry within the provided transaction and
// populates its ID.  The position must already be assigned by the
// queue.
func (r *WaitlistRepo) InsertTx(ctx context.Context, tx *sql.Tx, e *model.WaitlistEntry) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO waitlist_entries (event_id, tier_id, full_name, email, priority, position, notes)
		 VALUES (?,?,?,?,?,?,?)`,
		e.EventID, nullableUint(e.TierID), e.FullName, e.Email, e.Priority, e.Position,
		nullableString(e.Notes))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// UpdatePositionsTx rewrites the position column for every entry in
// one statement.  Built as a single CASE update so a renumbering pass
// is one round trip regardless of queue length.
func (r *WaitlistRepo) UpdatePositionsTx(ctx context.Context, tx *sql.Tx, eventID uint64, entries []model.WaitlistEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `UPDATE waitlist_entries SET position = CASE id`
	args := make([]interface{}, 0, len(entries)*2+1)
	for _, e := range entries {
		query += ` WHEN ? THEN ?`
		args = append(args, e.ID, e.Position)
	}
	query += ` ELSE position END WHERE event_id = ?`
	args = append(args, eventID)
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// DeleteTx removes a single entry within the provided transaction.
// Callers renumber the survivors via UpdatePositionsTx afterwards.
func (r *WaitlistRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM waitlist_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}
