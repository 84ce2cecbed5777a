package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

// PromoRepo encapsulates database operations for promo_codes.  Codes
// are stored upper-cased; all lookups normalize the same way so
// "save10" and "SAVE10" resolve to the same row.
type PromoRepo struct {
	db *sql.DB
}

// NewPromoRepo constructs a PromoRepo given a DB handle.
func NewPromoRepo(db *sql.DB) *PromoRepo { return &PromoRepo{db: db} }

// NormalizeCode trims and upper-cases a code string the way it is
// stored.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

const promoColumns = `id, event_id, code, discount_type, discount_value, max_quantity,
	tier_id, starts_at, ends_at, is_active, created_at`

func scanPromo(row interface{ Scan(...interface{}) error }) (model.PromoCode, error) {
	var (
		pc     model.PromoCode
		maxQty sql.NullInt64
		tierID sql.NullInt64
		starts sql.NullTime
		ends   sql.NullTime
	)
	err := row.Scan(&pc.ID, &pc.EventID, &pc.Code, &pc.DiscountType, &pc.DiscountValue,
		&maxQty, &tierID, &starts, &ends, &pc.IsActive, &pc.CreatedAt)
	if err != nil {
		return model.PromoCode{}, err
	}
	if maxQty.Valid {
		v := int(maxQty.Int64)
		pc.MaxQuantity = &v
	}
	if tierID.Valid {
		v := uint64(tierID.Int64)
		pc.TierID = &v
	}
	if starts.Valid {
		v := starts.Time
		pc.StartsAt = &v
	}
	if ends.Valid {
		v := ends.Time
		pc.EndsAt = &v
	}
	return pc, nil
}

// Create inserts a promo code and populates its ID.  The code string
// is normalized before insertion.  A duplicate code within the event
// comes back as ErrConflict.
func (r *PromoRepo) Create(ctx context.Context, pc *model.PromoCode) error {
	pc.Code = NormalizeCode(pc.Code)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO promo_codes
		   (event_id, code, discount_type, discount_value, max_quantity, tier_id, starts_at, ends_at, is_active)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		pc.EventID, pc.Code, pc.DiscountType, pc.DiscountValue,
		nullableInt(pc.MaxQuantity), nullableUint(pc.TierID),
		nullableTime(pc.StartsAt), nullableTime(pc.EndsAt), pc.IsActive)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	pc.ID = uint64(id)
	return nil
}

// GetByCode resolves a normalized code within an event.
func (r *PromoRepo) GetByCode(ctx context.Context, eventID uint64, code string) (model.PromoCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+promoColumns+` FROM promo_codes WHERE event_id = ? AND code = ? LIMIT 1`,
		eventID, NormalizeCode(code))
	pc, err := scanPromo(row)
	if err == sql.ErrNoRows {
		return model.PromoCode{}, ErrCodeNotFound
	}
	return pc, err
}

// ListByEvent returns all promo codes of an event.
func (r *PromoRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.PromoCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+promoColumns+` FROM promo_codes WHERE event_id = ? ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var codes []model.PromoCode
	for rows.Next() {
		pc, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, pc)
	}
	return codes, rows.Err()
}

// Deactivate switches a code off without deleting it, so historical
// orders keep their reference.
func (r *PromoRepo) Deactivate(ctx context.Context, eventID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE promo_codes SET is_active = 0 WHERE id = ? AND event_id = ?`, id, eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCodeNotFound
	}
	return nil
}
