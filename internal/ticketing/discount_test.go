package ticketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamalraji/plan-it-together-sub006/internal/model"
)

func uintPtr(n uint64) *uint64 { return &n }

func activeCode(typ string, value int64) model.PromoCode {
	return model.PromoCode{
		ID:            7,
		EventID:       1,
		Code:          "SAVE",
		DiscountType:  typ,
		DiscountValue: value,
		IsActive:      true,
	}
}

func TestValidateCodePercentage(t *testing.T) {
	now := time.Now().UTC()

	// 10% of a 5000 cent subtotal.
	applied, err := ValidateCode(activeCode(model.DiscountPercentage, 10), 1, 5, 5000, now)
	require.NoError(t, err)
	assert.Equal(t, int64(500), applied.AmountCents)

	// 100% consumes the whole subtotal, never more.
	applied, err = ValidateCode(activeCode(model.DiscountPercentage, 100), 1, 5, 5000, now)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), applied.AmountCents)
}

func TestValidateCodeFixedWithMaxQuantity(t *testing.T) {
	now := time.Now().UTC()

	pc := activeCode(model.DiscountFixed, 200)
	pc.MaxQuantity = intPtr(3)

	// 5 units requested, cap at 3 discounted units: 3 * 200 = 600.
	applied, err := ValidateCode(pc, 1, 5, 5000, now)
	require.NoError(t, err)
	assert.Equal(t, int64(600), applied.AmountCents)

	// Below the cap the full quantity is discounted.
	applied, err = ValidateCode(pc, 1, 2, 2000, now)
	require.NoError(t, err)
	assert.Equal(t, int64(400), applied.AmountCents)
}

func TestValidateCodeDiscountNeverExceedsSubtotal(t *testing.T) {
	now := time.Now().UTC()

	// Fixed 900/unit on a 500/unit order would exceed the subtotal.
	applied, err := ValidateCode(activeCode(model.DiscountFixed, 900), 1, 2, 1000, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), applied.AmountCents)
	assert.GreaterOrEqual(t, applied.AmountCents, int64(0))
}

func TestValidateCodeRejections(t *testing.T) {
	now := time.Now().UTC()

	t.Run("inactive", func(t *testing.T) {
		pc := activeCode(model.DiscountPercentage, 10)
		pc.IsActive = false
		_, err := ValidateCode(pc, 1, 1, 1000, now)
		assert.ErrorIs(t, err, ErrCodeInactive)
	})

	t.Run("not yet active", func(t *testing.T) {
		pc := activeCode(model.DiscountPercentage, 10)
		pc.StartsAt = timePtr(now.Add(time.Hour))
		_, err := ValidateCode(pc, 1, 1, 1000, now)
		assert.ErrorIs(t, err, ErrCodeOutOfWindow)
	})

	t.Run("expired", func(t *testing.T) {
		pc := activeCode(model.DiscountPercentage, 10)
		pc.EndsAt = timePtr(now.Add(-time.Hour))
		_, err := ValidateCode(pc, 1, 1, 1000, now)
		assert.ErrorIs(t, err, ErrCodeOutOfWindow)
	})

	t.Run("tier mismatch", func(t *testing.T) {
		pc := activeCode(model.DiscountPercentage, 10)
		pc.TierID = uintPtr(42)
		_, err := ValidateCode(pc, 43, 1, 1000, now)
		assert.ErrorIs(t, err, ErrCodeTierMismatch)
	})

	t.Run("matching tier restriction passes", func(t *testing.T) {
		pc := activeCode(model.DiscountPercentage, 10)
		pc.TierID = uintPtr(42)
		_, err := ValidateCode(pc, 42, 1, 1000, now)
		assert.NoError(t, err)
	})

	t.Run("zero value", func(t *testing.T) {
		_, err := ValidateCode(activeCode(model.DiscountPercentage, 0), 1, 1, 1000, now)
		assert.ErrorIs(t, err, ErrCodeInvalidValue)
	})

	t.Run("percentage above 100", func(t *testing.T) {
		_, err := ValidateCode(activeCode(model.DiscountPercentage, 150), 1, 1, 1000, now)
		assert.ErrorIs(t, err, ErrCodeInvalidValue)
	})

	t.Run("unknown discount type", func(t *testing.T) {
		_, err := ValidateCode(activeCode("bogus", 10), 1, 1, 1000, now)
		assert.ErrorIs(t, err, ErrCodeInvalidValue)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := ValidateCode(activeCode(model.DiscountPercentage, 10), 1, 0, 1000, now)
		assert.ErrorIs(t, err, ErrCodeInvalidValue)
	})
}
