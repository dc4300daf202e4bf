package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villastay/internal/domain/catalog"
	"villastay/internal/domain/shared/money"
)

var now = time.Date(2026, time.December, 22, 10, 0, 0, 0, time.UTC)

func TestNewDefaultsQuantityToOne(t *testing.T) {
	c, err := New(NewChargeParams{
		ID: "c1", BookingID: "b1", Name: "Minibar",
		Type: catalog.ChargeFixed, Amount: decimal.NewFromInt(12), CreatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Quantity)
}

func TestNewValidation(t *testing.T) {
	base := NewChargeParams{
		ID: "c1", BookingID: "b1", Name: "Minibar",
		Type: catalog.ChargeFixed, Amount: decimal.NewFromInt(12), Quantity: 1, CreatedAt: now,
	}

	t.Run("negative quantity", func(t *testing.T) {
		p := base
		p.Quantity = -2
		_, err := New(p)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("per_km not allowed", func(t *testing.T) {
		p := base
		p.Type = catalog.ChargePerKm
		_, err := New(p)
		assert.ErrorIs(t, err, ErrInvalidType)
	})

	t.Run("negative amount", func(t *testing.T) {
		p := base
		p.Amount = decimal.NewFromInt(-5)
		_, err := New(p)
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})

	t.Run("missing booking", func(t *testing.T) {
		p := base
		p.BookingID = ""
		_, err := New(p)
		assert.Error(t, err)
	})
}

func TestFromRule(t *testing.T) {
	rule := &catalog.ChargeRule{
		ID: "laundry", Name: "Laundry", Category: catalog.CategoryService,
		Type: catalog.ChargeFixed, Amount: decimal.NewFromInt(8), Active: true,
	}
	c, err := FromRule("c1", "b1", rule, 3, now)
	require.NoError(t, err)
	assert.Equal(t, "Laundry", c.Name)
	assert.Equal(t, 3, c.Quantity)
	assert.True(t, c.Amount.Equal(decimal.NewFromInt(8)))

	t.Run("inactive rule rejected", func(t *testing.T) {
		inactive := *rule
		inactive.Active = false
		_, err := FromRule("c2", "b1", &inactive, 1, now)
		assert.ErrorIs(t, err, catalog.ErrUnknownRule)
	})

	t.Run("nil rule rejected", func(t *testing.T) {
		_, err := FromRule("c3", "b1", nil, 1, now)
		assert.ErrorIs(t, err, catalog.ErrUnknownRule)
	})
}

func TestUpdateQuantity(t *testing.T) {
	c, err := New(NewChargeParams{
		ID: "c1", BookingID: "b1", Name: "Minibar",
		Type: catalog.ChargeFixed, Amount: decimal.NewFromInt(12), Quantity: 1, CreatedAt: now,
	})
	require.NoError(t, err)

	require.NoError(t, c.UpdateQuantity(4))
	assert.Equal(t, 4, c.Quantity)

	assert.ErrorIs(t, c.UpdateQuantity(0), ErrInvalidQuantity)
	assert.Equal(t, 4, c.Quantity)
}

func TestTotalPercentageAgainstPricedGrandTotal(t *testing.T) {
	// 5% of 352, twice: 352 x 0.05 x 2 = 35.20.
	c, err := New(NewChargeParams{
		ID: "c1", BookingID: "b1", Name: "Late checkout",
		Type: catalog.ChargePercentage, Amount: decimal.NewFromInt(5), Quantity: 2, CreatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "35.20", c.Total(money.Must("352")).String())
}

func TestTotalFixedIgnoresGrandTotal(t *testing.T) {
	c, err := New(NewChargeParams{
		ID: "c1", BookingID: "b1", Name: "Minibar",
		Type: catalog.ChargeFixed, Amount: decimal.NewFromInt(12), Quantity: 3, CreatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "36.00", c.Total(money.Must("352")).String())
}

func TestTotalFor(t *testing.T) {
	fixed, err := New(NewChargeParams{
		ID: "c1", BookingID: "b1", Name: "Minibar",
		Type: catalog.ChargeFixed, Amount: decimal.NewFromInt(12), CreatedAt: now,
	})
	require.NoError(t, err)
	pct, err := New(NewChargeParams{
		ID: "c2", BookingID: "b1", Name: "Late checkout",
		Type: catalog.ChargePercentage, Amount: decimal.NewFromInt(5), CreatedAt: now,
	})
	require.NoError(t, err)

	total := TotalFor([]*ExtraCharge{fixed, pct}, money.Must("352"))
	assert.Equal(t, "29.60", total.String())
}
