package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villastay/internal/domain/property"
	"villastay/internal/domain/shared/daterange"
	"villastay/internal/domain/shared/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stay(t *testing.T, in, out time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(in, out)
	require.NoError(t, err)
	return dr
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		rule    ChargeRule
		wantErr error
	}{
		{
			name: "valid fixed fee",
			rule: ChargeRule{ID: "fee", Category: CategoryFee, Type: ChargeFixed, Amount: decimal.NewFromInt(20)},
		},
		{
			name:    "negative amount",
			rule:    ChargeRule{ID: "fee", Category: CategoryFee, Type: ChargeFixed, Amount: decimal.NewFromInt(-1)},
			wantErr: ErrNegativeAmount,
		},
		{
			name:    "percentage above 100",
			rule:    ChargeRule{ID: "tax", Category: CategoryTax, Type: ChargePercentage, Amount: decimal.NewFromInt(120)},
			wantErr: ErrPercentageRange,
		},
		{
			name:    "meal plan without details",
			rule:    ChargeRule{ID: "mp", Category: CategoryMealPlan, Type: ChargePerDay, Amount: decimal.Zero},
			wantErr: ErrVariantDetails,
		},
		{
			name: "fee with foreign details",
			rule: ChargeRule{
				ID: "fee", Category: CategoryFee, Type: ChargeFixed, Amount: decimal.NewFromInt(5),
				Seasonal: &SeasonalDetails{StartDate: date(2026, 1, 1), EndDate: date(2026, 2, 1)},
			},
			wantErr: ErrVariantDetails,
		},
		{
			name: "seasonal window inverted",
			rule: ChargeRule{
				ID: "s", Category: CategorySeasonalDiscount, Type: ChargePercentage, Amount: decimal.Zero,
				Seasonal: &SeasonalDetails{
					StartDate:       date(2026, 2, 1),
					EndDate:         date(2026, 1, 1),
					DiscountPercent: decimal.NewFromInt(10),
				},
			},
			wantErr: ErrSeasonWindow,
		},
		{
			name: "transport with negative minimum",
			rule: ChargeRule{
				ID: "t", Category: CategoryTransportation, Type: ChargePerKm, Amount: decimal.Zero,
				Transport: &TransportDetails{
					PricePerKm:    money.Must("0.5"),
					MinimumCharge: money.Must("-1"),
				},
			},
			wantErr: ErrNegativeAmount,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestApplicableFilters(t *testing.T) {
	decemberStay := stay(t, date(2026, 12, 20), date(2026, 12, 23))

	rules := []ChargeRule{
		{ID: "cleaning", Category: CategoryFee, Type: ChargeFixed, Amount: decimal.NewFromInt(20), Active: true},
		{ID: "inactive", Category: CategoryFee, Type: ChargeFixed, Amount: decimal.NewFromInt(5), Active: false},
		{ID: "villa-only", Category: CategoryService, Type: ChargeFixed, Amount: decimal.NewFromInt(15), Scope: ScopeVilla, Active: true},
		{
			ID: "xmas", Category: CategorySeasonalDiscount, Type: ChargePercentage, Active: true,
			Seasonal: &SeasonalDetails{
				StartDate:       date(2026, 12, 15),
				EndDate:         date(2026, 12, 31),
				DiscountPercent: decimal.NewFromInt(15),
			},
		},
		{
			ID: "summer", Category: CategorySeasonalDiscount, Type: ChargePercentage, Active: true,
			Seasonal: &SeasonalDetails{
				StartDate:       date(2026, 6, 1),
				EndDate:         date(2026, 8, 31),
				DiscountPercent: decimal.NewFromInt(25),
			},
		},
	}

	got := Applicable(rules, property.TypeRoom, decemberStay)
	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, string(r.ID))
	}
	// Inactive, villa-scoped, and out-of-window seasonal rules drop out;
	// insertion order is preserved.
	assert.Equal(t, []string{"cleaning", "xmas"}, ids)

	got = Applicable(rules, property.TypeVilla, decemberStay)
	ids = ids[:0]
	for _, r := range got {
		ids = append(ids, string(r.ID))
	}
	assert.Equal(t, []string{"cleaning", "villa-only", "xmas"}, ids)
}

func TestBestSeasonal(t *testing.T) {
	mk := func(id string, percent int64, start time.Time) ChargeRule {
		return ChargeRule{
			ID: RuleID(id), Category: CategorySeasonalDiscount, Type: ChargePercentage, Active: true,
			Seasonal: &SeasonalDetails{
				StartDate:       start,
				EndDate:         start.AddDate(0, 1, 0),
				DiscountPercent: decimal.NewFromInt(percent),
			},
		}
	}

	t.Run("highest percentage wins", func(t *testing.T) {
		best, ok := BestSeasonal([]ChargeRule{
			mk("low", 10, date(2026, 12, 1)),
			mk("high", 15, date(2026, 12, 10)),
		})
		require.True(t, ok)
		assert.Equal(t, RuleID("high"), best.ID)
	})

	t.Run("tie broken by earliest start", func(t *testing.T) {
		best, ok := BestSeasonal([]ChargeRule{
			mk("later", 15, date(2026, 12, 10)),
			mk("earlier", 15, date(2026, 12, 1)),
		})
		require.True(t, ok)
		assert.Equal(t, RuleID("earlier"), best.ID)
	})

	t.Run("no seasonal rules", func(t *testing.T) {
		_, ok := BestSeasonal([]ChargeRule{
			{ID: "fee", Category: CategoryFee, Type: ChargeFixed, Amount: decimal.NewFromInt(20)},
		})
		assert.False(t, ok)
	})
}

func TestBaseAmount(t *testing.T) {
	meal := ChargeRule{
		Category: CategoryMealPlan, Type: ChargePerDay, Amount: decimal.Zero,
		MealPlan: &MealPlanDetails{Breakfast: true, PricePerDay: money.Must("25")},
	}
	assert.True(t, meal.BaseAmount().Equal(money.Must("25")))

	transport := ChargeRule{
		Category: CategoryTransportation, Type: ChargePerKm, Amount: decimal.Zero,
		Transport: &TransportDetails{PricePerKm: money.Must("0.8"), MinimumCharge: money.Must("10")},
	}
	assert.True(t, transport.BaseAmount().Equal(money.Must("0.8")))

	fee := ChargeRule{Category: CategoryFee, Type: ChargeFixed, Amount: decimal.NewFromInt(20)}
	assert.True(t, fee.BaseAmount().Equal(money.Must("20")))
}
