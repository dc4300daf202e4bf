package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villastay/internal/domain/catalog"
	"villastay/internal/domain/property"
	"villastay/internal/domain/shared/daterange"
	"villastay/internal/domain/shared/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testProperty(rate string) *property.Property {
	return &property.Property{
		ID:          "room-1",
		Type:        property.TypeRoom,
		Name:        "Garden Room",
		NightlyRate: money.Must(rate),
		Capacity:    4,
	}
}

func threeNights(t *testing.T) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(date(2026, 12, 20), date(2026, 12, 23))
	require.NoError(t, err)
	return dr
}

func cleaningFee() catalog.ChargeRule {
	return catalog.ChargeRule{
		ID: "cleaning", Name: "Cleaning fee",
		Category: catalog.CategoryFee, Type: catalog.ChargeFixed,
		Amount: decimal.NewFromInt(20), Active: true,
	}
}

func salesTax() catalog.ChargeRule {
	return catalog.ChargeRule{
		ID: "vat", Name: "VAT",
		Category: catalog.CategoryTax, Type: catalog.ChargePercentage,
		Amount: decimal.NewFromInt(10), Active: true,
	}
}

func holidayDiscount(percent int64) catalog.ChargeRule {
	return catalog.ChargeRule{
		ID: "holiday", Name: "Holiday discount",
		Category: catalog.CategorySeasonalDiscount, Type: catalog.ChargePercentage,
		Active: true,
		Seasonal: &catalog.SeasonalDetails{
			StartDate:       date(2026, 12, 1),
			EndDate:         date(2026, 12, 31),
			DiscountPercent: decimal.NewFromInt(percent),
		},
	}
}

func TestPriceStayFeeAndTax(t *testing.T) {
	// 100/night x 3 nights + 20 fixed fee, then 10% tax on 320.
	b, err := PriceStay(StayInput{
		Property: testProperty("100"),
		Stay:     threeNights(t),
		Guests:   GuestCounts{Adults: 2},
	}, []catalog.ChargeRule{cleaningFee(), salesTax()})
	require.NoError(t, err)

	assert.Equal(t, 3, b.Accommodation.Nights)
	assert.Equal(t, "300.00", b.Accommodation.Total.String())
	assert.Equal(t, "320.00", b.Subtotal.String())
	assert.Equal(t, "32.00", b.Tax.Amount.String())
	assert.True(t, b.Tax.Rate.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "352.00", b.GrandTotal.String())
	assert.Equal(t, "105.60", b.Deposit().String())
	assert.Equal(t, "352.00", b.BalanceDue.String())
}

func TestPriceStayWithSeasonalDiscount(t *testing.T) {
	// Subtotal 320, minus 15% = 272, plus 10% tax on 272 = 299.20.
	b, err := PriceStay(StayInput{
		Property: testProperty("100"),
		Stay:     threeNights(t),
		Guests:   GuestCounts{Adults: 2},
	}, []catalog.ChargeRule{cleaningFee(), salesTax(), holidayDiscount(15)})
	require.NoError(t, err)

	assert.Equal(t, "48.00", b.Discount.Amount.String())
	assert.Equal(t, "27.20", b.Tax.Amount.String())
	assert.Equal(t, "299.20", b.GrandTotal.String())
}

func TestPriceStayOrderIndependent(t *testing.T) {
	rules := []catalog.ChargeRule{cleaningFee(), salesTax(), holidayDiscount(15)}
	reversed := []catalog.ChargeRule{holidayDiscount(15), salesTax(), cleaningFee()}

	in := StayInput{Property: testProperty("100"), Stay: threeNights(t), Guests: GuestCounts{Adults: 2}}
	a, err := PriceStay(in, rules)
	require.NoError(t, err)
	b, err := PriceStay(in, reversed)
	require.NoError(t, err)

	assert.True(t, a.GrandTotal.Equal(b.GrandTotal))
	assert.True(t, a.Tax.Amount.Equal(b.Tax.Amount))
	assert.True(t, a.Discount.Amount.Equal(b.Discount.Amount))
}

func TestPriceStayPercentageFeeUsesAccommodationTotal(t *testing.T) {
	serviceCharge := catalog.ChargeRule{
		ID: "svc", Name: "Service charge",
		Category: catalog.CategoryService, Type: catalog.ChargePercentage,
		Amount: decimal.NewFromInt(10), Active: true,
	}
	// 10% of the 300 accommodation total, not of 300+20.
	b, err := PriceStay(StayInput{
		Property: testProperty("100"),
		Stay:     threeNights(t),
		Guests:   GuestCounts{Adults: 2},
	}, []catalog.ChargeRule{cleaningFee(), serviceCharge})
	require.NoError(t, err)

	require.Len(t, b.AdditionalCharges, 2)
	assert.Equal(t, "30.00", b.AdditionalCharges[1].Amount.String())
	assert.Equal(t, "350.00", b.Subtotal.String())
}

func TestPriceStayPerDayCap(t *testing.T) {
	mealPlan := catalog.ChargeRule{
		ID: "halfboard", Name: "Half board",
		Category: catalog.CategoryMealPlan, Type: catalog.ChargePerDay,
		Amount: decimal.Zero, MaxDaysApply: 2, Active: true,
		MealPlan: &catalog.MealPlanDetails{Breakfast: true, Dinner: true, PricePerDay: money.Must("25")},
	}
	b, err := PriceStay(StayInput{
		Property: testProperty("100"),
		Stay:     threeNights(t),
		Guests:   GuestCounts{Adults: 2},
	}, []catalog.ChargeRule{mealPlan})
	require.NoError(t, err)

	require.Len(t, b.AdditionalCharges, 1)
	assert.Equal(t, 2, b.AdditionalCharges[0].Quantity)
	assert.Equal(t, "50.00", b.AdditionalCharges[0].Amount.String())
}

func TestPriceStayPerPersonAgeGroups(t *testing.T) {
	adultFee := catalog.ChargeRule{
		ID: "resort-adult", Name: "Resort fee (adults)",
		Category: catalog.CategoryFee, Type: catalog.ChargePerPerson,
		Amount: decimal.NewFromInt(10), AppliesTo: catalog.AgeGroupAdults, Active: true,
	}
	everyoneFee := catalog.ChargeRule{
		ID: "resort-all", Name: "Resort fee (all)",
		Category: catalog.CategoryFee, Type: catalog.ChargePerPerson,
		Amount: decimal.NewFromInt(5), Active: true,
	}
	b, err := PriceStay(StayInput{
		Property: testProperty("100"),
		Stay:     threeNights(t),
		Guests:   GuestCounts{Adults: 2, Children: 1},
	}, []catalog.ChargeRule{adultFee, everyoneFee})
	require.NoError(t, err)

	require.Len(t, b.AdditionalCharges, 2)
	assert.Equal(t, 2, b.AdditionalCharges[0].Quantity)
	assert.Equal(t, "20.00", b.AdditionalCharges[0].Amount.String())
	assert.Equal(t, 3, b.AdditionalCharges[1].Quantity)
	assert.Equal(t, "15.00", b.AdditionalCharges[1].Amount.String())
}

func TestPriceStayPerKmMinimumCharge(t *testing.T) {
	pickup := catalog.ChargeRule{
		ID: "pickup", Name: "Airport pickup",
		Category: catalog.CategoryTransportation, Type: catalog.ChargePerKm,
		Amount: decimal.Zero, Active: true,
		Transport: &catalog.TransportDetails{
			VehicleType:   "van",
			Capacity:      6,
			PricePerKm:    money.Must("0.5"),
			MinimumCharge: money.Must("15"),
		},
	}
	in := StayInput{
		Property:   testProperty("100"),
		Stay:       threeNights(t),
		Guests:     GuestCounts{Adults: 2},
		DistanceKm: decimal.NewFromInt(10),
	}

	// 10 km x 0.5 = 5, below the 15 floor.
	b, err := PriceStay(in, []catalog.ChargeRule{pickup})
	require.NoError(t, err)
	require.Len(t, b.AdditionalCharges, 1)
	assert.Equal(t, "15.00", b.AdditionalCharges[0].Amount.String())

	in.DistanceKm = decimal.NewFromInt(60)
	b, err = PriceStay(in, []catalog.ChargeRule{pickup})
	require.NoError(t, err)
	assert.Equal(t, "30.00", b.AdditionalCharges[0].Amount.String())
}

func TestPriceStayHighestDiscountWins(t *testing.T) {
	low := holidayDiscount(10)
	low.ID = "low"
	high := holidayDiscount(15)
	high.ID = "high"

	b, err := PriceStay(StayInput{
		Property: testProperty("100"),
		Stay:     threeNights(t),
		Guests:   GuestCounts{Adults: 2},
	}, []catalog.ChargeRule{low, high})
	require.NoError(t, err)
	assert.Equal(t, "high", b.Discount.RuleID)
}

func TestPriceStayInvalidInputs(t *testing.T) {
	_, err := PriceStay(StayInput{Stay: threeNights(t)}, nil)
	assert.ErrorIs(t, err, ErrMissingProperty)

	_, err = PriceStay(StayInput{Property: testProperty("100")}, nil)
	assert.ErrorIs(t, err, ErrInvalidStay)
}

func TestBreakdownCopyIsDeep(t *testing.T) {
	b, err := PriceStay(StayInput{
		Property: testProperty("100"),
		Stay:     threeNights(t),
		Guests:   GuestCounts{Adults: 2},
	}, []catalog.ChargeRule{cleaningFee()})
	require.NoError(t, err)

	clone := b.Copy()
	clone.AdditionalCharges[0].Name = "mutated"
	assert.Equal(t, "Cleaning fee", b.AdditionalCharges[0].Name)
}
