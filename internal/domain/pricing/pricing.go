package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"villastay/internal/domain/catalog"
	"villastay/internal/domain/property"
	"villastay/internal/domain/shared/daterange"
	"villastay/internal/domain/shared/money"
)

var (
	ErrInvalidStay     = errors.New("pricing: stay must span at least one night")
	ErrMissingProperty = errors.New("pricing: property is required")
)

// DepositRate is the share of the priced grand total collected up front when
// a booking is created. The deposit is snapshotted on the booking and never
// recomputed when extra charges accrue later.
var DepositRate = decimal.NewFromFloat(0.30)

type GuestCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

func (g GuestCounts) Total() int {
	return g.Adults + g.Children
}

// ForAgeGroup returns the guest count a per-person rule multiplies over.
func (g GuestCounts) ForAgeGroup(group catalog.AgeGroup) int {
	switch group {
	case catalog.AgeGroupAdults:
		return g.Adults
	case catalog.AgeGroupChildren:
		return g.Children
	default:
		return g.Total()
	}
}

type StayInput struct {
	Property *property.Property
	Stay     daterange.DateRange
	Guests   GuestCounts
	// DistanceKm feeds per_km transportation rules; it is supplied by the
	// caller (airport pickup distance etc.) and zero when not requested.
	DistanceKm decimal.Decimal
}

type Accommodation struct {
	RatePerNight money.Money `json:"rate_per_night" bson:"rate_per_night"`
	Nights       int         `json:"nights" bson:"nights"`
	Total        money.Money `json:"total" bson:"total"`
}

// LineItem is one materialized charge rule application, retaining the source
// rule and the quantity the amount was multiplied over for display.
type LineItem struct {
	RuleID   string             `json:"rule_id" bson:"rule_id"`
	Name     string             `json:"name" bson:"name"`
	Category catalog.Category   `json:"category" bson:"category"`
	Type     catalog.ChargeType `json:"charge_type" bson:"charge_type"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Amount   money.Money        `json:"amount" bson:"amount"`
}

type DiscountLine struct {
	RuleID      string          `json:"rule_id,omitempty" bson:"rule_id,omitempty"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
	Percent     decimal.Decimal `json:"percent" bson:"percent"`
	Amount      money.Money     `json:"amount" bson:"amount"`
}

type TaxLine struct {
	// Rate is the summed percentage points of percentage-type tax rules;
	// fixed tax rules contribute to Amount only.
	Rate   decimal.Decimal `json:"rate" bson:"rate"`
	Amount money.Money     `json:"amount" bson:"amount"`
}

// Breakdown is the derived invoice view. It is rebuilt from scratch on every
// request, never patched incrementally, so identical inputs always produce
// identical totals.
type Breakdown struct {
	Accommodation     Accommodation `json:"accommodation" bson:"accommodation"`
	AdditionalCharges []LineItem    `json:"additional_charges" bson:"additional_charges"`
	Subtotal          money.Money   `json:"subtotal" bson:"subtotal"`
	Discount          DiscountLine  `json:"discount" bson:"discount"`
	Tax               TaxLine       `json:"tax" bson:"tax"`
	GrandTotal        money.Money   `json:"grand_total" bson:"grand_total"`
	ExtraChargesTotal money.Money   `json:"extra_charges_total" bson:"extra_charges_total"`
	AmountPaid        money.Money   `json:"amount_paid" bson:"amount_paid"`
	BalanceDue        money.Money   `json:"balance_due" bson:"balance_due"`
}

func (b Breakdown) Copy() Breakdown {
	clone := b
	clone.AdditionalCharges = append([]LineItem(nil), b.AdditionalCharges...)
	return clone
}

// Deposit derives the up-front amount from the priced grand total.
func (b Breakdown) Deposit() money.Money {
	return b.GrandTotal.Percent(DepositRate.Mul(decimal.NewFromInt(100)))
}

// PriceStay prices a stay against the applicable charge rules. The step order
// is fixed: accommodation, non-tax rule contributions, subtotal, the single
// best seasonal discount, taxable base, tax rules, grand total. Percentage
// charges are always taken against the accommodation total and percentage
// taxes against the taxable base, keeping the result independent of rule
// ordering.
func PriceStay(in StayInput, rules []catalog.ChargeRule) (Breakdown, error) {
	if in.Property == nil {
		return Breakdown{}, ErrMissingProperty
	}
	if err := in.Stay.Validate(); err != nil {
		return Breakdown{}, ErrInvalidStay
	}
	nights := in.Stay.Nights()
	if nights <= 0 {
		return Breakdown{}, ErrInvalidStay
	}

	applicable := catalog.Applicable(rules, in.Property.Type, in.Stay)

	b := Breakdown{
		Accommodation: Accommodation{
			RatePerNight: in.Property.NightlyRate,
			Nights:       nights,
			Total:        in.Property.NightlyRate.MulInt(int64(nights)),
		},
	}

	chargesTotal := money.Zero()
	for _, r := range applicable {
		if r.IsDiscount() || r.IsTax() {
			continue
		}
		amount, qty := contribution(r, b.Accommodation.Total, nights, in.Guests, in.DistanceKm)
		b.AdditionalCharges = append(b.AdditionalCharges, LineItem{
			RuleID:   string(r.ID),
			Name:     r.Name,
			Category: r.Category,
			Type:     r.Type,
			Quantity: qty,
			Amount:   amount,
		})
		chargesTotal = chargesTotal.Add(amount)
	}
	b.Subtotal = b.Accommodation.Total.Add(chargesTotal)

	if seasonal, ok := catalog.BestSeasonal(applicable); ok {
		b.Discount = DiscountLine{
			RuleID:      string(seasonal.ID),
			Description: seasonal.Name,
			Percent:     seasonal.Seasonal.DiscountPercent,
			Amount:      b.Subtotal.Percent(seasonal.Seasonal.DiscountPercent),
		}
	}
	taxableBase := b.Subtotal.Sub(b.Discount.Amount)

	for _, r := range applicable {
		if !r.IsTax() {
			continue
		}
		var amount money.Money
		qty := 1
		if r.Type == catalog.ChargePercentage {
			amount = taxableBase.Percent(r.Amount)
			b.Tax.Rate = b.Tax.Rate.Add(r.Amount)
		} else {
			amount, qty = contribution(r, taxableBase, nights, in.Guests, in.DistanceKm)
		}
		b.AdditionalCharges = append(b.AdditionalCharges, LineItem{
			RuleID:   string(r.ID),
			Name:     r.Name,
			Category: r.Category,
			Type:     r.Type,
			Quantity: qty,
			Amount:   amount,
		})
		b.Tax.Amount = b.Tax.Amount.Add(amount)
	}

	b.GrandTotal = taxableBase.Add(b.Tax.Amount)
	b.BalanceDue = b.GrandTotal
	return b, nil
}

// contribution computes a single rule application against the given base,
// returning the amount and the quantity it multiplied over.
func contribution(r catalog.ChargeRule, base money.Money, nights int, guests GuestCounts, distanceKm decimal.Decimal) (money.Money, int) {
	rate := r.BaseAmount()
	switch r.Type {
	case catalog.ChargePercentage:
		return base.Percent(r.Amount), 1
	case catalog.ChargePerDay:
		days := nights
		if r.MaxDaysApply > 0 && r.MaxDaysApply < days {
			days = r.MaxDaysApply
		}
		return rate.MulInt(int64(days)), days
	case catalog.ChargePerPerson:
		count := guests.ForAgeGroup(r.AppliesTo)
		return rate.MulInt(int64(count)), count
	case catalog.ChargePerKm:
		amount := money.FromDecimal(rate.Decimal().Mul(distanceKm))
		if r.Transport != nil && amount.Cmp(r.Transport.MinimumCharge) < 0 {
			amount = r.Transport.MinimumCharge
		}
		return amount, 1
	default:
		return rate, 1
	}
}
