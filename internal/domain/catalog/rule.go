package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"villastay/internal/domain/property"
	"villastay/internal/domain/shared/daterange"
	"villastay/internal/domain/shared/money"
)

var (
	ErrUnknownRule     = errors.New("catalog: unknown or inactive charge rule")
	ErrNegativeAmount  = errors.New("catalog: amount cannot be negative")
	ErrPercentageRange = errors.New("catalog: percentage must be within [0,100]")
	ErrSeasonWindow    = errors.New("catalog: seasonal window start must precede end")
	ErrVariantDetails  = errors.New("catalog: variant details do not match category")
)

type Category string

const (
	CategoryFee              Category = "fee"
	CategoryTax              Category = "tax"
	CategoryService          Category = "service"
	CategoryMealPlan         Category = "meal_plan"
	CategoryTransportation   Category = "transportation"
	CategorySeasonalDiscount Category = "seasonal_discount"
)

type ChargeType string

const (
	ChargeFixed      ChargeType = "fixed"
	ChargePercentage ChargeType = "percentage"
	ChargePerDay     ChargeType = "per_day"
	ChargePerPerson  ChargeType = "per_person"
	ChargePerKm      ChargeType = "per_km"
)

type AgeGroup string

const (
	AgeGroupAll      AgeGroup = "all"
	AgeGroupAdults   AgeGroup = "adults"
	AgeGroupChildren AgeGroup = "children"
)

// PropertyScope narrows a rule to a property type; "all" matches both.
type PropertyScope string

const (
	ScopeAll   PropertyScope = "all"
	ScopeRoom  PropertyScope = "room"
	ScopeVilla PropertyScope = "villa"
)

type RuleID string

// ChargeRule is a tagged variant keyed by Category: the MealPlan, Transport
// and Seasonal detail structs are exclusive to their categories. Amount holds
// currency units for fixed/per_day/per_person/per_km rules and percentage
// points for percentage rules.
type ChargeRule struct {
	ID          RuleID
	Name        string
	Description string
	Category    Category
	Type        ChargeType
	Amount      decimal.Decimal
	// AppliesTo narrows per-person rules to an age group; honored for
	// fee/tax/service categories only.
	AppliesTo AgeGroup
	// MaxDaysApply caps the nights a per_day rule multiplies over; zero means
	// uncapped.
	MaxDaysApply int
	Scope        PropertyScope
	Active       bool
	MealPlan     *MealPlanDetails
	Transport    *TransportDetails
	Seasonal     *SeasonalDetails
	CreatedAt    time.Time
}

type MealPlanDetails struct {
	Breakfast   bool
	Lunch       bool
	Dinner      bool
	PricePerDay money.Money
}

type TransportDetails struct {
	VehicleType   string
	Capacity      int
	PricePerKm    money.Money
	MinimumCharge money.Money
}

type SeasonalDetails struct {
	StartDate       time.Time
	EndDate         time.Time
	DiscountPercent decimal.Decimal
}

func (r *ChargeRule) Validate() error {
	if r.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if r.Type == ChargePercentage {
		if r.Amount.IsNegative() || r.Amount.GreaterThan(decimal.NewFromInt(100)) {
			return ErrPercentageRange
		}
	}
	switch r.Category {
	case CategoryMealPlan:
		if r.MealPlan == nil || r.Transport != nil || r.Seasonal != nil {
			return ErrVariantDetails
		}
		if r.MealPlan.PricePerDay.IsNegative() {
			return ErrNegativeAmount
		}
	case CategoryTransportation:
		if r.Transport == nil || r.MealPlan != nil || r.Seasonal != nil {
			return ErrVariantDetails
		}
		if r.Transport.PricePerKm.IsNegative() || r.Transport.MinimumCharge.IsNegative() {
			return ErrNegativeAmount
		}
	case CategorySeasonalDiscount:
		if r.Seasonal == nil || r.MealPlan != nil || r.Transport != nil {
			return ErrVariantDetails
		}
		if !r.Seasonal.StartDate.Before(r.Seasonal.EndDate) {
			return ErrSeasonWindow
		}
		if r.Seasonal.DiscountPercent.IsNegative() || r.Seasonal.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return ErrPercentageRange
		}
	case CategoryFee, CategoryTax, CategoryService:
		if r.MealPlan != nil || r.Transport != nil || r.Seasonal != nil {
			return ErrVariantDetails
		}
	default:
		return errors.New("catalog: unknown category")
	}
	return nil
}

// IsDiscount reports whether the rule reduces rather than adds to the bill.
func (r *ChargeRule) IsDiscount() bool {
	return r.Category == CategorySeasonalDiscount
}

func (r *ChargeRule) IsTax() bool {
	return r.Category == CategoryTax
}

// BaseAmount resolves the money value a contribution is computed from. Meal
// plans price from their PricePerDay and per-km transport rules from their
// PricePerKm; everything else uses Amount directly.
func (r *ChargeRule) BaseAmount() money.Money {
	if r.Category == CategoryMealPlan && r.MealPlan != nil {
		return r.MealPlan.PricePerDay
	}
	if r.Category == CategoryTransportation && r.Transport != nil && r.Type == ChargePerKm {
		return r.Transport.PricePerKm
	}
	return money.FromDecimal(r.Amount)
}

func (r *ChargeRule) appliesToProperty(t property.Type) bool {
	switch r.Scope {
	case "", ScopeAll:
		return true
	case ScopeRoom:
		return t == property.TypeRoom
	case ScopeVilla:
		return t == property.TypeVilla
	}
	return false
}

// Applicable filters rules for a stay: active, matching the property type,
// and for seasonal discounts intersecting the stay window. Insertion order is
// preserved; rules compose additively with no precedence between them.
func Applicable(rules []ChargeRule, propertyType property.Type, stay daterange.DateRange) []ChargeRule {
	out := make([]ChargeRule, 0, len(rules))
	for _, r := range rules {
		if !r.Active {
			continue
		}
		if !r.appliesToProperty(propertyType) {
			continue
		}
		if r.Category == CategorySeasonalDiscount {
			if r.Seasonal == nil || !stay.IntersectsWindow(r.Seasonal.StartDate, r.Seasonal.EndDate) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// BestSeasonal picks the single winning discount among applicable seasonal
// rules: highest percentage, ties broken by earliest start date.
func BestSeasonal(rules []ChargeRule) (ChargeRule, bool) {
	var best ChargeRule
	found := false
	for _, r := range rules {
		if r.Category != CategorySeasonalDiscount || r.Seasonal == nil {
			continue
		}
		if !found {
			best = r
			found = true
			continue
		}
		cmp := r.Seasonal.DiscountPercent.Cmp(best.Seasonal.DiscountPercent)
		if cmp > 0 || (cmp == 0 && r.Seasonal.StartDate.Before(best.Seasonal.StartDate)) {
			best = r
		}
	}
	return best, found
}

type Repository interface {
	ByID(ctx context.Context, id RuleID) (*ChargeRule, error)
	Save(ctx context.Context, rule *ChargeRule) error
	List(ctx context.Context) ([]ChargeRule, error)
}
