package mongo

import (
	"time"

	"github.com/shopspring/decimal"

	domaincatalog "villastay/internal/domain/catalog"
	domainpricing "villastay/internal/domain/pricing"
	"villastay/internal/domain/shared/money"
)

// Money and rate values are stored as exact decimal strings so that no
// precision is lost between computation and persistence; rounding remains a
// presentation concern.

func encMoney(m money.Money) string {
	return m.Decimal().String()
}

func decMoney(s string) money.Money {
	if s == "" {
		return money.Zero()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return money.Zero()
	}
	return money.FromDecimal(d)
}

func encDecimal(d decimal.Decimal) string {
	return d.String()
}

func decDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

type lineItemDocument struct {
	RuleID   string `bson:"rule_id"`
	Name     string `bson:"name"`
	Category string `bson:"category"`
	Type     string `bson:"charge_type"`
	Quantity int    `bson:"quantity"`
	Amount   string `bson:"amount"`
}

type breakdownDocument struct {
	RatePerNight      string             `bson:"rate_per_night"`
	Nights            int                `bson:"nights"`
	AccommodationTot  string             `bson:"accommodation_total"`
	AdditionalCharges []lineItemDocument `bson:"additional_charges"`
	Subtotal          string             `bson:"subtotal"`
	DiscountRuleID    string             `bson:"discount_rule_id,omitempty"`
	DiscountDesc      string             `bson:"discount_description,omitempty"`
	DiscountPercent   string             `bson:"discount_percent"`
	DiscountAmount    string             `bson:"discount_amount"`
	TaxRate           string             `bson:"tax_rate"`
	TaxAmount         string             `bson:"tax_amount"`
	GrandTotal        string             `bson:"grand_total"`
	ExtraChargesTotal string             `bson:"extra_charges_total"`
	AmountPaid        string             `bson:"amount_paid"`
	BalanceDue        string             `bson:"balance_due"`
}

func newBreakdownDocument(b domainpricing.Breakdown) breakdownDocument {
	items := make([]lineItemDocument, 0, len(b.AdditionalCharges))
	for _, li := range b.AdditionalCharges {
		items = append(items, lineItemDocument{
			RuleID:   li.RuleID,
			Name:     li.Name,
			Category: string(li.Category),
			Type:     string(li.Type),
			Quantity: li.Quantity,
			Amount:   encMoney(li.Amount),
		})
	}
	return breakdownDocument{
		RatePerNight:      encMoney(b.Accommodation.RatePerNight),
		Nights:            b.Accommodation.Nights,
		AccommodationTot:  encMoney(b.Accommodation.Total),
		AdditionalCharges: items,
		Subtotal:          encMoney(b.Subtotal),
		DiscountRuleID:    b.Discount.RuleID,
		DiscountDesc:      b.Discount.Description,
		DiscountPercent:   encDecimal(b.Discount.Percent),
		DiscountAmount:    encMoney(b.Discount.Amount),
		TaxRate:           encDecimal(b.Tax.Rate),
		TaxAmount:         encMoney(b.Tax.Amount),
		GrandTotal:        encMoney(b.GrandTotal),
		ExtraChargesTotal: encMoney(b.ExtraChargesTotal),
		AmountPaid:        encMoney(b.AmountPaid),
		BalanceDue:        encMoney(b.BalanceDue),
	}
}

func (d breakdownDocument) toBreakdown() domainpricing.Breakdown {
	items := make([]domainpricing.LineItem, 0, len(d.AdditionalCharges))
	for _, li := range d.AdditionalCharges {
		items = append(items, domainpricing.LineItem{
			RuleID:   li.RuleID,
			Name:     li.Name,
			Category: domaincatalog.Category(li.Category),
			Type:     domaincatalog.ChargeType(li.Type),
			Quantity: li.Quantity,
			Amount:   decMoney(li.Amount),
		})
	}
	return domainpricing.Breakdown{
		Accommodation: domainpricing.Accommodation{
			RatePerNight: decMoney(d.RatePerNight),
			Nights:       d.Nights,
			Total:        decMoney(d.AccommodationTot),
		},
		AdditionalCharges: items,
		Subtotal:          decMoney(d.Subtotal),
		Discount: domainpricing.DiscountLine{
			RuleID:      d.DiscountRuleID,
			Description: d.DiscountDesc,
			Percent:     decDecimal(d.DiscountPercent),
			Amount:      decMoney(d.DiscountAmount),
		},
		Tax: domainpricing.TaxLine{
			Rate:   decDecimal(d.TaxRate),
			Amount: decMoney(d.TaxAmount),
		},
		GrandTotal:        decMoney(d.GrandTotal),
		ExtraChargesTotal: decMoney(d.ExtraChargesTotal),
		AmountPaid:        decMoney(d.AmountPaid),
		BalanceDue:        decMoney(d.BalanceDue),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
