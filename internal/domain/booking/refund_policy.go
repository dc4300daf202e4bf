package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"villastay/internal/domain/shared/money"
)

const (
	fullRefundDays  = 7
	halfRefundHours = 48
)

var halfRate = decimal.NewFromInt(50)

// RefundForCancellation applies the platform's refund tiers to the amount
// paid so far: full refund when cancelling at least seven days before
// check-in, half refund up to 48 hours before, nothing after that.
func RefundForCancellation(paid money.Money, cancelAt, checkIn time.Time) money.Money {
	if !paid.IsPositive() {
		return money.Zero()
	}
	cancelAt = cancelAt.UTC()
	lead := checkIn.Sub(cancelAt)
	switch {
	case lead >= fullRefundDays*24*time.Hour:
		return paid
	case lead >= halfRefundHours*time.Hour:
		return paid.Percent(halfRate)
	default:
		return money.Zero()
	}
}
