package policies

import (
	"context"

	"villastay/internal/domain/shared/money"
)

// PaymentsPort fronts the external payment provider (Stripe). The engine
// never talks to the provider directly; it only surfaces the deposit amount
// for intent creation and records captured payments.
type PaymentsPort interface {
	CreateDepositIntent(ctx context.Context, bookingID string, amount money.Money) (string, error)
	Capture(ctx context.Context, intentID string) error
	Refund(ctx context.Context, bookingID string, amount money.Money) error
}
