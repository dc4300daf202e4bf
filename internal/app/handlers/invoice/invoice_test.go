package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookinghandlers "villastay/internal/app/handlers/booking"
	chargeshandlers "villastay/internal/app/handlers/charges"
	domainbooking "villastay/internal/domain/booking"
	domaincatalog "villastay/internal/domain/catalog"
	domaininvoice "villastay/internal/domain/invoice"
	domainproperty "villastay/internal/domain/property"
	"villastay/internal/domain/shared/money"
	"villastay/internal/infra/payments"
	"villastay/internal/infra/storage/memory"
	"villastay/internal/infra/storage/s3"
)

var clock = func() time.Time {
	return time.Date(2026, time.December, 23, 11, 0, 0, 0, time.UTC)
}

// checkedInBooking walks b1 through request, deposit and check-in so the
// invoice tests start from a guest in residence. Totals match the standard
// $100/night x 3 nights + $20 fee + 10% tax stay: grand total 352.00 with a
// 105.60 deposit already paid.
func checkedInBooking(t *testing.T) (memory.Factory, *memory.Outbox, *chargeshandlers.Handler) {
	t.Helper()
	ctx := context.Background()
	factory := memory.Factory{
		PropertyRepo: memory.NewPropertyRepository(),
		BookingRepo:  memory.NewBookingRepository(),
		RuleRepo:     memory.NewRuleRepository(),
		ChargeRepo:   memory.NewChargeRepository(),
	}
	box := memory.NewOutbox()
	require.NoError(t, factory.PropertyRepo.Save(ctx, &domainproperty.Property{
		ID: "room-1", Type: domainproperty.TypeRoom, Name: "Garden Room",
		NightlyRate: money.Must("100"), Capacity: 4,
	}))
	require.NoError(t, factory.RuleRepo.Save(ctx, &domaincatalog.ChargeRule{
		ID: "cleaning", Name: "Cleaning fee",
		Category: domaincatalog.CategoryFee, Type: domaincatalog.ChargeFixed,
		Amount: decimal.NewFromInt(20), Active: true, CreatedAt: clock(),
	}))
	require.NoError(t, factory.RuleRepo.Save(ctx, &domaincatalog.ChargeRule{
		ID: "vat", Name: "VAT",
		Category: domaincatalog.CategoryTax, Type: domaincatalog.ChargePercentage,
		Amount: decimal.NewFromInt(10), Active: true, CreatedAt: clock(),
	}))

	requestAt := func() time.Time {
		return time.Date(2026, time.December, 1, 9, 0, 0, 0, time.UTC)
	}
	provider := payments.NewMemoryProvider()
	request := &bookinghandlers.RequestBookingHandler{UoWFactory: factory, Payments: provider, Outbox: box, Now: requestAt}
	res, err := request.Handle(ctx, bookinghandlers.RequestBookingCommand{
		CommandID:  "b1",
		PropertyID: "room-1",
		GuestName:  "A. Guest",
		GuestEmail: "guest@example.com",
		CheckIn:    time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, time.December, 23, 0, 0, 0, 0, time.UTC),
		Adults:     2,
	})
	require.NoError(t, err)

	lifecycle := &bookinghandlers.LifecycleHandler{UoWFactory: factory, Payments: provider, Outbox: box, Now: clock}
	_, err = lifecycle.ConfirmDeposit(ctx, bookinghandlers.ConfirmDepositCommand{BookingID: "b1", PaymentIntent: res.PaymentIntent})
	require.NoError(t, err)
	_, err = lifecycle.CheckIn(ctx, bookinghandlers.CheckInCommand{BookingID: "b1"})
	require.NoError(t, err)

	return factory, box, &chargeshandlers.Handler{UoWFactory: factory, Now: clock}
}

func TestGetInvoiceReflectsCharges(t *testing.T) {
	factory, box, charges := checkedInBooking(t)
	h := &Handler{UoWFactory: factory, Outbox: box, Now: clock}
	ctx := context.Background()

	doc, err := h.Get(ctx, GetInvoiceQuery{BookingID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, "352.00", doc.Breakdown.GrandTotal.String())
	assert.Equal(t, "246.40", doc.Breakdown.BalanceDue.String())
	assert.Empty(t, doc.ExtraCharges)

	_, err = charges.Add(ctx, chargeshandlers.AddChargeCommand{
		ChargeID:   "c1",
		BookingID:  "b1",
		Name:       "Minibar restock",
		ChargeType: domaincatalog.ChargePercentage,
		Amount:     decimal.NewFromInt(5),
		Quantity:   2,
	})
	require.NoError(t, err)

	doc, err = h.Get(ctx, GetInvoiceQuery{BookingID: "b1"})
	require.NoError(t, err)
	require.Len(t, doc.ExtraCharges, 1)
	assert.Equal(t, "35.20", doc.ExtraCharges[0].Total.String())
	assert.Equal(t, "387.20", doc.Breakdown.GrandTotal.String())
	assert.Equal(t, "281.60", doc.Breakdown.BalanceDue.String())
}

func TestFinalizeCheckoutRequiresSettledBalance(t *testing.T) {
	factory, box, charges := checkedInBooking(t)
	h := &Handler{UoWFactory: factory, Archiver: s3.NoopArchiver{}, Outbox: box, Now: clock}
	lifecycle := &bookinghandlers.LifecycleHandler{UoWFactory: factory, Outbox: box, Now: clock}
	ctx := context.Background()

	_, err := charges.Add(ctx, chargeshandlers.AddChargeCommand{
		ChargeID:   "c1",
		BookingID:  "b1",
		Name:       "Airport drop-off",
		ChargeType: domaincatalog.ChargeFixed,
		Amount:     decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	_, err = h.FinalizeCheckout(ctx, FinalizeCheckoutCommand{BookingID: "b1"})
	assert.ErrorIs(t, err, domainbooking.ErrOutstandingBalance)

	// 352.00 + 30.00 less the 105.60 deposit already captured.
	_, err = lifecycle.RecordPayment(ctx, bookinghandlers.RecordPaymentCommand{BookingID: "b1", Amount: money.Must("276.40")})
	require.NoError(t, err)

	res, err := h.FinalizeCheckout(ctx, FinalizeCheckoutCommand{BookingID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, "382.00", res.Invoice.Breakdown.GrandTotal.String())
	assert.Equal(t, "0.00", res.Invoice.Breakdown.BalanceDue.String())
	assert.Equal(t, "memory://invoices/b1", res.Location)

	stored, err := factory.BookingRepo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCheckedOut, stored.Status)

	names := make([]string, 0, 4)
	for _, rec := range box.Records() {
		names = append(names, rec.Name)
	}
	assert.Contains(t, names, "booking.checked_out")
	assert.Contains(t, names, "invoice.finalized")
}

type failingArchiver struct{}

func (failingArchiver) Archive(ctx context.Context, doc domaininvoice.Document) (string, error) {
	return "", errors.New("archive store unreachable")
}

func TestFinalizeCheckoutArchiveFailureLeavesBookingCheckedIn(t *testing.T) {
	factory, box, _ := checkedInBooking(t)
	lifecycle := &bookinghandlers.LifecycleHandler{UoWFactory: factory, Outbox: box, Now: clock}
	ctx := context.Background()

	_, err := lifecycle.RecordPayment(ctx, bookinghandlers.RecordPaymentCommand{BookingID: "b1", Amount: money.Must("246.40")})
	require.NoError(t, err)

	broken := &Handler{UoWFactory: factory, Archiver: failingArchiver{}, Outbox: box, Now: clock}
	_, err = broken.FinalizeCheckout(ctx, FinalizeCheckoutCommand{BookingID: "b1"})
	require.Error(t, err)

	stored, err := factory.BookingRepo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCheckedIn, stored.Status)

	// Checkout is retryable once the archive store recovers.
	working := &Handler{UoWFactory: factory, Archiver: s3.NoopArchiver{}, Outbox: box, Now: clock}
	_, err = working.FinalizeCheckout(ctx, FinalizeCheckoutCommand{BookingID: "b1"})
	require.NoError(t, err)
}

func TestFinalizeCheckoutOnlyFromCheckedIn(t *testing.T) {
	factory, box, _ := checkedInBooking(t)
	h := &Handler{UoWFactory: factory, Outbox: box, Now: clock}
	lifecycle := &bookinghandlers.LifecycleHandler{UoWFactory: factory, Outbox: box, Now: clock}
	ctx := context.Background()

	_, err := lifecycle.RecordPayment(ctx, bookinghandlers.RecordPaymentCommand{BookingID: "b1", Amount: money.Must("246.40")})
	require.NoError(t, err)
	_, err = h.FinalizeCheckout(ctx, FinalizeCheckoutCommand{BookingID: "b1"})
	require.NoError(t, err)

	// A second checkout finds the booking already checked out.
	_, err = h.FinalizeCheckout(ctx, FinalizeCheckoutCommand{BookingID: "b1"})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidState)
}
