package booking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "villastay/internal/domain/booking"
	domaincatalog "villastay/internal/domain/catalog"
	domainledger "villastay/internal/domain/ledger"
	domainpricing "villastay/internal/domain/pricing"
	domainproperty "villastay/internal/domain/property"
	"villastay/internal/domain/shared/money"
	"villastay/internal/infra/payments"
	"villastay/internal/infra/storage/memory"
)

var clock = func() time.Time {
	return time.Date(2026, time.December, 1, 9, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) (memory.Factory, *memory.Outbox) {
	t.Helper()
	ctx := context.Background()
	factory := memory.Factory{
		PropertyRepo: memory.NewPropertyRepository(),
		BookingRepo:  memory.NewBookingRepository(),
		RuleRepo:     memory.NewRuleRepository(),
		ChargeRepo:   memory.NewChargeRepository(),
	}
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
	return factory, memory.NewOutbox()
}

func requestCmd(id string) RequestBookingCommand {
	return RequestBookingCommand{
		CommandID:  id,
		PropertyID: "room-1",
		GuestName:  "A. Guest",
		GuestEmail: "guest@example.com",
		CheckIn:    time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, time.December, 23, 0, 0, 0, 0, time.UTC),
		Adults:     2,
	}
}

func TestRequestBookingPricesAndPersists(t *testing.T) {
	factory, box := newFixture(t)
	provider := payments.NewMemoryProvider()
	h := &RequestBookingHandler{UoWFactory: factory, Payments: provider, Outbox: box, Now: clock}

	res, err := h.Handle(context.Background(), requestCmd("b1"))
	require.NoError(t, err)

	assert.Equal(t, "b1", res.BookingID)
	assert.Equal(t, "352.00", res.TotalCost)
	assert.Equal(t, "105.60", res.DepositAmount)
	assert.NotEmpty(t, res.PaymentIntent)

	stored, err := factory.BookingRepo.ByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, stored.Status)
	assert.Equal(t, res.PaymentIntent, stored.PaymentIntent)

	records := box.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "booking.requested", records[0].Name)
	assert.Equal(t, "b1", records[0].Aggregate)
}

func TestRequestBookingRejectsOverlap(t *testing.T) {
	factory, box := newFixture(t)
	h := &RequestBookingHandler{UoWFactory: factory, Outbox: box, Now: clock}
	ctx := context.Background()

	_, err := h.Handle(ctx, requestCmd("b1"))
	require.NoError(t, err)

	overlapping := requestCmd("b2")
	overlapping.CheckIn = time.Date(2026, time.December, 22, 0, 0, 0, 0, time.UTC)
	overlapping.CheckOut = time.Date(2026, time.December, 27, 0, 0, 0, 0, time.UTC)
	_, err = h.Handle(ctx, overlapping)
	assert.ErrorIs(t, err, domainbooking.ErrRangeUnavailable)

	// Back-to-back stays share a turnover day.
	abutting := requestCmd("b3")
	abutting.CheckIn = time.Date(2026, time.December, 23, 0, 0, 0, 0, time.UTC)
	abutting.CheckOut = time.Date(2026, time.December, 27, 0, 0, 0, 0, time.UTC)
	_, err = h.Handle(ctx, abutting)
	assert.NoError(t, err)
}

func TestRequestBookingValidation(t *testing.T) {
	factory, box := newFixture(t)
	h := &RequestBookingHandler{UoWFactory: factory, Outbox: box, Now: clock}
	ctx := context.Background()

	t.Run("zero night stay", func(t *testing.T) {
		cmd := requestCmd("b1")
		cmd.CheckOut = cmd.CheckIn
		_, err := h.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainpricing.ErrInvalidStay)
	})

	t.Run("check-in in past", func(t *testing.T) {
		cmd := requestCmd("b1")
		cmd.CheckIn = time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
		cmd.CheckOut = time.Date(2026, time.November, 4, 0, 0, 0, 0, time.UTC)
		_, err := h.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainbooking.ErrCheckInInPast)
	})

	t.Run("unknown property", func(t *testing.T) {
		cmd := requestCmd("b1")
		cmd.PropertyID = "nope"
		_, err := h.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainproperty.ErrNotFound)
	})

	t.Run("over capacity", func(t *testing.T) {
		cmd := requestCmd("b1")
		cmd.Adults = 5
		_, err := h.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainbooking.ErrOverCapacity)
	})
}

func TestLifecycleHandlerTransitions(t *testing.T) {
	factory, box := newFixture(t)
	provider := payments.NewMemoryProvider()
	request := &RequestBookingHandler{UoWFactory: factory, Payments: provider, Outbox: box, Now: clock}
	lifecycle := &LifecycleHandler{UoWFactory: factory, Payments: provider, Outbox: box, Now: clock}
	ctx := context.Background()

	res, err := request.Handle(ctx, requestCmd("b1"))
	require.NoError(t, err)

	b, err := lifecycle.ConfirmDeposit(ctx, ConfirmDepositCommand{BookingID: "b1", PaymentIntent: res.PaymentIntent})
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, b.Status)
	assert.Equal(t, "105.60", b.AmountPaid.String())
	assert.True(t, provider.Captured(res.PaymentIntent))

	b, err = lifecycle.CheckIn(ctx, CheckInCommand{BookingID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCheckedIn, b.Status)

	b, err = lifecycle.RecordPayment(ctx, RecordPaymentCommand{BookingID: "b1", Amount: money.Must("246.40")})
	require.NoError(t, err)
	assert.Equal(t, "352.00", b.AmountPaid.String())
}

func TestCancelRefundsThroughProvider(t *testing.T) {
	factory, box := newFixture(t)
	provider := payments.NewMemoryProvider()
	request := &RequestBookingHandler{UoWFactory: factory, Payments: provider, Outbox: box, Now: clock}
	lifecycle := &LifecycleHandler{UoWFactory: factory, Payments: provider, Outbox: box, Now: clock}
	ctx := context.Background()

	res, err := request.Handle(ctx, requestCmd("b1"))
	require.NoError(t, err)
	_, err = lifecycle.ConfirmDeposit(ctx, ConfirmDepositCommand{BookingID: "b1", PaymentIntent: res.PaymentIntent})
	require.NoError(t, err)

	// Cancelling on Dec 1 for a Dec 20 check-in is outside the 7 day window.
	out, err := lifecycle.Cancel(ctx, CancelBookingCommand{BookingID: "b1", Reason: "plans changed"})
	require.NoError(t, err)
	assert.Equal(t, "105.60", out.Refund)
	assert.Equal(t, "105.60", provider.RefundedTo("b1").String())

	stored, err := factory.BookingRepo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, stored.Status)

	// The dates are free again.
	again := requestCmd("b2")
	_, err = request.Handle(ctx, again)
	assert.NoError(t, err)
}

func TestRemoveBookingCascadesCharges(t *testing.T) {
	factory, box := newFixture(t)
	request := &RequestBookingHandler{UoWFactory: factory, Outbox: box, Now: clock}
	lifecycle := &LifecycleHandler{UoWFactory: factory, Outbox: box, Now: clock}
	ctx := context.Background()

	_, err := request.Handle(ctx, requestCmd("b1"))
	require.NoError(t, err)

	// Removal is for closed records only.
	_, err = lifecycle.Remove(ctx, RemoveBookingCommand{BookingID: "b1"})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidState)

	charge, err := domainledger.New(domainledger.NewChargeParams{
		ID:        "c1",
		BookingID: "b1",
		Name:      "Minibar restock",
		Type:      domaincatalog.ChargeFixed,
		Amount:    decimal.NewFromInt(12),
		CreatedAt: clock(),
	})
	require.NoError(t, err)
	require.NoError(t, factory.ChargeRepo.Save(ctx, charge))

	_, err = lifecycle.Cancel(ctx, CancelBookingCommand{BookingID: "b1"})
	require.NoError(t, err)
	_, err = lifecycle.Remove(ctx, RemoveBookingCommand{BookingID: "b1"})
	require.NoError(t, err)

	_, err = factory.BookingRepo.ByID(ctx, "b1")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
	left, err := factory.ChargeRepo.ListByBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestGetAndListQueries(t *testing.T) {
	factory, box := newFixture(t)
	request := &RequestBookingHandler{UoWFactory: factory, Outbox: box, Now: clock}
	lifecycle := &LifecycleHandler{UoWFactory: factory, Now: clock}
	ctx := context.Background()

	_, err := request.Handle(ctx, requestCmd("b1"))
	require.NoError(t, err)

	b, err := lifecycle.Get(ctx, GetBookingQuery{BookingID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, domainbooking.BookingID("b1"), b.ID)

	list, err := lifecycle.ListByGuest(ctx, ListGuestBookingsQuery{Email: "guest@example.com"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = lifecycle.Get(ctx, GetBookingQuery{BookingID: "missing"})
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}
