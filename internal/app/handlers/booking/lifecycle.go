package booking

import (
	"context"
	"time"

	"villastay/internal/app/handlers/support"
	"villastay/internal/app/outbox"
	"villastay/internal/app/policies"
	"villastay/internal/app/uow"
	domainbooking "villastay/internal/domain/booking"
	"villastay/internal/domain/shared/money"
)

const (
	confirmDepositKey = "booking.confirm_deposit"
	checkInKey        = "booking.check_in"
	cancelBookingKey  = "booking.cancel"
	recordPaymentKey  = "booking.record_payment"
	removeBookingKey  = "booking.remove"
)

type ConfirmDepositCommand struct {
	BookingID     string
	PaymentIntent string
}

func (c ConfirmDepositCommand) Key() string        { return confirmDepositKey }
func (c ConfirmDepositCommand) BookingKey() string { return c.BookingID }

type CheckInCommand struct {
	BookingID string
}

func (c CheckInCommand) Key() string        { return checkInKey }
func (c CheckInCommand) BookingKey() string { return c.BookingID }

type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string        { return cancelBookingKey }
func (c CancelBookingCommand) BookingKey() string { return c.BookingID }

type CancelBookingResult struct {
	Refund string `json:"refund"`
}

// RemoveBookingCommand purges a closed booking record. Only cancelled and
// checked-out bookings can be removed; removal cascades to the booking's
// extra charges so no orphaned ledger rows remain.
type RemoveBookingCommand struct {
	BookingID string
}

func (c RemoveBookingCommand) Key() string        { return removeBookingKey }
func (c RemoveBookingCommand) BookingKey() string { return c.BookingID }

type RecordPaymentCommand struct {
	BookingID string
	Amount    money.Money
}

func (c RecordPaymentCommand) Key() string        { return recordPaymentKey }
func (c RecordPaymentCommand) BookingKey() string { return c.BookingID }

// LifecycleHandler owns the deposit/check-in/cancel/payment transitions. All
// mutations load the aggregate, apply the transition and save through the
// same unit of work, relying on the repository version check against
// concurrent edits.
type LifecycleHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Now        func() time.Time
}

func (h *LifecycleHandler) ConfirmDeposit(ctx context.Context, cmd ConfirmDepositCommand) (*domainbooking.Booking, error) {
	return h.mutate(ctx, cmd.BookingID, func(ctx context.Context, b *domainbooking.Booking) error {
		if err := b.ConfirmDeposit(cmd.PaymentIntent, h.now()); err != nil {
			return err
		}
		if h.Payments != nil && cmd.PaymentIntent != "" {
			return h.Payments.Capture(ctx, cmd.PaymentIntent)
		}
		return nil
	})
}

func (h *LifecycleHandler) CheckIn(ctx context.Context, cmd CheckInCommand) (*domainbooking.Booking, error) {
	return h.mutate(ctx, cmd.BookingID, func(_ context.Context, b *domainbooking.Booking) error {
		return b.CheckIn(h.now())
	})
}

func (h *LifecycleHandler) Cancel(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
	var refund money.Money
	_, err := h.mutate(ctx, cmd.BookingID, func(ctx context.Context, b *domainbooking.Booking) error {
		var err error
		refund, err = b.Cancel(cmd.Reason, h.now())
		if err != nil {
			return err
		}
		if h.Payments != nil && refund.IsPositive() {
			return h.Payments.Refund(ctx, string(b.ID), refund)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CancelBookingResult{Refund: refund.String()}, nil
}

func (h *LifecycleHandler) RecordPayment(ctx context.Context, cmd RecordPaymentCommand) (*domainbooking.Booking, error) {
	return h.mutate(ctx, cmd.BookingID, func(_ context.Context, b *domainbooking.Booking) error {
		return b.RecordPayment(cmd.Amount, h.now())
	})
}

func (h *LifecycleHandler) Remove(ctx context.Context, cmd RemoveBookingCommand) (struct{}, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return struct{}{}, err
	}
	return struct{}{}, finish(h.remove(ctx, unit, cmd))
}

func (h *LifecycleHandler) remove(ctx context.Context, unit uow.UnitOfWork, cmd RemoveBookingCommand) error {
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return err
	}
	switch b.Status {
	case domainbooking.StatusCancelled, domainbooking.StatusCheckedOut:
	default:
		return domainbooking.ErrInvalidState
	}
	if err := unit.Charges().DeleteByBooking(ctx, cmd.BookingID); err != nil {
		return err
	}
	return unit.Bookings().Delete(ctx, domainbooking.BookingID(cmd.BookingID))
}

func (h *LifecycleHandler) mutate(ctx context.Context, id string, fn func(context.Context, *domainbooking.Booking) error) (*domainbooking.Booking, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	b, err := h.apply(ctx, unit, id, fn)
	if err = finish(err); err != nil {
		return nil, err
	}
	return b, nil
}

func (h *LifecycleHandler) apply(ctx context.Context, unit uow.UnitOfWork, id string, fn func(context.Context, *domainbooking.Booking) error) (*domainbooking.Booking, error) {
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(id))
	if err != nil {
		return nil, err
	}
	if err := fn(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return nil, err
	}
	return b, nil
}

func (h *LifecycleHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}
