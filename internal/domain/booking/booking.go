package booking

import (
	"context"
	"errors"
	"time"

	"villastay/internal/domain/pricing"
	"villastay/internal/domain/property"
	"villastay/internal/domain/shared/daterange"
	"villastay/internal/domain/shared/events"
	"villastay/internal/domain/shared/money"
)

var (
	ErrNotFound           = errors.New("booking: not found")
	ErrInvalidGuests      = errors.New("booking: at least one adult guest is required")
	ErrInvalidState       = errors.New("booking: invalid state transition")
	ErrRangeUnavailable   = errors.New("booking: date range overlaps an existing booking")
	ErrOutstandingBalance = errors.New("booking: outstanding balance must be settled before checkout")
	ErrCheckInInPast      = errors.New("booking: check-in date is in the past")
	ErrOverCapacity       = errors.New("booking: guest count exceeds property capacity")
)

type BookingID string

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
)

// Blocks reports whether a booking in this status holds its dates against
// other candidates.
func (s Status) Blocks() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}

// Guest is the customer identity captured on the booking form.
type Guest struct {
	Name  string
	Email string
	Phone string
	NIC   string
}

// Booking is the aggregate root for a stay. Price is the breakdown snapshot
// taken at creation; TotalCost and DepositAmount are denormalized from it and
// never recomputed when extra charges accrue later.
type Booking struct {
	ID            BookingID
	PropertyID    property.PropertyID
	PropertyType  property.Type
	Guest         Guest
	Range         daterange.DateRange
	Guests        pricing.GuestCounts
	Price         pricing.Breakdown
	TotalCost     money.Money
	DepositAmount money.Money
	AmountPaid    money.Money
	Status        Status
	PaymentIntent string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	// ListByProperty returns every booking for a property regardless of
	// status; callers filter with Status.Blocks.
	ListByProperty(ctx context.Context, id property.PropertyID) ([]*Booking, error)
	ListByGuestEmail(ctx context.Context, email string) ([]*Booking, error)
	Delete(ctx context.Context, id BookingID) error
}

// IsRangeAvailable reports whether the candidate range is free of conflicts
// with the given bookings. Two half-open ranges [s1,e1) and [s2,e2) conflict
// iff s1 < e2 and s2 < e1, so a candidate that exactly abuts an existing
// range is allowed. Cancelled and checked-out bookings never block. Pure
// predicate; callers evaluate it inside the same transaction that inserts
// the booking.
func IsRangeAvailable(existing []*Booking, candidate daterange.DateRange) bool {
	if candidate.Validate() != nil {
		return false
	}
	for _, b := range existing {
		if !b.Status.Blocks() {
			continue
		}
		if b.Range.Overlaps(candidate) {
			return false
		}
	}
	return true
}

// ValidateCheckIn rejects stays starting before today.
func ValidateCheckIn(dr daterange.DateRange, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if dr.CheckIn.Before(today) {
		return ErrCheckInInPast
	}
	return nil
}

type CreateParams struct {
	ID        BookingID
	Property  *property.Property
	Guest     Guest
	Range     daterange.DateRange
	Guests    pricing.GuestCounts
	Price     pricing.Breakdown
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.Guests.Adults <= 0 || params.Guests.Children < 0 {
		return nil, ErrInvalidGuests
	}
	if params.Property == nil {
		return nil, pricing.ErrMissingProperty
	}
	if params.Guests.Total() > params.Property.Capacity {
		return nil, ErrOverCapacity
	}
	if err := params.Range.Validate(); err != nil {
		return nil, pricing.ErrInvalidStay
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:            params.ID,
		PropertyID:    params.Property.ID,
		PropertyType:  params.Property.Type,
		Guest:         params.Guest,
		Range:         params.Range,
		Guests:        params.Guests,
		Price:         params.Price.Copy(),
		TotalCost:     params.Price.GrandTotal,
		DepositAmount: params.Price.Deposit(),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(BookingRequested{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		Guest:      b.Guest.Email,
		Range:      b.Range,
		Total:      b.TotalCost,
		Deposit:    b.DepositAmount,
		At:         now,
	})
	return b, nil
}

// ConfirmDeposit records the deposit payment and moves the booking to
// confirmed. The payment intent reference ties back to the external payment
// provider.
func (b *Booking) ConfirmDeposit(paymentIntent string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.PaymentIntent = paymentIntent
	b.AmountPaid = b.AmountPaid.Add(b.DepositAmount)
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, PropertyID: b.PropertyID, Deposit: b.DepositAmount, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckIn(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCheckedIn
	b.UpdatedAt = now.UTC()
	b.Record(GuestCheckedIn{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// RecordPayment accumulates a partial payment into AmountPaid.
func (b *Booking) RecordPayment(amount money.Money, now time.Time) error {
	if !amount.IsPositive() {
		return errors.New("booking: payment amount must be positive")
	}
	switch b.Status {
	case StatusCancelled, StatusCheckedOut:
		return ErrInvalidState
	}
	b.AmountPaid = b.AmountPaid.Add(amount)
	b.UpdatedAt = now.UTC()
	b.Record(PaymentRecorded{BookingID: b.ID, Amount: amount, At: b.UpdatedAt})
	return nil
}

// FinalizeCheckout transitions to checked_out. The caller supplies the
// balance due from a freshly assembled invoice; any outstanding balance
// blocks finalization.
func (b *Booking) FinalizeCheckout(balanceDue money.Money, now time.Time) error {
	if b.Status != StatusCheckedIn {
		return ErrInvalidState
	}
	if balanceDue.IsPositive() {
		return ErrOutstandingBalance
	}
	b.Status = StatusCheckedOut
	b.UpdatedAt = now.UTC()
	b.Record(GuestCheckedOut{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// Cancel releases the dates. Reachable from pending and confirmed only; the
// refund of the deposit follows the policy tiers.
func (b *Booking) Cancel(reason string, now time.Time) (money.Money, error) {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return money.Zero(), ErrInvalidState
	}
	refund := RefundForCancellation(b.AmountPaid, now, b.Range.CheckIn)
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Refund: refund, Reason: reason, At: b.UpdatedAt})
	return refund, nil
}
