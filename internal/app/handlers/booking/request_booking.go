package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"villastay/internal/app/commands"
	"villastay/internal/app/handlers/support"
	"villastay/internal/app/outbox"
	"villastay/internal/app/policies"
	"villastay/internal/app/uow"
	domainbooking "villastay/internal/domain/booking"
	domainpricing "villastay/internal/domain/pricing"
	domainproperty "villastay/internal/domain/property"
	domainrange "villastay/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	CommandID  string
	PropertyID string
	GuestName  string
	GuestEmail string
	GuestPhone string
	GuestNIC   string
	CheckIn    time.Time
	CheckOut   time.Time
	Adults     int
	Children   int
	// DistanceKm feeds per-km transportation rules when the guest books a
	// pickup; zero otherwise.
	DistanceKm float64
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

// PropertyKey serializes creation per property: the availability scan and the
// insert below would otherwise race as a check-then-act window.
func (c RequestBookingCommand) PropertyKey() string { return c.PropertyID }

type RequestBookingResult struct {
	BookingID     string `json:"booking_id"`
	TotalCost     string `json:"total_cost"`
	DepositAmount string `json:"deposit_amount"`
	PaymentIntent string `json:"payment_intent,omitempty"`
}

// RequestBookingHandler gates booking creation on availability, prices the
// stay and snapshots the breakdown with its 30% deposit. The availability
// scan and the insert share one unit of work; the persistence layer's
// version check backs up the check-then-act window.
type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Outbox     outbox.Outbox
	Now        func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}

	result, err := h.handle(ctx, unit, cmd)
	if err = finish(err); err != nil {
		return nil, err
	}
	return result, nil
}

func (h *RequestBookingHandler) handle(ctx context.Context, unit uow.UnitOfWork, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, domainpricing.ErrInvalidStay
	}
	now := h.now()
	if err := domainbooking.ValidateCheckIn(dr, now); err != nil {
		return nil, err
	}

	prop, err := unit.Properties().ByID(ctx, domainproperty.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}

	existing, err := unit.Bookings().ListByProperty(ctx, prop.ID)
	if err != nil {
		return nil, err
	}
	if !domainbooking.IsRangeAvailable(existing, dr) {
		return nil, domainbooking.ErrRangeUnavailable
	}

	rules, err := unit.Rules().List(ctx)
	if err != nil {
		return nil, err
	}
	guests := domainpricing.GuestCounts{Adults: cmd.Adults, Children: cmd.Children}
	priced, err := domainpricing.PriceStay(domainpricing.StayInput{
		Property:   prop,
		Stay:       dr,
		Guests:     guests,
		DistanceKm: decimal.NewFromFloat(cmd.DistanceKm),
	}, rules)
	if err != nil {
		return nil, err
	}

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:       domainbooking.BookingID(cmd.CommandID),
		Property: prop,
		Guest: domainbooking.Guest{
			Name:  cmd.GuestName,
			Email: cmd.GuestEmail,
			Phone: cmd.GuestPhone,
			NIC:   cmd.GuestNIC,
		},
		Range:     dr,
		Guests:    guests,
		Price:     priced,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	intent := ""
	if h.Payments != nil {
		intent, err = h.Payments.CreateDepositIntent(ctx, string(b.ID), b.DepositAmount)
		if err != nil {
			return nil, err
		}
		b.PaymentIntent = intent
	}

	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}

	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return nil, err
	}

	return &RequestBookingResult{
		BookingID:     string(b.ID),
		TotalCost:     b.TotalCost.String(),
		DepositAmount: b.DepositAmount.String(),
		PaymentIntent: intent,
	}, nil
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
