package booking

import (
	"context"

	"villastay/internal/app/handlers/support"
	domainbooking "villastay/internal/domain/booking"
)

const (
	getBookingKey        = "booking.get"
	listGuestBookingsKey = "booking.list_by_guest"
)

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

// ListGuestBookingsQuery returns the stay history for one guest email.
type ListGuestBookingsQuery struct {
	Email string
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

func (h *LifecycleHandler) Get(ctx context.Context, q GetBookingQuery) (*domainbooking.Booking, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
}

func (h *LifecycleHandler) ListByGuest(ctx context.Context, q ListGuestBookingsQuery) ([]*domainbooking.Booking, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return unit.Bookings().ListByGuestEmail(ctx, q.Email)
}
