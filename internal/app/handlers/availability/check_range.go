package availability

import (
	"context"
	"time"

	"villastay/internal/app/handlers/support"
	"villastay/internal/app/uow"
	domainbooking "villastay/internal/domain/booking"
	domainpricing "villastay/internal/domain/pricing"
	domainproperty "villastay/internal/domain/property"
	domainrange "villastay/internal/domain/shared/daterange"
)

const checkRangeKey = "availability.check_range"

type CheckRangeQuery struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
}

func (q CheckRangeQuery) Key() string { return checkRangeKey }

type CheckRangeResult struct {
	Available bool `json:"available"`
	Nights    int  `json:"nights"`
}

// Handler answers the public search form's "are these dates free" question.
// Booking creation re-checks inside its own transaction; this read is only
// advisory.
type Handler struct {
	UoWFactory uow.UoWFactory
}

func (h *Handler) CheckRange(ctx context.Context, q CheckRangeQuery) (CheckRangeResult, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return CheckRangeResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return CheckRangeResult{}, domainpricing.ErrInvalidStay
	}
	if _, err := unit.Properties().ByID(ctx, domainproperty.PropertyID(q.PropertyID)); err != nil {
		return CheckRangeResult{}, err
	}
	existing, err := unit.Bookings().ListByProperty(ctx, domainproperty.PropertyID(q.PropertyID))
	if err != nil {
		return CheckRangeResult{}, err
	}
	return CheckRangeResult{
		Available: domainbooking.IsRangeAvailable(existing, dr),
		Nights:    dr.Nights(),
	}, nil
}
