package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"villastay/internal/domain/catalog"
	"villastay/internal/domain/shared/money"
)

var (
	ErrChargeNotFound  = errors.New("ledger: extra charge not found")
	ErrInvalidQuantity = errors.New("ledger: quantity must be at least 1")
	ErrInvalidType     = errors.New("ledger: charge type not allowed for extra charges")
	ErrNegativeAmount  = errors.New("ledger: amount cannot be negative")
)

type ChargeID string

// ExtraCharge is an ad hoc charge attached to one booking after creation,
// typically during the stay or at checkout. Amount and type are immutable
// once created; corrections are remove-and-re-add so the trail stays
// auditable. Only the quantity may change.
type ExtraCharge struct {
	ID          ChargeID
	BookingID   string
	Name        string
	Description string
	Type        catalog.ChargeType
	// Amount holds currency units, or percentage points for percentage
	// charges.
	Amount    decimal.Decimal
	Quantity  int
	CreatedAt time.Time
}

// allowedTypes are the four charge types an extra charge may use. Per-km is
// excluded: an extra charge carries no distance context, so transport extras
// arrive as fixed amounts computed by the front desk.
func allowedType(t catalog.ChargeType) bool {
	switch t {
	case catalog.ChargeFixed, catalog.ChargePercentage, catalog.ChargePerDay, catalog.ChargePerPerson:
		return true
	}
	return false
}

type NewChargeParams struct {
	ID          ChargeID
	BookingID   string
	Name        string
	Description string
	Type        catalog.ChargeType
	Amount      decimal.Decimal
	Quantity    int
	CreatedAt   time.Time
}

func New(params NewChargeParams) (*ExtraCharge, error) {
	if params.Quantity == 0 {
		params.Quantity = 1
	}
	if params.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if !allowedType(params.Type) {
		return nil, ErrInvalidType
	}
	if params.Amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if params.BookingID == "" {
		return nil, errors.New("ledger: booking id required")
	}
	if params.Name == "" {
		return nil, errors.New("ledger: name required")
	}
	return &ExtraCharge{
		ID:          params.ID,
		BookingID:   params.BookingID,
		Name:        params.Name,
		Description: params.Description,
		Type:        params.Type,
		Amount:      params.Amount,
		Quantity:    params.Quantity,
		CreatedAt:   params.CreatedAt.UTC(),
	}, nil
}

// FromRule copies name, amount and type from a catalog rule; quantity
// defaults to 1.
func FromRule(id ChargeID, bookingID string, rule *catalog.ChargeRule, quantity int, now time.Time) (*ExtraCharge, error) {
	if rule == nil || !rule.Active {
		return nil, catalog.ErrUnknownRule
	}
	return New(NewChargeParams{
		ID:          id,
		BookingID:   bookingID,
		Name:        rule.Name,
		Description: rule.Description,
		Type:        rule.Type,
		Amount:      rule.BaseAmount().Decimal(),
		Quantity:    quantity,
		CreatedAt:   now,
	})
}

func (c *ExtraCharge) UpdateQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	c.Quantity = quantity
	return nil
}

// Total computes the charge against the priced grand total. Percentage extra
// charges are deliberately referenced against the accommodation-plus-catalog
// grand total, the larger base, since they are typically added after the
// other charges are known.
func (c *ExtraCharge) Total(pricedGrandTotal money.Money) money.Money {
	if c.Type == catalog.ChargePercentage {
		return pricedGrandTotal.Percent(c.Amount).MulInt(int64(c.Quantity))
	}
	return money.FromDecimal(c.Amount).MulInt(int64(c.Quantity))
}

// TotalFor sums every charge in the list against the priced grand total.
func TotalFor(charges []*ExtraCharge, pricedGrandTotal money.Money) money.Money {
	total := money.Zero()
	for _, c := range charges {
		total = total.Add(c.Total(pricedGrandTotal))
	}
	return total
}

type Repository interface {
	ByID(ctx context.Context, id ChargeID) (*ExtraCharge, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*ExtraCharge, error)
	Save(ctx context.Context, charge *ExtraCharge) error
	Delete(ctx context.Context, id ChargeID) error
	// DeleteByBooking cascades when a booking is removed.
	DeleteByBooking(ctx context.Context, bookingID string) error
}
