package charges

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"villastay/internal/app/handlers/support"
	"villastay/internal/app/uow"
	domainbooking "villastay/internal/domain/booking"
	domaincatalog "villastay/internal/domain/catalog"
	domainledger "villastay/internal/domain/ledger"
)

const (
	addChargeKey      = "charges.add"
	updateQuantityKey = "charges.update_quantity"
	removeChargeKey   = "charges.remove"
)

// AddChargeCommand attaches an extra charge to a booking, either copied from
// a catalog rule (RuleID set) or fully custom.
type AddChargeCommand struct {
	ChargeID    string
	BookingID   string
	RuleID      string
	Name        string
	Description string
	ChargeType  domaincatalog.ChargeType
	Amount      decimal.Decimal
	Quantity    int
}

func (c AddChargeCommand) Key() string        { return addChargeKey }
func (c AddChargeCommand) BookingKey() string { return c.BookingID }

type UpdateQuantityCommand struct {
	ChargeID  string
	BookingID string
	Quantity  int
}

func (c UpdateQuantityCommand) Key() string        { return updateQuantityKey }
func (c UpdateQuantityCommand) BookingKey() string { return c.BookingID }

type RemoveChargeCommand struct {
	ChargeID  string
	BookingID string
}

func (c RemoveChargeCommand) Key() string        { return removeChargeKey }
func (c RemoveChargeCommand) BookingKey() string { return c.BookingID }

// Handler mutates a booking's extra-charge list. Commands are BookingScoped
// so the bus serializes edits per booking; the handler itself only validates
// and persists.
type Handler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *Handler) Add(ctx context.Context, cmd AddChargeCommand) (*domainledger.ExtraCharge, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	charge, err := h.add(ctx, unit, cmd)
	if err = finish(err); err != nil {
		return nil, err
	}
	return charge, nil
}

func (h *Handler) add(ctx context.Context, unit uow.UnitOfWork, cmd AddChargeCommand) (*domainledger.ExtraCharge, error) {
	if _, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID)); err != nil {
		return nil, err
	}

	var charge *domainledger.ExtraCharge
	var err error
	if cmd.RuleID != "" {
		var rule *domaincatalog.ChargeRule
		rule, err = unit.Rules().ByID(ctx, domaincatalog.RuleID(cmd.RuleID))
		if err != nil {
			return nil, domaincatalog.ErrUnknownRule
		}
		charge, err = domainledger.FromRule(domainledger.ChargeID(cmd.ChargeID), cmd.BookingID, rule, cmd.Quantity, h.now())
	} else {
		charge, err = domainledger.New(domainledger.NewChargeParams{
			ID:          domainledger.ChargeID(cmd.ChargeID),
			BookingID:   cmd.BookingID,
			Name:        cmd.Name,
			Description: cmd.Description,
			Type:        cmd.ChargeType,
			Amount:      cmd.Amount,
			Quantity:    cmd.Quantity,
			CreatedAt:   h.now(),
		})
	}
	if err != nil {
		return nil, err
	}
	if err := unit.Charges().Save(ctx, charge); err != nil {
		return nil, err
	}
	return charge, nil
}

func (h *Handler) UpdateQuantity(ctx context.Context, cmd UpdateQuantityCommand) (*domainledger.ExtraCharge, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	charge, err := h.updateQuantity(ctx, unit, cmd)
	if err = finish(err); err != nil {
		return nil, err
	}
	return charge, nil
}

func (h *Handler) updateQuantity(ctx context.Context, unit uow.UnitOfWork, cmd UpdateQuantityCommand) (*domainledger.ExtraCharge, error) {
	charge, err := unit.Charges().ByID(ctx, domainledger.ChargeID(cmd.ChargeID))
	if err != nil {
		return nil, err
	}
	if err := charge.UpdateQuantity(cmd.Quantity); err != nil {
		return nil, err
	}
	if err := unit.Charges().Save(ctx, charge); err != nil {
		return nil, err
	}
	return charge, nil
}

func (h *Handler) Remove(ctx context.Context, cmd RemoveChargeCommand) (struct{}, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return struct{}{}, err
	}
	_, err = unit.Charges().ByID(ctx, domainledger.ChargeID(cmd.ChargeID))
	if err == nil {
		err = unit.Charges().Delete(ctx, domainledger.ChargeID(cmd.ChargeID))
	}
	return struct{}{}, finish(err)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}
