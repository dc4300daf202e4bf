package memory

import (
	"context"
	"errors"

	"villastay/internal/app/uow"
	domainbooking "villastay/internal/domain/booking"
	domaincatalog "villastay/internal/domain/catalog"
	domainledger "villastay/internal/domain/ledger"
	domainproperty "villastay/internal/domain/property"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertyRepo domainproperty.Repository
	BookingRepo  domainbooking.Repository
	RuleRepo     domaincatalog.Repository
	ChargeRepo   domainledger.Repository
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports; the booking version
// check covers the races that matter here.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertyRepo == nil || f.BookingRepo == nil || f.RuleRepo == nil || f.ChargeRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		properties: f.PropertyRepo,
		bookings:   f.BookingRepo,
		rules:      f.RuleRepo,
		charges:    f.ChargeRepo,
	}, nil
}

// Unit is a uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	properties domainproperty.Repository
	bookings   domainbooking.Repository
	rules      domaincatalog.Repository
	charges    domainledger.Repository
}

func (u *Unit) Properties() domainproperty.Repository {
	return u.properties
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Rules() domaincatalog.Repository {
	return u.rules
}

func (u *Unit) Charges() domainledger.Repository {
	return u.charges
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
