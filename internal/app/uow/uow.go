package uow

import (
	"context"

	domainbooking "villastay/internal/domain/booking"
	domaincatalog "villastay/internal/domain/catalog"
	domainledger "villastay/internal/domain/ledger"
	domainproperty "villastay/internal/domain/property"
)

// UnitOfWork coordinates repositories inside a transaction boundary. The
// availability check runs against Bookings() inside the same unit that saves
// the new booking, so two concurrent requests cannot both observe a free
// range and commit.
type UnitOfWork interface {
	Properties() domainproperty.Repository
	Bookings() domainbooking.Repository
	Rules() domaincatalog.Repository
	Charges() domainledger.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
