package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"villastay/internal/app/uow"
	domainbooking "villastay/internal/domain/booking"
	domaincatalog "villastay/internal/domain/catalog"
	domainledger "villastay/internal/domain/ledger"
	domainproperty "villastay/internal/domain/property"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface. The
// repositories are shared; the session travels through the context via
// InjectContext so every query inside the unit joins the same transaction.
type Factory struct {
	DB *mongo.Database

	PropertyRepo domainproperty.Repository
	BookingRepo  domainbooking.Repository
	RuleRepo     domaincatalog.Repository
	ChargeRepo   domainledger.Repository
}

// NewFactory builds a factory with the default repositories over db.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:           db,
		PropertyRepo: NewPropertyRepository(db),
		BookingRepo:  NewBookingRepository(db),
		RuleRepo:     NewRuleRepository(db),
		ChargeRepo:   NewChargeRepository(db),
	}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(f.DB.ReadConcern()).
		SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:    session,
		properties: f.PropertyRepo,
		bookings:   f.BookingRepo,
		rules:      f.RuleRepo,
		charges:    f.ChargeRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	properties domainproperty.Repository
	bookings   domainbooking.Repository
	rules      domaincatalog.Repository
	charges    domainledger.Repository
}

func (u *Unit) Properties() domainproperty.Repository { return u.properties }
func (u *Unit) Bookings() domainbooking.Repository    { return u.bookings }
func (u *Unit) Rules() domaincatalog.Repository       { return u.rules }
func (u *Unit) Charges() domainledger.Repository      { return u.charges }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session available to downstream repository
// calls so they run inside the unit's transaction.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
