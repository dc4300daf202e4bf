package invoice

import (
	"context"
	"time"

	"villastay/internal/app/handlers/support"
	"villastay/internal/app/outbox"
	"villastay/internal/app/policies"
	"villastay/internal/app/uow"
	domainbooking "villastay/internal/domain/booking"
	domaininvoice "villastay/internal/domain/invoice"
	"villastay/internal/domain/shared/events"
)

const (
	getInvoiceKey       = "invoice.get"
	finalizeCheckoutKey = "invoice.finalize_checkout"
)

type GetInvoiceQuery struct {
	BookingID string
}

func (q GetInvoiceQuery) Key() string { return getInvoiceKey }

// FinalizeCheckoutCommand closes out a stay. It fails with the outstanding
// balance error until payments and charge edits bring the balance to zero.
type FinalizeCheckoutCommand struct {
	BookingID string
}

func (c FinalizeCheckoutCommand) Key() string        { return finalizeCheckoutKey }
func (c FinalizeCheckoutCommand) BookingKey() string { return c.BookingID }

type FinalizeCheckoutResult struct {
	Invoice  domaininvoice.Document `json:"invoice"`
	Location string                 `json:"archive_location,omitempty"`
}

type Handler struct {
	UoWFactory uow.UoWFactory
	Archiver   policies.InvoiceArchiver
	Outbox     outbox.Outbox
	Now        func() time.Time
}

// Get rebuilds the invoice view from the stored snapshot, the current extra
// charges and payments. Nothing is cached between calls.
func (h *Handler) Get(ctx context.Context, q GetInvoiceQuery) (domaininvoice.Document, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return domaininvoice.Document{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return domaininvoice.Document{}, err
	}
	charges, err := unit.Charges().ListByBooking(ctx, q.BookingID)
	if err != nil {
		return domaininvoice.Document{}, err
	}
	return domaininvoice.NewDocument(b, charges, h.now()), nil
}

func (h *Handler) FinalizeCheckout(ctx context.Context, cmd FinalizeCheckoutCommand) (*FinalizeCheckoutResult, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	res, err := h.finalize(ctx, unit, cmd)
	if err = finish(err); err != nil {
		return nil, err
	}
	return res, nil
}

func (h *Handler) finalize(ctx context.Context, unit uow.UnitOfWork, cmd FinalizeCheckoutCommand) (*FinalizeCheckoutResult, error) {
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	charges, err := unit.Charges().ListByBooking(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}

	now := h.now()
	built := domaininvoice.Build(b.Price, charges, b.AmountPaid)
	if err := b.FinalizeCheckout(built.BalanceDue, now); err != nil {
		return nil, err
	}

	// Archive before saving. The memory unit of work cannot roll back, so a
	// failed archive must not leave a checked_out booking behind.
	doc := domaininvoice.NewDocument(b, charges, now)
	location := ""
	if h.Archiver != nil {
		location, err = h.Archiver.Archive(ctx, doc)
		if err != nil {
			return nil, err
		}
	}

	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}

	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return nil, err
	}
	finalized := domaininvoice.InvoiceFinalized{BookingID: string(b.ID), GrandTotal: doc.Breakdown.GrandTotal, At: now}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, []events.DomainEvent{finalized}); err != nil {
		return nil, err
	}

	return &FinalizeCheckoutResult{Invoice: doc, Location: location}, nil
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}
