package invoice

import (
	"time"

	"villastay/internal/domain/booking"
	"villastay/internal/domain/ledger"
	"villastay/internal/domain/pricing"
	"villastay/internal/domain/shared/money"
)

// Build assembles the payable view from the priced breakdown snapshot, the
// booking's extra charges and the amount paid to date. The result is a fresh
// value on every call; any input change means a full rebuild, never an
// in-place patch.
func Build(priced pricing.Breakdown, charges []*ledger.ExtraCharge, amountPaid money.Money) pricing.Breakdown {
	out := priced.Copy()
	out.ExtraChargesTotal = ledger.TotalFor(charges, priced.GrandTotal)
	out.GrandTotal = priced.GrandTotal.Add(out.ExtraChargesTotal)
	out.AmountPaid = amountPaid
	out.BalanceDue = out.GrandTotal.Sub(amountPaid).ClampZero()
	return out
}

// ChargeLine is one extra charge materialized for display.
type ChargeLine struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	ChargeType  string      `json:"charge_type"`
	Quantity    int         `json:"quantity"`
	Total       money.Money `json:"total"`
}

// Document is the rendered invoice consumed by the payment-confirmation flow
// and by export/rendering collaborators.
type Document struct {
	BookingID    string              `json:"booking_id"`
	PropertyID   string              `json:"property_id"`
	GuestName    string              `json:"guest_name"`
	GuestEmail   string              `json:"guest_email"`
	CheckIn      time.Time           `json:"check_in"`
	CheckOut     time.Time           `json:"check_out"`
	Status       booking.Status      `json:"status"`
	Deposit      money.Money         `json:"deposit"`
	ExtraCharges []ChargeLine        `json:"extra_charges"`
	Breakdown    pricing.Breakdown   `json:"breakdown"`
	Guests       pricing.GuestCounts `json:"guests"`
	IssuedAt     time.Time           `json:"issued_at"`
}

// NewDocument builds the presentation invoice for a booking.
func NewDocument(b *booking.Booking, charges []*ledger.ExtraCharge, issuedAt time.Time) Document {
	built := Build(b.Price, charges, b.AmountPaid)
	lines := make([]ChargeLine, 0, len(charges))
	for _, c := range charges {
		lines = append(lines, ChargeLine{
			ID:          string(c.ID),
			Name:        c.Name,
			Description: c.Description,
			ChargeType:  string(c.Type),
			Quantity:    c.Quantity,
			Total:       c.Total(b.Price.GrandTotal),
		})
	}
	return Document{
		BookingID:    string(b.ID),
		PropertyID:   string(b.PropertyID),
		GuestName:    b.Guest.Name,
		GuestEmail:   b.Guest.Email,
		CheckIn:      b.Range.CheckIn,
		CheckOut:     b.Range.CheckOut,
		Status:       b.Status,
		Deposit:      b.DepositAmount,
		ExtraCharges: lines,
		Breakdown:    built,
		Guests:       b.Guests,
		IssuedAt:     issuedAt.UTC(),
	}
}

type InvoiceFinalized struct {
	BookingID  string      `json:"booking_id"`
	GrandTotal money.Money `json:"grand_total"`
	At         time.Time   `json:"at"`
}

func (e InvoiceFinalized) EventName() string     { return "invoice.finalized" }
func (e InvoiceFinalized) AggregateID() string   { return e.BookingID }
func (e InvoiceFinalized) OccurredAt() time.Time { return e.At }
