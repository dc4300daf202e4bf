package booking

import (
	"time"

	"villastay/internal/domain/property"
	"villastay/internal/domain/shared/daterange"
	"villastay/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID  BookingID           `json:"booking_id"`
	PropertyID property.PropertyID `json:"property_id"`
	Guest      string              `json:"guest"`
	Range      daterange.DateRange `json:"range"`
	Total      money.Money         `json:"total"`
	Deposit    money.Money         `json:"deposit"`
	At         time.Time           `json:"at"`
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID  BookingID           `json:"booking_id"`
	PropertyID property.PropertyID `json:"property_id"`
	Deposit    money.Money         `json:"deposit"`
	At         time.Time           `json:"at"`
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID   `json:"booking_id"`
	Refund    money.Money `json:"refund"`
	Reason    string      `json:"reason"`
	At        time.Time   `json:"at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type GuestCheckedIn struct {
	BookingID BookingID `json:"booking_id"`
	At        time.Time `json:"at"`
}

func (e GuestCheckedIn) EventName() string     { return "booking.checked_in" }
func (e GuestCheckedIn) AggregateID() string   { return string(e.BookingID) }
func (e GuestCheckedIn) OccurredAt() time.Time { return e.At }

type GuestCheckedOut struct {
	BookingID BookingID `json:"booking_id"`
	At        time.Time `json:"at"`
}

func (e GuestCheckedOut) EventName() string     { return "booking.checked_out" }
func (e GuestCheckedOut) AggregateID() string   { return string(e.BookingID) }
func (e GuestCheckedOut) OccurredAt() time.Time { return e.At }

type PaymentRecorded struct {
	BookingID BookingID   `json:"booking_id"`
	Amount    money.Money `json:"amount"`
	At        time.Time   `json:"at"`
}

func (e PaymentRecorded) EventName() string     { return "booking.payment_recorded" }
func (e PaymentRecorded) AggregateID() string   { return string(e.BookingID) }
func (e PaymentRecorded) OccurredAt() time.Time { return e.At }
