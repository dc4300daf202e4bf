package property

import (
	"context"
	"errors"

	"villastay/internal/domain/shared/money"
)

var (
	ErrNotFound      = errors.New("property: not found")
	ErrInvalidRate   = errors.New("property: nightly rate must be positive")
	ErrInvalidGuests = errors.New("property: capacity must be positive")
)

type PropertyID string

// Type discriminates villas from individual rooms. Villas may own nested
// rooms that are bookable on their own.
type Type string

const (
	TypeVilla Type = "villa"
	TypeRoom  Type = "room"
)

type Property struct {
	ID          PropertyID
	Type        Type
	Name        string
	Location    string
	NightlyRate money.Money
	Capacity    int
	Amenities   []string
	// Rooms lists nested room property ids when the property is a villa.
	Rooms []PropertyID
}

func (p *Property) Validate() error {
	if !p.NightlyRate.IsPositive() {
		return ErrInvalidRate
	}
	if p.Capacity <= 0 {
		return ErrInvalidGuests
	}
	if p.Type != TypeVilla && p.Type != TypeRoom {
		return errors.New("property: unknown type")
	}
	if p.Type == TypeRoom && len(p.Rooms) > 0 {
		return errors.New("property: rooms cannot nest rooms")
	}
	return nil
}

func (p *Property) HasAmenity(name string) bool {
	for _, a := range p.Amenities {
		if a == name {
			return true
		}
	}
	return false
}

// SearchParams filters the property catalog for the booking form.
type SearchParams struct {
	Type      Type
	MinGuests int
}

type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, p *Property) error
	Search(ctx context.Context, params SearchParams) ([]*Property, error)
}
