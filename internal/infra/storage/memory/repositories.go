package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	domainbooking "villastay/internal/domain/booking"
	domaincatalog "villastay/internal/domain/catalog"
	domainledger "villastay/internal/domain/ledger"
	domainproperty "villastay/internal/domain/property"
)

// ErrVersionConflict is returned when a booking save loses an optimistic
// concurrency race.
var ErrVersionConflict = errors.New("memory: concurrent update detected")

// PropertyRepository is an in-memory implementation for tests and demo mode.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperty.PropertyID]*domainproperty.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainproperty.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.items[p.ID] = &clone
	return nil
}

func (r *PropertyRepository) Search(ctx context.Context, params domainproperty.SearchParams) ([]*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainproperty.Property, 0, len(r.items))
	for _, p := range r.items {
		if params.Type != "" && p.Type != params.Type {
			continue
		}
		if params.MinGuests > 0 && p.Capacity < params.MinGuests {
			continue
		}
		clone := *p
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

// BookingRepository guards bookings with an optimistic version check, the
// same backstop the Mongo repository enforces with its filter.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	clone := *b
	clone.ClearEvents()
	return &clone, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[b.ID]; ok && current.Version != b.Version {
		return ErrVersionConflict
	}
	clone := *b
	clone.Version = b.Version + 1
	clone.ClearEvents()
	r.items[b.ID] = &clone
	b.Version = clone.Version
	return nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, id domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.PropertyID != id {
			continue
		}
		clone := *b
		clone.ClearEvents()
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *BookingRepository) ListByGuestEmail(ctx context.Context, email string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.Guest.Email != email {
			continue
		}
		clone := *b
		clone.ClearEvents()
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// RuleRepository keeps charge rules in insertion order, which the rate
// calculator's applicability filter preserves.
type RuleRepository struct {
	mu    sync.RWMutex
	order []domaincatalog.RuleID
	items map[domaincatalog.RuleID]*domaincatalog.ChargeRule
}

func NewRuleRepository() *RuleRepository {
	return &RuleRepository{items: make(map[domaincatalog.RuleID]*domaincatalog.ChargeRule)}
}

func (r *RuleRepository) ByID(ctx context.Context, id domaincatalog.RuleID) (*domaincatalog.ChargeRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.items[id]
	if !ok {
		return nil, domaincatalog.ErrUnknownRule
	}
	clone := *rule
	return &clone, nil
}

func (r *RuleRepository) Save(ctx context.Context, rule *domaincatalog.ChargeRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[rule.ID]; !ok {
		r.order = append(r.order, rule.ID)
	}
	clone := *rule
	r.items[rule.ID] = &clone
	return nil
}

func (r *RuleRepository) List(ctx context.Context) ([]domaincatalog.ChargeRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domaincatalog.ChargeRule, 0, len(r.order))
	for _, id := range r.order {
		if rule, ok := r.items[id]; ok {
			out = append(out, *rule)
		}
	}
	return out, nil
}

// ChargeRepository stores extra charges per booking.
type ChargeRepository struct {
	mu    sync.RWMutex
	items map[domainledger.ChargeID]*domainledger.ExtraCharge
}

func NewChargeRepository() *ChargeRepository {
	return &ChargeRepository{items: make(map[domainledger.ChargeID]*domainledger.ExtraCharge)}
}

func (r *ChargeRepository) ByID(ctx context.Context, id domainledger.ChargeID) (*domainledger.ExtraCharge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, domainledger.ErrChargeNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *ChargeRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domainledger.ExtraCharge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainledger.ExtraCharge
	for _, c := range r.items {
		if c.BookingID != bookingID {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ChargeRepository) Save(ctx context.Context, charge *domainledger.ExtraCharge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *charge
	r.items[charge.ID] = &clone
	return nil
}

func (r *ChargeRepository) Delete(ctx context.Context, id domainledger.ChargeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainledger.ErrChargeNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ChargeRepository) DeleteByBooking(ctx context.Context, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.items {
		if c.BookingID == bookingID {
			delete(r.items, id)
		}
	}
	return nil
}
