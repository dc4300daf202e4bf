package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "villastay/internal/domain/booking"
	domainpricing "villastay/internal/domain/pricing"
	domainproperty "villastay/internal/domain/property"
	domainrange "villastay/internal/domain/shared/daterange"
)

// ErrConcurrentUpdate is surfaced when a booking save loses the optimistic
// version race; the filter below doubles as the backstop for the
// availability check-then-act window.
var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col   *mongo.Collection
	locks *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		col:   db.Collection("bookings"),
		locks: db.Collection("property_locks"),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b.Version == 0 {
		// First save of a new booking. Touch the per-property lock document
		// inside the session transaction so two concurrent creates for the
		// same property write-conflict instead of both passing the
		// availability scan.
		if err := r.touchPropertyLock(ctx, string(b.PropertyID)); err != nil {
			return err
		}
	}
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) touchPropertyLock(ctx context.Context, propertyID string) error {
	_, err := r.locks.UpdateOne(ctx,
		bson.M{"_id": propertyID},
		bson.M{"$inc": bson.M{"bookings": 1}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *BookingRepository) ListByProperty(ctx context.Context, id domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"property_id": string(id)})
}

func (r *BookingRepository) ListByGuestEmail(ctx context.Context, email string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"guest.email": email})
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type guestDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Phone string `bson:"phone"`
	NIC   string `bson:"nic"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type bookingDocument struct {
	ID            string            `bson:"_id"`
	PropertyID    string            `bson:"property_id"`
	PropertyType  string            `bson:"property_type"`
	Guest         guestDocument     `bson:"guest"`
	Range         rangeDocument     `bson:"range"`
	Adults        int               `bson:"adults"`
	Children      int               `bson:"children"`
	Price         breakdownDocument `bson:"price"`
	TotalCost     string            `bson:"total_cost"`
	DepositAmount string            `bson:"deposit_amount"`
	AmountPaid    string            `bson:"amount_paid"`
	Status        string            `bson:"status"`
	PaymentIntent string            `bson:"payment_intent,omitempty"`
	CreatedAt     int64             `bson:"created_at"`
	UpdatedAt     int64             `bson:"updated_at"`
	Version       int64             `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:           string(b.ID),
		PropertyID:   string(b.PropertyID),
		PropertyType: string(b.PropertyType),
		Guest: guestDocument{
			Name:  b.Guest.Name,
			Email: b.Guest.Email,
			Phone: b.Guest.Phone,
			NIC:   b.Guest.NIC,
		},
		Range:         rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Adults:        b.Guests.Adults,
		Children:      b.Guests.Children,
		Price:         newBreakdownDocument(b.Price),
		TotalCost:     encMoney(b.TotalCost),
		DepositAmount: encMoney(b.DepositAmount),
		AmountPaid:    encMoney(b.AmountPaid),
		Status:        string(b.Status),
		PaymentIntent: b.PaymentIntent,
		CreatedAt:     b.CreatedAt.UnixMilli(),
		UpdatedAt:     b.UpdatedAt.UnixMilli(),
		Version:       b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:           domainbooking.BookingID(d.ID),
		PropertyID:   domainproperty.PropertyID(d.PropertyID),
		PropertyType: domainproperty.Type(d.PropertyType),
		Guest: domainbooking.Guest{
			Name:  d.Guest.Name,
			Email: d.Guest.Email,
			Phone: d.Guest.Phone,
			NIC:   d.Guest.NIC,
		},
		Range:         domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Guests:        domainpricing.GuestCounts{Adults: d.Adults, Children: d.Children},
		Price:         d.Price.toBreakdown(),
		TotalCost:     decMoney(d.TotalCost),
		DepositAmount: decMoney(d.DepositAmount),
		AmountPaid:    decMoney(d.AmountPaid),
		Status:        domainbooking.Status(d.Status),
		PaymentIntent: d.PaymentIntent,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
}
