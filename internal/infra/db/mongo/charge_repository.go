package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincatalog "villastay/internal/domain/catalog"
	domainledger "villastay/internal/domain/ledger"
)

type ChargeRepository struct {
	col *mongo.Collection
}

func NewChargeRepository(db *mongo.Database) *ChargeRepository {
	return &ChargeRepository{col: db.Collection("extra_charges")}
}

func (r *ChargeRepository) ByID(ctx context.Context, id domainledger.ChargeID) (*domainledger.ExtraCharge, error) {
	var doc chargeDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainledger.ErrChargeNotFound
		}
		return nil, err
	}
	return doc.toCharge(), nil
}

func (r *ChargeRepository) ListByBooking(ctx context.Context, bookingID string) ([]*domainledger.ExtraCharge, error) {
	sort := bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	cur, err := r.col.Find(ctx, bson.M{"booking_id": bookingID}, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainledger.ExtraCharge
	for cur.Next(ctx) {
		var doc chargeDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toCharge())
	}
	return out, cur.Err()
}

func (r *ChargeRepository) Save(ctx context.Context, charge *domainledger.ExtraCharge) error {
	doc := newChargeDocument(charge)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ChargeRepository) Delete(ctx context.Context, id domainledger.ChargeID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainledger.ErrChargeNotFound
	}
	return nil
}

func (r *ChargeRepository) DeleteByBooking(ctx context.Context, bookingID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"booking_id": bookingID})
	return err
}

type chargeDocument struct {
	ID          string `bson:"_id"`
	BookingID   string `bson:"booking_id"`
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`
	Type        string `bson:"charge_type"`
	Amount      string `bson:"amount"`
	Quantity    int    `bson:"quantity"`
	CreatedAt   int64  `bson:"created_at"`
}

func newChargeDocument(c *domainledger.ExtraCharge) chargeDocument {
	return chargeDocument{
		ID:          string(c.ID),
		BookingID:   c.BookingID,
		Name:        c.Name,
		Description: c.Description,
		Type:        string(c.Type),
		Amount:      encDecimal(c.Amount),
		Quantity:    c.Quantity,
		CreatedAt:   c.CreatedAt.UnixMilli(),
	}
}

func (d chargeDocument) toCharge() *domainledger.ExtraCharge {
	return &domainledger.ExtraCharge{
		ID:          domainledger.ChargeID(d.ID),
		BookingID:   d.BookingID,
		Name:        d.Name,
		Description: d.Description,
		Type:        domaincatalog.ChargeType(d.Type),
		Amount:      decDecimal(d.Amount),
		Quantity:    d.Quantity,
		CreatedAt:   timestampToTime(d.CreatedAt),
	}
}
