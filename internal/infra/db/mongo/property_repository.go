package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "villastay/internal/domain/property"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("properties")}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperty.ErrNotFound
		}
		return nil, err
	}
	return doc.toProperty(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	doc := newPropertyDocument(p)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *PropertyRepository) Search(ctx context.Context, params domainproperty.SearchParams) ([]*domainproperty.Property, error) {
	filter := bson.M{}
	if params.Type != "" {
		filter["type"] = string(params.Type)
	}
	if params.MinGuests > 0 {
		filter["capacity"] = bson.M{"$gte": params.MinGuests}
	}
	sort := bson.D{{Key: "name", Value: 1}}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainproperty.Property
	for cur.Next(ctx) {
		var doc propertyDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toProperty())
	}
	return out, cur.Err()
}

type propertyDocument struct {
	ID          string   `bson:"_id"`
	Type        string   `bson:"type"`
	Name        string   `bson:"name"`
	Location    string   `bson:"location"`
	NightlyRate string   `bson:"nightly_rate"`
	Capacity    int      `bson:"capacity"`
	Amenities   []string `bson:"amenities,omitempty"`
	Rooms       []string `bson:"rooms,omitempty"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	rooms := make([]string, 0, len(p.Rooms))
	for _, id := range p.Rooms {
		rooms = append(rooms, string(id))
	}
	return propertyDocument{
		ID:          string(p.ID),
		Type:        string(p.Type),
		Name:        p.Name,
		Location:    p.Location,
		NightlyRate: encMoney(p.NightlyRate),
		Capacity:    p.Capacity,
		Amenities:   p.Amenities,
		Rooms:       rooms,
	}
}

func (d propertyDocument) toProperty() *domainproperty.Property {
	rooms := make([]domainproperty.PropertyID, 0, len(d.Rooms))
	for _, id := range d.Rooms {
		rooms = append(rooms, domainproperty.PropertyID(id))
	}
	return &domainproperty.Property{
		ID:          domainproperty.PropertyID(d.ID),
		Type:        domainproperty.Type(d.Type),
		Name:        d.Name,
		Location:    d.Location,
		NightlyRate: decMoney(d.NightlyRate),
		Capacity:    d.Capacity,
		Amenities:   d.Amenities,
		Rooms:       rooms,
	}
}
