package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincatalog "villastay/internal/domain/catalog"
)

type RuleRepository struct {
	col *mongo.Collection
}

func NewRuleRepository(db *mongo.Database) *RuleRepository {
	return &RuleRepository{col: db.Collection("charge_rules")}
}

func (r *RuleRepository) ByID(ctx context.Context, id domaincatalog.RuleID) (*domaincatalog.ChargeRule, error) {
	var doc ruleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincatalog.ErrUnknownRule
		}
		return nil, err
	}
	rule := doc.toRule()
	return &rule, nil
}

func (r *RuleRepository) Save(ctx context.Context, rule *domaincatalog.ChargeRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	doc := newRuleDocument(rule)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

// List returns rules in insertion order (creation time, id as tiebreak),
// matching the in-memory repository's ordering guarantee.
func (r *RuleRepository) List(ctx context.Context) ([]domaincatalog.ChargeRule, error) {
	sort := bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []domaincatalog.ChargeRule
	for cur.Next(ctx) {
		var doc ruleDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toRule())
	}
	return out, cur.Err()
}

type mealPlanDocument struct {
	Breakfast   bool   `bson:"breakfast"`
	Lunch       bool   `bson:"lunch"`
	Dinner      bool   `bson:"dinner"`
	PricePerDay string `bson:"price_per_day"`
}

type transportDocument struct {
	VehicleType   string `bson:"vehicle_type"`
	Capacity      int    `bson:"capacity"`
	PricePerKm    string `bson:"price_per_km"`
	MinimumCharge string `bson:"minimum_charge"`
}

type seasonalDocument struct {
	StartDate       int64  `bson:"start_date"`
	EndDate         int64  `bson:"end_date"`
	DiscountPercent string `bson:"discount_percent"`
}

type ruleDocument struct {
	ID           string             `bson:"_id"`
	Name         string             `bson:"name"`
	Description  string             `bson:"description,omitempty"`
	Category     string             `bson:"category"`
	Type         string             `bson:"charge_type"`
	Amount       string             `bson:"amount"`
	AppliesTo    string             `bson:"applies_to,omitempty"`
	MaxDaysApply int                `bson:"max_days_apply,omitempty"`
	Scope        string             `bson:"scope,omitempty"`
	Active       bool               `bson:"active"`
	MealPlan     *mealPlanDocument  `bson:"meal_plan,omitempty"`
	Transport    *transportDocument `bson:"transport,omitempty"`
	Seasonal     *seasonalDocument  `bson:"seasonal,omitempty"`
	CreatedAt    int64              `bson:"created_at"`
}

func newRuleDocument(rule *domaincatalog.ChargeRule) ruleDocument {
	doc := ruleDocument{
		ID:           string(rule.ID),
		Name:         rule.Name,
		Description:  rule.Description,
		Category:     string(rule.Category),
		Type:         string(rule.Type),
		Amount:       encDecimal(rule.Amount),
		AppliesTo:    string(rule.AppliesTo),
		MaxDaysApply: rule.MaxDaysApply,
		Scope:        string(rule.Scope),
		Active:       rule.Active,
		CreatedAt:    rule.CreatedAt.UnixMilli(),
	}
	if rule.MealPlan != nil {
		doc.MealPlan = &mealPlanDocument{
			Breakfast:   rule.MealPlan.Breakfast,
			Lunch:       rule.MealPlan.Lunch,
			Dinner:      rule.MealPlan.Dinner,
			PricePerDay: encMoney(rule.MealPlan.PricePerDay),
		}
	}
	if rule.Transport != nil {
		doc.Transport = &transportDocument{
			VehicleType:   rule.Transport.VehicleType,
			Capacity:      rule.Transport.Capacity,
			PricePerKm:    encMoney(rule.Transport.PricePerKm),
			MinimumCharge: encMoney(rule.Transport.MinimumCharge),
		}
	}
	if rule.Seasonal != nil {
		doc.Seasonal = &seasonalDocument{
			StartDate:       rule.Seasonal.StartDate.UnixMilli(),
			EndDate:         rule.Seasonal.EndDate.UnixMilli(),
			DiscountPercent: encDecimal(rule.Seasonal.DiscountPercent),
		}
	}
	return doc
}

func (d ruleDocument) toRule() domaincatalog.ChargeRule {
	rule := domaincatalog.ChargeRule{
		ID:           domaincatalog.RuleID(d.ID),
		Name:         d.Name,
		Description:  d.Description,
		Category:     domaincatalog.Category(d.Category),
		Type:         domaincatalog.ChargeType(d.Type),
		Amount:       decDecimal(d.Amount),
		AppliesTo:    domaincatalog.AgeGroup(d.AppliesTo),
		MaxDaysApply: d.MaxDaysApply,
		Scope:        domaincatalog.PropertyScope(d.Scope),
		Active:       d.Active,
		CreatedAt:    timestampToTime(d.CreatedAt),
	}
	if d.MealPlan != nil {
		rule.MealPlan = &domaincatalog.MealPlanDetails{
			Breakfast:   d.MealPlan.Breakfast,
			Lunch:       d.MealPlan.Lunch,
			Dinner:      d.MealPlan.Dinner,
			PricePerDay: decMoney(d.MealPlan.PricePerDay),
		}
	}
	if d.Transport != nil {
		rule.Transport = &domaincatalog.TransportDetails{
			VehicleType:   d.Transport.VehicleType,
			Capacity:      d.Transport.Capacity,
			PricePerKm:    decMoney(d.Transport.PricePerKm),
			MinimumCharge: decMoney(d.Transport.MinimumCharge),
		}
	}
	if d.Seasonal != nil {
		rule.Seasonal = &domaincatalog.SeasonalDetails{
			StartDate:       timestampToTime(d.Seasonal.StartDate),
			EndDate:         timestampToTime(d.Seasonal.EndDate),
			DiscountPercent: decDecimal(d.Seasonal.DiscountPercent),
		}
	}
	return rule
}
