package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"villastay/internal/app/commands"
	CatalogApp "villastay/internal/app/handlers/catalog"
	"villastay/internal/app/queries"
	domaincatalog "villastay/internal/domain/catalog"
	domainproperty "villastay/internal/domain/property"
	"villastay/internal/domain/shared/money"
)

type CatalogHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type mealPlanPayload struct {
	Breakfast   bool            `json:"breakfast"`
	Lunch       bool            `json:"lunch"`
	Dinner      bool            `json:"dinner"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
}

type transportPayload struct {
	VehicleType   string          `json:"vehicle_type"`
	Capacity      int             `json:"capacity"`
	PricePerKm    decimal.Decimal `json:"price_per_km"`
	MinimumCharge decimal.Decimal `json:"minimum_charge"`
}

type seasonalPayload struct {
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type chargeRulePayload struct {
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Category     string            `json:"category"`
	Type         string            `json:"charge_type"`
	Amount       decimal.Decimal   `json:"amount"`
	AppliesTo    string            `json:"applies_to,omitempty"`
	MaxDaysApply int               `json:"max_days_apply,omitempty"`
	Scope        string            `json:"scope,omitempty"`
	Active       *bool             `json:"active,omitempty"`
	MealPlan     *mealPlanPayload  `json:"meal_plan,omitempty"`
	Transport    *transportPayload `json:"transport,omitempty"`
	Seasonal     *seasonalPayload  `json:"seasonal,omitempty"`
	CreatedAt    time.Time         `json:"created_at,omitempty"`
}

func (p chargeRulePayload) toRule() domaincatalog.ChargeRule {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	rule := domaincatalog.ChargeRule{
		ID:           domaincatalog.RuleID(id),
		Name:         p.Name,
		Description:  p.Description,
		Category:     domaincatalog.Category(p.Category),
		Type:         domaincatalog.ChargeType(p.Type),
		Amount:       p.Amount,
		AppliesTo:    domaincatalog.AgeGroup(p.AppliesTo),
		MaxDaysApply: p.MaxDaysApply,
		Scope:        domaincatalog.PropertyScope(p.Scope),
		Active:       active,
		CreatedAt:    p.CreatedAt,
	}
	if p.MealPlan != nil {
		rule.MealPlan = &domaincatalog.MealPlanDetails{
			Breakfast:   p.MealPlan.Breakfast,
			Lunch:       p.MealPlan.Lunch,
			Dinner:      p.MealPlan.Dinner,
			PricePerDay: money.FromDecimal(p.MealPlan.PricePerDay),
		}
	}
	if p.Transport != nil {
		rule.Transport = &domaincatalog.TransportDetails{
			VehicleType:   p.Transport.VehicleType,
			Capacity:      p.Transport.Capacity,
			PricePerKm:    money.FromDecimal(p.Transport.PricePerKm),
			MinimumCharge: money.FromDecimal(p.Transport.MinimumCharge),
		}
	}
	if p.Seasonal != nil {
		rule.Seasonal = &domaincatalog.SeasonalDetails{
			StartDate:       p.Seasonal.StartDate,
			EndDate:         p.Seasonal.EndDate,
			DiscountPercent: p.Seasonal.DiscountPercent,
		}
	}
	return rule
}

func payloadFromRule(r domaincatalog.ChargeRule) chargeRulePayload {
	active := r.Active
	p := chargeRulePayload{
		ID:           string(r.ID),
		Name:         r.Name,
		Description:  r.Description,
		Category:     string(r.Category),
		Type:         string(r.Type),
		Amount:       r.Amount,
		AppliesTo:    string(r.AppliesTo),
		MaxDaysApply: r.MaxDaysApply,
		Scope:        string(r.Scope),
		Active:       &active,
		CreatedAt:    r.CreatedAt,
	}
	if r.MealPlan != nil {
		p.MealPlan = &mealPlanPayload{
			Breakfast:   r.MealPlan.Breakfast,
			Lunch:       r.MealPlan.Lunch,
			Dinner:      r.MealPlan.Dinner,
			PricePerDay: r.MealPlan.PricePerDay.Decimal(),
		}
	}
	if r.Transport != nil {
		p.Transport = &transportPayload{
			VehicleType:   r.Transport.VehicleType,
			Capacity:      r.Transport.Capacity,
			PricePerKm:    r.Transport.PricePerKm.Decimal(),
			MinimumCharge: r.Transport.MinimumCharge.Decimal(),
		}
	}
	if r.Seasonal != nil {
		p.Seasonal = &seasonalPayload{
			StartDate:       r.Seasonal.StartDate,
			EndDate:         r.Seasonal.EndDate,
			DiscountPercent: r.Seasonal.DiscountPercent,
		}
	}
	return p
}

func (h CatalogHandler) List(c *gin.Context) {
	rules, err := queries.Ask[CatalogApp.ListRulesQuery, []domaincatalog.ChargeRule](c.Request.Context(), h.Queries, CatalogApp.ListRulesQuery{})
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]chargeRulePayload, 0, len(rules))
	for _, r := range rules {
		out = append(out, payloadFromRule(r))
	}
	c.JSON(http.StatusOK, gin.H{"rules": out})
}

func (h CatalogHandler) Create(c *gin.Context) {
	var req chargeRulePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CatalogApp.CreateRuleCommand{Rule: req.toRule()}
	rule, err := commands.Dispatch[CatalogApp.CreateRuleCommand, *domaincatalog.ChargeRule](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payloadFromRule(*rule))
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h CatalogHandler) SetActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CatalogApp.SetRuleActiveCommand{RuleID: c.Param("id"), Active: req.Active}
	rule, err := commands.Dispatch[CatalogApp.SetRuleActiveCommand, *domaincatalog.ChargeRule](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payloadFromRule(*rule))
}

func (h CatalogHandler) Applicable(c *gin.Context) {
	checkIn, err := parseDate(c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in"})
		return
	}
	checkOut, err := parseDate(c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out"})
		return
	}
	q := CatalogApp.ApplicableRulesQuery{
		PropertyType: domainproperty.Type(c.Query("property_type")),
		CheckIn:      checkIn,
		CheckOut:     checkOut,
	}
	rules, err := queries.Ask[CatalogApp.ApplicableRulesQuery, []domaincatalog.ChargeRule](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]chargeRulePayload, 0, len(rules))
	for _, r := range rules {
		out = append(out, payloadFromRule(r))
	}
	c.JSON(http.StatusOK, gin.H{"rules": out})
}

var _ CatalogHTTP = CatalogHandler{}
