package catalog

import (
	"context"
	"time"

	"villastay/internal/app/handlers/support"
	"villastay/internal/app/uow"
	domaincatalog "villastay/internal/domain/catalog"
	domainproperty "villastay/internal/domain/property"
	domainrange "villastay/internal/domain/shared/daterange"
)

const (
	createRuleKey      = "catalog.create_rule"
	setRuleActiveKey   = "catalog.set_rule_active"
	listRulesKey       = "catalog.list_rules"
	applicableRulesKey = "catalog.applicable_rules"
)

type CreateRuleCommand struct {
	Rule domaincatalog.ChargeRule
}

func (c CreateRuleCommand) Key() string { return createRuleKey }

type SetRuleActiveCommand struct {
	RuleID string
	Active bool
}

func (c SetRuleActiveCommand) Key() string { return setRuleActiveKey }

type ListRulesQuery struct{}

func (q ListRulesQuery) Key() string { return listRulesKey }

// ApplicableRulesQuery previews which rules would price a hypothetical stay.
type ApplicableRulesQuery struct {
	PropertyType domainproperty.Type
	CheckIn      time.Time
	CheckOut     time.Time
}

func (q ApplicableRulesQuery) Key() string { return applicableRulesKey }

type Handler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *Handler) CreateRule(ctx context.Context, cmd CreateRuleCommand) (*domaincatalog.ChargeRule, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	rule := cmd.Rule
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = h.now()
	}
	if err := rule.Validate(); err != nil {
		return nil, finish(err)
	}
	err = unit.Rules().Save(ctx, &rule)
	if err = finish(err); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (h *Handler) SetRuleActive(ctx context.Context, cmd SetRuleActiveCommand) (*domaincatalog.ChargeRule, error) {
	unit, ctx, finish, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	rule, err := unit.Rules().ByID(ctx, domaincatalog.RuleID(cmd.RuleID))
	if err == nil {
		rule.Active = cmd.Active
		err = unit.Rules().Save(ctx, rule)
	}
	if err = finish(err); err != nil {
		return nil, err
	}
	return rule, nil
}

func (h *Handler) ListRules(ctx context.Context, _ ListRulesQuery) ([]domaincatalog.ChargeRule, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return unit.Rules().List(ctx)
}

func (h *Handler) ApplicableRules(ctx context.Context, q ApplicableRulesQuery) ([]domaincatalog.ChargeRule, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return nil, err
	}
	rules, err := unit.Rules().List(ctx)
	if err != nil {
		return nil, err
	}
	return domaincatalog.Applicable(rules, q.PropertyType, dr), nil
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}
