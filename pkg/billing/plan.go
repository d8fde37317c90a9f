package billing

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// PlanKind distinguishes recurring subscriptions from one-time lifetime
// purchases. The two map to different provider primitives.
type PlanKind string

const (
	PlanKindRecurring PlanKind = "recurring"
	PlanKindLifetime  PlanKind = "lifetime"
)

// Plan describes a purchasable plan and its provider price mapping.
type Plan struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Kind     PlanKind `yaml:"kind"`
	PriceID  string   `yaml:"price_id"` // provider price identifier
	Amount   int64    `yaml:"amount"`   // smallest currency unit
	Currency string   `yaml:"currency"`
	Interval string   `yaml:"interval,omitempty"` // e.g. "month", recurring plans only
}

// PlanCatalog holds the configured plans indexed by plan ID and provider
// price ID. It is immutable after construction.
type PlanCatalog struct {
	byID    map[string]Plan
	byPrice map[string]Plan
}

// NewPlanCatalog builds a catalog from the given plans.
// Returns ErrInvalidPlanConfiguration for duplicate or incomplete entries.
func NewPlanCatalog(plans ...Plan) (*PlanCatalog, error) {
	if len(plans) == 0 {
		return nil, errors.Join(ErrInvalidPlanConfiguration, errors.New("at least one plan is required"))
	}

	c := &PlanCatalog{
		byID:    make(map[string]Plan, len(plans)),
		byPrice: make(map[string]Plan, len(plans)),
	}
	for _, plan := range plans {
		if err := validatePlan(plan); err != nil {
			return nil, err
		}
		if _, exists := c.byID[plan.ID]; exists {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("duplicate plan ID %q", plan.ID))
		}
		if _, exists := c.byPrice[plan.PriceID]; exists {
			return nil, errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("price ID %q mapped to more than one plan", plan.PriceID))
		}
		c.byID[plan.ID] = plan
		c.byPrice[plan.PriceID] = plan
	}
	return c, nil
}

// LoadPlanCatalog reads the plan list from a YAML file.
//
// Example file:
//
//	plans:
//	  - id: premium_monthly
//	    name: Premium Monthly
//	    kind: recurring
//	    price_id: price_abc123
//	    amount: 999
//	    currency: usd
//	    interval: month
func LoadPlanCatalog(path string) (*PlanCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidPlanConfiguration, err)
	}

	var file struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrInvalidPlanConfiguration, err)
	}

	return NewPlanCatalog(file.Plans...)
}

// ByID returns the plan with the given ID.
func (c *PlanCatalog) ByID(planID string) (Plan, bool) {
	plan, ok := c.byID[planID]
	return plan, ok
}

// ByPriceID returns the plan mapped to the given provider price ID.
func (c *PlanCatalog) ByPriceID(priceID string) (Plan, bool) {
	plan, ok := c.byPrice[priceID]
	return plan, ok
}

// All returns every plan sorted by plan ID for stable listings.
func (c *PlanCatalog) All() []Plan {
	plans := make([]Plan, 0, len(c.byID))
	for _, plan := range c.byID {
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	return plans
}

func validatePlan(plan Plan) error {
	switch {
	case plan.ID == "":
		return errors.Join(ErrInvalidPlanConfiguration, errors.New("plan ID is required"))
	case plan.PriceID == "":
		return errors.Join(ErrInvalidPlanConfiguration,
			fmt.Errorf("plan %q has no provider price ID", plan.ID))
	case plan.Kind != PlanKindRecurring && plan.Kind != PlanKindLifetime:
		return errors.Join(ErrInvalidPlanConfiguration,
			fmt.Errorf("plan %q has unknown kind %q", plan.ID, plan.Kind))
	}
	return nil
}
