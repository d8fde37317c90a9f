package billing_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideavault/ideavault/pkg/billing"
)

func TestNewPlanCatalog(t *testing.T) {
	t.Parallel()

	t.Run("indexes by ID and price ID", func(t *testing.T) {
		t.Parallel()

		catalog, err := billing.NewPlanCatalog(
			billing.Plan{ID: "premium_monthly", Kind: billing.PlanKindRecurring, PriceID: "price_monthly", Amount: 999, Currency: "usd", Interval: "month"},
			billing.Plan{ID: "premium_lifetime", Kind: billing.PlanKindLifetime, PriceID: "price_lifetime", Amount: 19900, Currency: "usd"},
		)
		require.NoError(t, err)

		plan, ok := catalog.ByID("premium_monthly")
		require.True(t, ok)
		assert.Equal(t, "price_monthly", plan.PriceID)
		assert.Equal(t, billing.PlanKindRecurring, plan.Kind)

		plan, ok = catalog.ByPriceID("price_lifetime")
		require.True(t, ok)
		assert.Equal(t, "premium_lifetime", plan.ID)

		_, ok = catalog.ByID("nonexistent")
		assert.False(t, ok)
	})

	t.Run("empty catalog rejected", func(t *testing.T) {
		t.Parallel()

		_, err := billing.NewPlanCatalog()
		assert.ErrorIs(t, err, billing.ErrInvalidPlanConfiguration)
	})

	t.Run("duplicate plan ID rejected", func(t *testing.T) {
		t.Parallel()

		_, err := billing.NewPlanCatalog(
			billing.Plan{ID: "premium", Kind: billing.PlanKindRecurring, PriceID: "price_a"},
			billing.Plan{ID: "premium", Kind: billing.PlanKindRecurring, PriceID: "price_b"},
		)
		assert.ErrorIs(t, err, billing.ErrInvalidPlanConfiguration)
	})

	t.Run("shared price ID rejected", func(t *testing.T) {
		t.Parallel()

		_, err := billing.NewPlanCatalog(
			billing.Plan{ID: "plan_a", Kind: billing.PlanKindRecurring, PriceID: "price_x"},
			billing.Plan{ID: "plan_b", Kind: billing.PlanKindLifetime, PriceID: "price_x"},
		)
		assert.ErrorIs(t, err, billing.ErrInvalidPlanConfiguration)
	})

	t.Run("invalid entries rejected", func(t *testing.T) {
		t.Parallel()

		cases := map[string]billing.Plan{
			"missing ID":    {Kind: billing.PlanKindRecurring, PriceID: "price_x"},
			"missing price": {ID: "premium", Kind: billing.PlanKindRecurring},
			"unknown kind":  {ID: "premium", Kind: "weekly", PriceID: "price_x"},
		}
		for name, plan := range cases {
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				_, err := billing.NewPlanCatalog(plan)
				assert.ErrorIs(t, err, billing.ErrInvalidPlanConfiguration)
			})
		}
	})
}

func TestPlanCatalog_All(t *testing.T) {
	t.Parallel()

	catalog, err := billing.NewPlanCatalog(
		billing.Plan{ID: "b_plan", Kind: billing.PlanKindLifetime, PriceID: "price_b"},
		billing.Plan{ID: "a_plan", Kind: billing.PlanKindRecurring, PriceID: "price_a"},
	)
	require.NoError(t, err)

	plans := catalog.All()
	require.Len(t, plans, 2)
	assert.Equal(t, "a_plan", plans[0].ID)
	assert.Equal(t, "b_plan", plans[1].ID)
}

func TestLoadPlanCatalog(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
plans:
  - id: premium_monthly
    name: Premium Monthly
    kind: recurring
    price_id: price_monthly
    amount: 999
    currency: usd
    interval: month
  - id: premium_lifetime
    name: Lifetime Access
    kind: lifetime
    price_id: price_lifetime
    amount: 19900
    currency: usd
`), 0o600))

		catalog, err := billing.LoadPlanCatalog(path)
		require.NoError(t, err)

		plan, ok := catalog.ByID("premium_monthly")
		require.True(t, ok)
		assert.Equal(t, "Premium Monthly", plan.Name)
		assert.Equal(t, int64(999), plan.Amount)
		assert.Equal(t, "month", plan.Interval)

		plan, ok = catalog.ByID("premium_lifetime")
		require.True(t, ok)
		assert.Equal(t, billing.PlanKindLifetime, plan.Kind)
		assert.Empty(t, plan.Interval)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := billing.LoadPlanCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, billing.ErrInvalidPlanConfiguration)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(path, []byte("plans: [not closed"), 0o600))

		_, err := billing.LoadPlanCatalog(path)
		assert.ErrorIs(t, err, billing.ErrInvalidPlanConfiguration)
	})
}
