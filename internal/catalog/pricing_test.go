package catalog_test

import (
	"testing"

	"github.com/solhaus/portal-api/internal/catalog"
	"github.com/solhaus/portal-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanelCountOptions(t *testing.T) {
	t.Run("admits counts whose per-panel width stays in range", func(t *testing.T) {
		// usable = 117; n=2 -> 58.5, n=3 -> 39, n=4 -> 29.25 (too narrow)
		opts := catalog.PanelCountOptions(120, 3, 35, 60)
		assert.Equal(t, []int{2, 3}, opts)
	})

	t.Run("empty when no count fits", func(t *testing.T) {
		opts := catalog.PanelCountOptions(50, 3, 35, 60)
		assert.Empty(t, opts)
	})

	t.Run("every option satisfies the bounds", func(t *testing.T) {
		widths := []float64{80, 120, 160, 240, 360, 480}
		for _, w := range widths {
			for _, n := range catalog.PanelCountOptions(w, 3, 35, 60) {
				per := (w - 3) / float64(n)
				assert.GreaterOrEqual(t, per, 35.0, "width %.0f count %d", w, n)
				assert.LessOrEqual(t, per, 60.0, "width %.0f count %d", w, n)
			}
		}
	})
}

func TestPriceItem(t *testing.T) {
	base := catalog.ItemSpec{
		Kind:       catalog.KindSliding,
		SystemType: domain.SystemTypeStandard,
		WidthIn:    120,
		HeightIn:   96,
		PanelCount: 3,
		GlassType:  "low_e",
	}

	t.Run("base price for standard system with neutral glass", func(t *testing.T) {
		total, err := catalog.PriceItem(base)
		require.NoError(t, err)
		assert.Equal(t, 4200.0, total)
	})

	t.Run("pocket upcharge applies iff system type is pocket", func(t *testing.T) {
		spec := base
		spec.SystemType = domain.SystemTypePocket
		pocket, err := catalog.PriceItem(spec)
		require.NoError(t, err)

		standard, err := catalog.PriceItem(base)
		require.NoError(t, err)
		assert.Equal(t, standard+850, pocket)
	})

	t.Run("glass modifier scales with panel count", func(t *testing.T) {
		spec := base
		spec.GlassType = "triple"
		total, err := catalog.PriceItem(spec)
		require.NoError(t, err)
		assert.Equal(t, 4200.0+120*3, total)
	})

	t.Run("clear glass is a downgrade credit", func(t *testing.T) {
		spec := base
		spec.GlassType = "clear"
		total, err := catalog.PriceItem(spec)
		require.NoError(t, err)
		assert.Equal(t, 4200.0-45*3, total)
	})

	t.Run("monotonic in panel count for non-negative modifiers", func(t *testing.T) {
		spec := base
		spec.GlassType = "laminated"
		prev := 0.0
		for n := 2; n <= 6; n++ {
			spec.PanelCount = n
			total, err := catalog.PriceItem(spec)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, total, prev)
			prev = total
		}
	})

	t.Run("width over product maximum is an error, not a clamp", func(t *testing.T) {
		spec := base
		spec.WidthIn = 9999
		_, err := catalog.PriceItem(spec)
		assert.ErrorContains(t, err, "width")
	})

	t.Run("height over product maximum is an error", func(t *testing.T) {
		spec := base
		spec.HeightIn = 500
		_, err := catalog.PriceItem(spec)
		assert.ErrorContains(t, err, "height")
	})

	t.Run("unknown glass type is an error", func(t *testing.T) {
		spec := base
		spec.GlassType = "stained"
		_, err := catalog.PriceItem(spec)
		assert.ErrorContains(t, err, "glass")
	})

	t.Run("unknown product kind is an error", func(t *testing.T) {
		spec := base
		spec.Kind = "garage"
		_, err := catalog.PriceItem(spec)
		assert.ErrorContains(t, err, "unknown product kind")
	})
}

func TestComputeTotals(t *testing.T) {
	t.Run("tax and grand total", func(t *testing.T) {
		totals := catalog.ComputeTotals([]float64{6000, 4000}, 1750, 800)
		assert.Equal(t, 10000.0, totals.Subtotal)
		assert.Equal(t, 1004.0, totals.Tax)
		assert.Equal(t, 13554.0, totals.GrandTotal)
	})

	t.Run("recomputation is idempotent", func(t *testing.T) {
		items := []float64{4233.33, 5120.99, 87.5}
		first := catalog.ComputeTotals(items, 321.45, 99.99)
		second := catalog.ComputeTotals(items, 321.45, 99.99)
		assert.Equal(t, first, second)
	})

	t.Run("grand total invariant holds", func(t *testing.T) {
		totals := catalog.ComputeTotals([]float64{1234.56, 78.9}, 500, 250)
		sum := catalog.Round2(totals.Subtotal + totals.InstallationCost + totals.DeliveryCost + totals.Tax)
		assert.Equal(t, sum, totals.GrandTotal)
	})
}
