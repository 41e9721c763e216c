package catalog

import (
	"fmt"
	"math"

	"github.com/solhaus/portal-api/internal/domain"
)

// TaxRate applies to subtotal + installation + delivery
const TaxRate = 0.08

// InstallationRatePerItem is the flat installed-by-us charge per line
// item when the quote opts into installation.
const InstallationRatePerItem = 875.0

// Panel counts are considered in the inclusive range [2, 10]
const (
	minPanels = 2
	maxPanels = 10
)

// glassModifiers is the per-panel price adjustment by glass type.
// Clear glass is a downgrade credit relative to the low-e default.
var glassModifiers = map[string]float64{
	"":          0,
	"low_e":     0,
	"clear":     -45,
	"laminated": 60,
	"triple":    120,
}

// GlassModifier returns the per-panel modifier for a glass type
func GlassModifier(glassType string) (float64, error) {
	mod, ok := glassModifiers[glassType]
	if !ok {
		return 0, fmt.Errorf("unknown glass type: %s", glassType)
	}
	return mod, nil
}

// Round2 rounds to two decimals (currency cents)
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PanelCountOptions returns every panel count n for which the per-panel
// width (width minus frame offset, divided by n) stays within
// [minPanelWidth, maxPanelWidth]. An empty result means the requested
// width cannot be configured and the caller must block progression.
func PanelCountOptions(width, offset, minPanelWidth, maxPanelWidth float64) []int {
	usable := width - offset
	var opts []int
	for n := minPanels; n <= maxPanels; n++ {
		per := usable / float64(n)
		if per >= minPanelWidth && per <= maxPanelWidth {
			opts = append(opts, n)
		}
	}
	return opts
}

// ItemSpec is the configuration input for pricing one line item
type ItemSpec struct {
	Kind       ProductKind
	SystemType domain.SystemType
	WidthIn    float64
	HeightIn   float64
	PanelCount int
	GlassType  string
}

// PriceItem validates an item spec against its product's limits and
// computes the item total:
//
//	basePrice + pocketUpcharge (iff pocket system) + glassModifier * panelCount
//
// Dimensions over the product maxima are an error, never clamped.
func PriceItem(spec ItemSpec) (float64, error) {
	p, err := Lookup(spec.Kind)
	if err != nil {
		return 0, err
	}
	limits := p.Limits()
	if spec.WidthIn <= 0 || spec.WidthIn > limits.MaxWidth {
		return 0, fmt.Errorf("width %.1f out of range for %s (max %.1f)", spec.WidthIn, p.Kind(), limits.MaxWidth)
	}
	if spec.HeightIn <= 0 || spec.HeightIn > limits.MaxHeight {
		return 0, fmt.Errorf("height %.1f out of range for %s (max %.1f)", spec.HeightIn, p.Kind(), limits.MaxHeight)
	}

	mod, err := GlassModifier(spec.GlassType)
	if err != nil {
		return 0, err
	}

	total := p.BasePrice()
	if spec.SystemType == domain.SystemTypePocket {
		total += p.PocketUpcharge()
	}
	total += mod * float64(spec.PanelCount)
	return Round2(total), nil
}

// Totals holds the derived money fields of a quote
type Totals struct {
	Subtotal         float64
	InstallationCost float64
	DeliveryCost     float64
	Tax              float64
	GrandTotal       float64
}

// ComputeTotals derives quote totals from the full item list. Totals are
// always recomputed from scratch, never adjusted incrementally, so the
// computation is idempotent with no compounding rounding drift.
func ComputeTotals(itemTotals []float64, installationCost, deliveryCost float64) Totals {
	var subtotal float64
	for _, t := range itemTotals {
		subtotal += t
	}
	subtotal = Round2(subtotal)

	taxable := subtotal + installationCost + deliveryCost
	tax := Round2(taxable * TaxRate)
	return Totals{
		Subtotal:         subtotal,
		InstallationCost: installationCost,
		DeliveryCost:     deliveryCost,
		Tax:              tax,
		GrandTotal:       Round2(taxable + tax),
	}
}
