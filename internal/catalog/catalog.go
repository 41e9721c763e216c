// Package catalog implements the dimensional configuration and pricing
// engine: valid panel counts for a requested width, panel layout
// vocabularies per product kind, and per-item pricing.
package catalog

import (
	"fmt"
	"sort"
)

// ProductKind identifies a door product family
type ProductKind string

const (
	KindSliding    ProductKind = "sliding"
	KindBifold     ProductKind = "bifold"
	KindSlideStack ProductKind = "slide_stack"
)

// DimensionLimits bounds a product's configurable dimensions (inches)
type DimensionLimits struct {
	MaxWidth      float64
	MaxHeight     float64
	FrameOffset   float64
	MinPanelWidth float64
	MaxPanelWidth float64
}

// Layout is a named arrangement of operating vs. fixed panels
type Layout struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Product describes one product family's configuration rules.
// Implementations are registered at init and looked up by kind, so the
// engine has no per-door-type conditionals.
type Product interface {
	Kind() ProductKind
	Limits() DimensionLimits
	// Layouts returns the presentable layouts for an exact panel count.
	// An empty result means that panel count is a configuration dead-end.
	Layouts(panelCount int) []Layout
	BasePrice() float64
	PocketUpcharge() float64
}

var registry = map[ProductKind]Product{}

// Register adds a product to the registry. Last registration wins.
func Register(p Product) {
	registry[p.Kind()] = p
}

// Lookup returns the product for a kind, or an error for unknown kinds.
func Lookup(kind ProductKind) (Product, error) {
	p, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown product kind: %s", kind)
	}
	return p, nil
}

// Kinds returns the registered product kinds in stable order.
func Kinds() []ProductKind {
	kinds := make([]ProductKind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func init() {
	Register(slidingProduct{})
	Register(bifoldProduct{})
	Register(slideStackProduct{})
}
