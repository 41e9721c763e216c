package catalog

import "fmt"

// slideStackProduct is the slide-and-stack wall system. Two-panel units
// have a small fixed vocabulary; larger units stack all panels to one
// side.
type slideStackProduct struct{}

func (slideStackProduct) Kind() ProductKind { return KindSlideStack }

func (slideStackProduct) Limits() DimensionLimits {
	return DimensionLimits{
		MaxWidth:      600,
		MaxHeight:     144,
		FrameOffset:   4,
		MinPanelWidth: 30,
		MaxPanelWidth: 54,
	}
}

func (slideStackProduct) Layouts(panelCount int) []Layout {
	if panelCount == 2 {
		return []Layout{
			{Code: "XO", Label: "Operating left, fixed right"},
			{Code: "OX", Label: "Fixed left, operating right"},
			{Code: "XX", Label: "Both panels operating"},
		}
	}
	if panelCount < minPanels || panelCount > maxPanels {
		return nil
	}
	return []Layout{
		{Code: fmt.Sprintf("%dL", panelCount), Label: fmt.Sprintf("All %d panels stack left", panelCount)},
		{Code: fmt.Sprintf("%dR", panelCount), Label: fmt.Sprintf("All %d panels stack right", panelCount)},
	}
}

func (slideStackProduct) BasePrice() float64      { return 6400 }
func (slideStackProduct) PocketUpcharge() float64 { return 1100 }
