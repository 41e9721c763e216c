package catalog

import "fmt"

// bifoldProduct is the folding door line. Layouts are derived
// arithmetically from the panel count rather than looked up.
type bifoldProduct struct{}

func (bifoldProduct) Kind() ProductKind { return KindBifold }

func (bifoldProduct) Limits() DimensionLimits {
	return DimensionLimits{
		MaxWidth:      288,
		MaxHeight:     110,
		FrameOffset:   2.5,
		MinPanelWidth: 24,
		MaxPanelWidth: 40,
	}
}

func (bifoldProduct) Layouts(panelCount int) []Layout {
	if panelCount < minPanels || panelCount > maxPanels {
		return nil
	}
	layouts := []Layout{
		{Code: fmt.Sprintf("%dL", panelCount), Label: fmt.Sprintf("All %d panels fold left", panelCount)},
		{Code: fmt.Sprintf("%dR", panelCount), Label: fmt.Sprintf("All %d panels fold right", panelCount)},
	}
	if panelCount%2 == 0 {
		half := panelCount / 2
		layouts = append(layouts, Layout{
			Code:  fmt.Sprintf("%dL%dR", half, half),
			Label: fmt.Sprintf("Split, %d left / %d right", half, half),
		})
	} else if panelCount >= 3 {
		// Odd counts split with a single access panel on one side.
		layouts = append(layouts,
			Layout{
				Code:  fmt.Sprintf("%dL1R", panelCount-1),
				Label: fmt.Sprintf("%d fold left, access panel right", panelCount-1),
			},
			Layout{
				Code:  fmt.Sprintf("1L%dR", panelCount-1),
				Label: fmt.Sprintf("Access panel left, %d fold right", panelCount-1),
			},
		)
	}
	return layouts
}

func (bifoldProduct) BasePrice() float64      { return 5600 }
func (bifoldProduct) PocketUpcharge() float64 { return 0 }
