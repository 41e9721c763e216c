package catalog

// slidingProduct is the multi-slide patio door line. Layout vocabulary
// is a fixed table keyed by exact panel count; X marks an operating
// panel, O a fixed one.
type slidingProduct struct{}

var slidingLayouts = map[int][]Layout{
	2: {
		{Code: "XO", Label: "Operating left, fixed right"},
		{Code: "OX", Label: "Fixed left, operating right"},
	},
	3: {
		{Code: "XOO", Label: "Operating left"},
		{Code: "OXO", Label: "Operating center"},
		{Code: "OOX", Label: "Operating right"},
	},
	4: {
		{Code: "XXOO", Label: "Two operating left"},
		{Code: "OOXX", Label: "Two operating right"},
		{Code: "OXXO", Label: "Two operating center"},
		{Code: "XOOX", Label: "Operating at both ends"},
	},
	6: {
		{Code: "XXXOOO", Label: "Three operating left"},
		{Code: "OOOXXX", Label: "Three operating right"},
		{Code: "OXXXXO", Label: "Four operating center"},
	},
}

func (slidingProduct) Kind() ProductKind { return KindSliding }

func (slidingProduct) Limits() DimensionLimits {
	return DimensionLimits{
		MaxWidth:      480,
		MaxHeight:     120,
		FrameOffset:   3,
		MinPanelWidth: 35,
		MaxPanelWidth: 60,
	}
}

func (slidingProduct) Layouts(panelCount int) []Layout {
	// No table entry means the count has no presentable layout; the
	// caller treats the empty result as a configuration dead-end.
	return slidingLayouts[panelCount]
}

func (slidingProduct) BasePrice() float64      { return 4200 }
func (slidingProduct) PocketUpcharge() float64 { return 850 }
