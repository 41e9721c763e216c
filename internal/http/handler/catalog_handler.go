package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/solhaus/portal-api/internal/catalog"
	"github.com/solhaus/portal-api/internal/domain"
)

// CatalogHandler exposes the product configuration surface to the quoting UI
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// @Summary List product kinds
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.PanelOptionsDTO
// @Router /catalog/products [get]
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	kinds := catalog.Kinds()
	out := make([]domain.PanelOptionsDTO, 0, len(kinds))
	for _, kind := range kinds {
		product, err := catalog.Lookup(kind)
		if err != nil {
			continue
		}
		limits := product.Limits()
		out = append(out, domain.PanelOptionsDTO{
			ProductKind: string(kind),
			MaxWidth:    limits.MaxWidth,
			MaxHeight:   limits.MaxHeight,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// @Summary Panel options for a width
// @Description Returns the admissible panel counts for the requested overall
// @Description width, along with the layout codes those counts allow.
// @Tags Catalog
// @Produce json
// @Param kind path string true "Product kind" Enums(sliding, bifold, slide_stack)
// @Param width query number true "Overall width in inches"
// @Success 200 {object} domain.PanelOptionsDTO
// @Failure 400 {object} domain.APIError "Unknown product kind or invalid width"
// @Router /catalog/products/{kind}/panel-options [get]
func (h *CatalogHandler) PanelOptions(w http.ResponseWriter, r *http.Request) {
	kind := catalog.ProductKind(chi.URLParam(r, "kind"))
	product, err := catalog.Lookup(kind)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown product kind")
		return
	}

	width, err := strconv.ParseFloat(r.URL.Query().Get("width"), 64)
	if err != nil || width <= 0 {
		respondWithError(w, http.StatusBadRequest, "Query parameter width must be a positive number")
		return
	}

	limits := product.Limits()
	if width > limits.MaxWidth {
		respondWithError(w, http.StatusBadRequest,
			"Width exceeds the maximum for this product kind")
		return
	}

	counts := catalog.PanelCountOptions(width, limits.FrameOffset, limits.MinPanelWidth, limits.MaxPanelWidth)

	layouts := make(map[string]string)
	for _, n := range counts {
		for _, layout := range product.Layouts(n) {
			layouts[layout.Code] = layout.Label
		}
	}

	respondJSON(w, http.StatusOK, domain.PanelOptionsDTO{
		ProductKind: string(kind),
		PanelCounts: counts,
		Layouts:     layouts,
		MaxWidth:    limits.MaxWidth,
		MaxHeight:   limits.MaxHeight,
	})
}
