package catalog_test

import (
	"testing"

	"github.com/solhaus/portal-api/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layoutCodes(layouts []catalog.Layout) []string {
	codes := make([]string, len(layouts))
	for i, l := range layouts {
		codes[i] = l.Code
	}
	return codes
}

func TestSlidingLayouts(t *testing.T) {
	p, err := catalog.Lookup(catalog.KindSliding)
	require.NoError(t, err)

	assert.Equal(t, []string{"XO", "OX"}, layoutCodes(p.Layouts(2)))
	assert.Equal(t, []string{"XOO", "OXO", "OOX"}, layoutCodes(p.Layouts(3)))
	assert.Len(t, p.Layouts(4), 4)

	// Counts without a table entry are configuration dead-ends.
	assert.Empty(t, p.Layouts(5))
	assert.Empty(t, p.Layouts(7))
}

func TestBifoldLayouts(t *testing.T) {
	p, err := catalog.Lookup(catalog.KindBifold)
	require.NoError(t, err)

	t.Run("even counts get an all-left, all-right and split layout", func(t *testing.T) {
		codes := layoutCodes(p.Layouts(6))
		assert.Equal(t, []string{"6L", "6R", "3L3R"}, codes)
	})

	t.Run("odd counts split with an access panel", func(t *testing.T) {
		codes := layoutCodes(p.Layouts(5))
		assert.Equal(t, []string{"5L", "5R", "4L1R", "1L4R"}, codes)
	})

	t.Run("out-of-range counts have no layouts", func(t *testing.T) {
		assert.Empty(t, p.Layouts(1))
		assert.Empty(t, p.Layouts(11))
	})
}

func TestSlideStackLayouts(t *testing.T) {
	p, err := catalog.Lookup(catalog.KindSlideStack)
	require.NoError(t, err)

	assert.Equal(t, []string{"XO", "OX", "XX"}, layoutCodes(p.Layouts(2)))
	assert.Equal(t, []string{"4L", "4R"}, layoutCodes(p.Layouts(4)))
	assert.Empty(t, p.Layouts(12))
}

func TestRegistry(t *testing.T) {
	kinds := catalog.Kinds()
	assert.Equal(t, []catalog.ProductKind{catalog.KindBifold, catalog.KindSlideStack, catalog.KindSliding}, kinds)

	_, err := catalog.Lookup("revolving")
	assert.Error(t, err)
}
