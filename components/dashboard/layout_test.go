package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGridLayoutsDuplicatesAcrossBreakpoints(t *testing.T) {
	widgets := []Widget{
		{ID: "a", Layout: Layout{X: 0, Y: 0, W: 6, H: 4}},
		{ID: "b", Layout: Layout{X: 6, Y: 0, W: 1, H: 1}},
	}
	layouts := ToGridLayouts(widgets)

	require.Len(t, layouts, 5)
	for _, bp := range Breakpoints() {
		items := layouts[bp.Name]
		require.Len(t, items, 2, bp.Name)
		assert.Equal(t, GridItem{I: "a", X: 0, Y: 0, W: 6, H: 4, MinW: 3, MinH: 3}, items[0])
		assert.Equal(t, GridItem{I: "b", X: 6, Y: 0, W: 3, H: 3, MinW: 3, MinH: 3}, items[1])
	}

	layouts["lg"][0].X = 11
	assert.Equal(t, 0, layouts["md"][0].X)
}

func TestToGridLayoutsEmpty(t *testing.T) {
	layouts := ToGridLayouts(nil)
	require.Len(t, layouts, 5)
	for name, items := range layouts {
		assert.NotNil(t, items, name)
		assert.Empty(t, items, name)
	}

	b, err := json.Marshal(layouts)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"lg":[]`)
	assert.NotContains(t, string(b), "null")
}

func TestFromGridLayout(t *testing.T) {
	updates := FromGridLayout([]GridItem{
		{I: "a", X: 1, Y: 2, W: 3, H: 4, MinW: 3},
		{I: "", X: 9},
	})
	assert.Equal(t, []LayoutUpdate{{ID: "a", Layout: Layout{X: 1, Y: 2, W: 3, H: 4}}}, updates)
}

func TestDefaultGridConfig(t *testing.T) {
	cfg := DefaultGridConfig()
	assert.Equal(t, map[string]int{"lg": 1200, "md": 996, "sm": 768, "xs": 480, "xxs": 0}, cfg.Breakpoints)
	assert.Equal(t, map[string]int{"lg": 12, "md": 10, "sm": 6, "xs": 4, "xxs": 2}, cfg.Cols)
	assert.Equal(t, DefaultRowHeight, cfg.RowHeight)

	bps := Breakpoints()
	bps[0].Cols = 99
	assert.Equal(t, 12, Breakpoints()[0].Cols)
}
