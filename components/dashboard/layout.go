package dashboard

// Breakpoint is a named viewport-width threshold with its grid column count.
type Breakpoint struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
	Cols  int    `json:"cols"`
}

// DefaultRowHeight is the pixel height of one grid row.
const DefaultRowHeight = 100

var defaultBreakpoints = []Breakpoint{
	{Name: "lg", Width: 1200, Cols: 12},
	{Name: "md", Width: 996, Cols: 10},
	{Name: "sm", Width: 768, Cols: 6},
	{Name: "xs", Width: 480, Cols: 4},
	{Name: "xxs", Width: 0, Cols: 2},
}

// Breakpoints returns the responsive breakpoints, widest first.
func Breakpoints() []Breakpoint {
	return append([]Breakpoint(nil), defaultBreakpoints...)
}

// GridItem is one entry of the grid engine's layout array.
type GridItem struct {
	I    string `json:"i"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	MinW int    `json:"minW,omitempty"`
	MinH int    `json:"minH,omitempty"`
}

// GridLayouts maps breakpoint names to their layout arrays.
type GridLayouts map[string][]GridItem

// GridConfig describes the grid engine parameters.
type GridConfig struct {
	Breakpoints map[string]int `json:"breakpoints"`
	Cols        map[string]int `json:"cols"`
	RowHeight   int            `json:"rowHeight"`
}

// DefaultGridConfig returns the engine configuration matching Breakpoints.
func DefaultGridConfig() GridConfig {
	cfg := GridConfig{
		Breakpoints: make(map[string]int, len(defaultBreakpoints)),
		Cols:        make(map[string]int, len(defaultBreakpoints)),
		RowHeight:   DefaultRowHeight,
	}
	for _, bp := range defaultBreakpoints {
		cfg.Breakpoints[bp.Name] = bp.Width
		cfg.Cols[bp.Name] = bp.Cols
	}
	return cfg
}

// ToGridLayouts emits one item per widget per breakpoint. All breakpoints
// share the stored placement; no per-breakpoint repacking is computed.
func ToGridLayouts(widgets []Widget) GridLayouts {
	items := make([]GridItem, len(widgets))
	for i, w := range widgets {
		items[i] = gridItem(w)
	}
	layouts := make(GridLayouts, len(defaultBreakpoints))
	for _, bp := range defaultBreakpoints {
		layouts[bp.Name] = append(make([]GridItem, 0, len(items)), items...)
	}
	return layouts
}

func gridItem(w Widget) GridItem {
	l := clampLayout(w.Layout)
	return GridItem{
		I:    w.ID,
		X:    l.X,
		Y:    l.Y,
		W:    l.W,
		H:    l.H,
		MinW: MinWidgetSize,
		MinH: MinWidgetSize,
	}
}

// FromGridLayout converts an engine layout report into store updates. Items
// without an id are skipped.
func FromGridLayout(items []GridItem) []LayoutUpdate {
	updates := make([]LayoutUpdate, 0, len(items))
	for _, item := range items {
		if item.I == "" {
			continue
		}
		updates = append(updates, LayoutUpdate{
			ID:     item.I,
			Layout: Layout{X: item.X, Y: item.Y, W: item.W, H: item.H},
		})
	}
	return updates
}
