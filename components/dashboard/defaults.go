package dashboard

// defaultBoardWidgets are the static starter tiles, one per chart type. They
// carry no query and plot the sample dataset for their type.
var defaultBoardWidgets = []ManifestWidget{
	{
		Key:    "sample_line",
		Static: true,
		AddWidgetRequest: AddWidgetRequest{
			WidgetSelection: WidgetSelection{Title: "Monthly Trend", Type: ChartLine},
			Layout:          &Layout{X: 0, Y: 0, W: 6, H: 4},
			DataKeys:        DataKeys{"value1", "value2"},
		},
	},
	{
		Key:    "sample_bar",
		Static: true,
		AddWidgetRequest: AddWidgetRequest{
			WidgetSelection: WidgetSelection{Title: "Quarterly Sales", Type: ChartBar},
			Layout:          &Layout{X: 6, Y: 0, W: 6, H: 4},
			DataKeys:        DataKeys{"sales"},
		},
	},
	{
		Key:    "sample_area",
		Static: true,
		AddWidgetRequest: AddWidgetRequest{
			WidgetSelection: WidgetSelection{Title: "Yearly Users", Type: ChartArea},
			Layout:          &Layout{X: 0, Y: 4, W: 6, H: 4},
			DataKeys:        DataKeys{"users", "sessions"},
		},
	},
	{
		Key:    "sample_pie",
		Static: true,
		AddWidgetRequest: AddWidgetRequest{
			WidgetSelection: WidgetSelection{Title: "Devices", Type: ChartPie},
			Layout:          &Layout{X: 6, Y: 4, W: 6, H: 4},
			DataKeys:        DataKeys{"value"},
		},
	},
}

// DefaultBoard returns the starter manifest used when no seed file is configured.
func DefaultBoard() *BoardManifest {
	widgets := make([]ManifestWidget, len(defaultBoardWidgets))
	for i, w := range defaultBoardWidgets {
		widgets[i] = w
		if w.Layout != nil {
			layout := *w.Layout
			widgets[i].Layout = &layout
		}
		widgets[i].DataKeys = append(DataKeys(nil), w.DataKeys...)
	}
	return &BoardManifest{
		Version: manifestVersionV1,
		Name:    "starter",
		Widgets: widgets,
		Source:  "builtin",
	}
}
