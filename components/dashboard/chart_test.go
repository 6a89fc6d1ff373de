package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChartSpecUsesWidgetData(t *testing.T) {
	spec := BuildChartSpec(Widget{
		Type:    ChartBar,
		Title:   "Orders",
		DataKey: DataKeys{"value"},
		Data:    []DataPoint{{Name: "a", Value: 1}, {Name: "b", Value: 2}},
	})

	assert.False(t, spec.Sample)
	assert.Equal(t, []string{"a", "b"}, spec.Labels)
	require.Len(t, spec.Series, 1)
	assert.Equal(t, "value", spec.Series[0].Name)
	assert.Equal(t, []float64{1, 2}, spec.Series[0].Values)
}

func TestBuildChartSpecFallsBackToSampleData(t *testing.T) {
	for _, tc := range []struct {
		chart  ChartType
		labels []string
	}{
		{ChartLine, []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}},
		{ChartBar, []string{"Q1", "Q2", "Q3", "Q4"}},
		{ChartArea, []string{"2019", "2020", "2021", "2022", "2023"}},
		{ChartPie, []string{"Mobile", "Desktop", "Tablet", "Other"}},
	} {
		t.Run(string(tc.chart), func(t *testing.T) {
			spec := BuildChartSpec(Widget{Type: tc.chart})
			assert.True(t, spec.Sample)
			assert.Equal(t, tc.labels, spec.Labels)
			assert.Equal(t, DefaultWidgetTitle, spec.Title)
		})
	}
}

func TestBuildChartSpecLinePlotsEveryKey(t *testing.T) {
	spec := BuildChartSpec(Widget{Type: ChartLine, DataKey: DataKeys{"value1", "value2"}})

	require.Len(t, spec.Series, 2)
	assert.Equal(t, "value1", spec.Series[0].Name)
	assert.Equal(t, 400.0, spec.Series[0].Values[0])
	assert.Equal(t, "value2", spec.Series[1].Name)
	assert.Equal(t, 240.0, spec.Series[1].Values[0])
}

func TestBuildChartSpecPieUsesPrimaryKeyOnly(t *testing.T) {
	spec := BuildChartSpec(Widget{
		Type:    ChartPie,
		DataKey: DataKeys{"value", "ignored"},
		Data:    []DataPoint{{Name: "x", Value: 3}},
	})

	require.Len(t, spec.Series, 1)
	assert.Equal(t, []float64{3}, spec.Series[0].Values)
}

func TestBuildChartSpecMissingKeyPlotsZero(t *testing.T) {
	spec := BuildChartSpec(Widget{
		Type:    ChartLine,
		DataKey: DataKeys{"absent"},
		Data:    []DataPoint{{Name: "x", Value: 3}},
	})

	require.Len(t, spec.Series, 1)
	assert.Equal(t, []float64{0}, spec.Series[0].Values)
}

func TestSampleDataUnknownType(t *testing.T) {
	assert.Nil(t, SampleData(ChartType("bubble")))
}
