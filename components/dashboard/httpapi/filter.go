package httpapi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// FilterParams lists the query parameters ParseFilter reads.
var FilterParams = []string{"title", "type", "minValue", "maxValue", "startDate", "endDate", "dataSources"}

// ParseFilter reads a FilterState from query parameters named after the
// board's filter form.
func ParseFilter(values url.Values) (dashboard.FilterState, error) {
	filter := dashboard.FilterState{
		Title: strings.TrimSpace(values.Get("title")),
		Type:  dashboard.ChartType(strings.TrimSpace(values.Get("type"))),
		DateRange: dashboard.DateRange{
			StartDate: strings.TrimSpace(values.Get("startDate")),
			EndDate:   strings.TrimSpace(values.Get("endDate")),
		},
		DataSources: strings.TrimSpace(values.Get("dataSources")),
	}
	var err error
	if filter.MinValue, err = dashboard.ParseFilterValue(values.Get("minValue")); err != nil {
		return dashboard.FilterState{}, fmt.Errorf("%w: minValue: %v", errBadFilter, err)
	}
	if filter.MaxValue, err = dashboard.ParseFilterValue(values.Get("maxValue")); err != nil {
		return dashboard.FilterState{}, fmt.Errorf("%w: maxValue: %v", errBadFilter, err)
	}
	return filter, nil
}
