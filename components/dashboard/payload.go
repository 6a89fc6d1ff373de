package dashboard

import (
	"fmt"
	"strings"
)

// Aggregation functions offered by the add-widget form.
var aggregations = []string{"count", "sum", "avg", "min", "max"}

// FilterOperator is a comparison accepted in query filter predicates.
type FilterOperator struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var filterOperators = []FilterOperator{
	{Value: "=", Label: "Equals (=)"},
	{Value: "!=", Label: "Not Equals (!=)"},
	{Value: ">", Label: "Greater Than (>)"},
	{Value: "<", Label: "Less Than (<)"},
}

// Aggregations returns the supported aggregation function names.
func Aggregations() []string {
	return append([]string(nil), aggregations...)
}

// FilterOperators returns the supported filter operators.
func FilterOperators() []FilterOperator {
	return append([]FilterOperator(nil), filterOperators...)
}

// WidgetSelection captures the add-widget form.
type WidgetSelection struct {
	Title        string            `json:"title" yaml:"title"`
	Type         ChartType         `json:"type" yaml:"type"`
	DataSource   string            `json:"dataSource" yaml:"dataSource"`
	Field        string            `json:"field" yaml:"field"`
	Aggregation  string            `json:"aggregation" yaml:"aggregation"`
	MetricSource string            `json:"metricSource,omitempty" yaml:"metricSource,omitempty"`
	Metric       string            `json:"metric,omitempty" yaml:"metric,omitempty"`
	Filters      []FilterPredicate `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// FilterPredicate is a single `field operator 'value'` restriction.
type FilterPredicate struct {
	Field    string `json:"field" yaml:"field"`
	Operator string `json:"operator" yaml:"operator"`
	Value    string `json:"value" yaml:"value"`
}

// HasMetric reports whether a joined metric was selected.
func (s WidgetSelection) HasMetric() bool {
	return s.MetricSource != "" && s.Metric != ""
}

func (s WidgetSelection) withDefaults() WidgetSelection {
	if s.Type == "" {
		s.Type = ChartLine
	}
	s.Aggregation = strings.ToLower(strings.TrimSpace(s.Aggregation))
	return s
}

// BuildQueryPayload turns form selections into a reporting query. relations
// are the join edges previously listed for the primary data source.
//
// A metric selection without a matching relation is rejected with
// ErrJoinPathMissing instead of producing a query without a join clause.
func BuildQueryPayload(sel WidgetSelection, relations []Relation) (QueryPayload, error) {
	payload := QueryPayload{
		Entities:     []string{sel.DataSource},
		Fields:       []string{},
		Join:         []string{},
		Filters:      []string{},
		Aggregations: []string{fmt.Sprintf("%s(%s.%s)", sel.Aggregation, sel.DataSource, sel.Field)},
	}

	for _, filter := range sel.Filters {
		if filter.Field == "" || filter.Value == "" {
			continue
		}
		op := filter.Operator
		if op == "" {
			op = "="
		}
		if !validOperator(op) {
			return QueryPayload{}, validationError("unsupported filter operator %q", op)
		}
		payload.Filters = append(payload.Filters, fmt.Sprintf("%s %s '%s'", filter.Field, op, filter.Value))
	}

	if sel.HasMetric() {
		payload.Entities = append(payload.Entities, sel.MetricSource)
		payload.Fields = []string{sel.MetricSource + "." + sel.Metric}
		relation, ok := findRelation(relations, sel.MetricSource)
		if !ok {
			return QueryPayload{}, fmt.Errorf("%w: %s -> %s", ErrJoinPathMissing, sel.DataSource, sel.MetricSource)
		}
		payload.Join = []string{relation.JoinCondition()}
	}

	return payload, nil
}

func findRelation(relations []Relation, target string) (Relation, bool) {
	for _, rel := range relations {
		if rel.TargetTable == target {
			return rel, true
		}
	}
	return Relation{}, false
}

func validOperator(op string) bool {
	for _, candidate := range filterOperators {
		if candidate.Value == op {
			return true
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
