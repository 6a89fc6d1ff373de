package queries

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// SchemaKind selects which schema lookup a SchemaQuery issues.
type SchemaKind string

const (
	SchemaTables    SchemaKind = "tables"
	SchemaFields    SchemaKind = "fields"
	SchemaRelations SchemaKind = "relations"
)

// SchemaInput names the lookup and, for fields and relations, its table.
// An empty Kind lists tables.
type SchemaInput struct {
	Kind  SchemaKind `json:"kind,omitempty"`
	Table string     `json:"table,omitempty"`
}

// SchemaResult is the discovery answer. Only the slice matching the
// requested kind is populated.
type SchemaResult struct {
	Tables    []string             `json:"tables,omitempty"`
	Fields    []string             `json:"fields,omitempty"`
	Relations []dashboard.Relation `json:"relations,omitempty"`
}

type schemaService interface {
	Tables(ctx context.Context) ([]string, error)
	Fields(ctx context.Context, table string) ([]string, error)
	Relations(ctx context.Context, table string) ([]dashboard.Relation, error)
}

// SchemaQuery reads the reporting backend's schema.
type SchemaQuery struct {
	service schemaService
}

// NewSchemaQuery builds the query.
func NewSchemaQuery(service schemaService) *SchemaQuery {
	return &SchemaQuery{service: service}
}

var _ gocommand.Querier[SchemaInput, SchemaResult] = (*SchemaQuery)(nil)

// Query issues exactly one backend lookup for input.Kind.
func (q *SchemaQuery) Query(ctx context.Context, input SchemaInput) (SchemaResult, error) {
	switch input.Kind {
	case "", SchemaTables:
		tables, err := q.service.Tables(ctx)
		if err != nil {
			return SchemaResult{}, err
		}
		return SchemaResult{Tables: tables}, nil
	case SchemaFields:
		fields, err := q.service.Fields(ctx, input.Table)
		if err != nil {
			return SchemaResult{}, err
		}
		return SchemaResult{Fields: fields}, nil
	case SchemaRelations:
		relations, err := q.service.Relations(ctx, input.Table)
		if err != nil {
			return SchemaResult{}, err
		}
		return SchemaResult{Relations: relations}, nil
	default:
		return SchemaResult{}, fmt.Errorf("%w: unknown schema kind %q", dashboard.ErrValidation, input.Kind)
	}
}

type payloadService interface {
	PreviewPayload(ctx context.Context, sel dashboard.WidgetSelection) (dashboard.QueryPayload, error)
}

// PayloadQuery builds the query payload for a selection without running it.
type PayloadQuery struct {
	service payloadService
}

// NewPayloadQuery builds the query.
func NewPayloadQuery(service payloadService) *PayloadQuery {
	return &PayloadQuery{service: service}
}

var _ gocommand.Querier[dashboard.WidgetSelection, dashboard.QueryPayload] = (*PayloadQuery)(nil)

// Query validates the selection and returns its payload.
func (q *PayloadQuery) Query(ctx context.Context, sel dashboard.WidgetSelection) (dashboard.QueryPayload, error) {
	return q.service.PreviewPayload(ctx, sel)
}
