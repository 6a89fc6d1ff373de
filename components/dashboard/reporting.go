package dashboard

import "context"

// SchemaClient lists metadata from the reporting service.
type SchemaClient interface {
	ListDataSources(ctx context.Context) ([]string, error)
	ListFields(ctx context.Context, table string) ([]string, error)
	ListRelations(ctx context.Context, table string) ([]Relation, error)
}

// QueryExecutor runs a query payload and returns flattened points.
// Failures are reported as *QueryError.
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, payload QueryPayload) ([]DataPoint, error)
}

// ReportingClient is the union the service needs from the reporting API.
type ReportingClient interface {
	SchemaClient
	QueryExecutor
}
