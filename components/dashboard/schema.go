package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SchemaState is a snapshot of the add-widget form's dependent lookups.
type SchemaState struct {
	Tables       []string   `json:"tables"`
	DataSource   string     `json:"dataSource"`
	Fields       []string   `json:"fields"`
	Relations    []Relation `json:"relations"`
	MetricSource string     `json:"metricSource"`
	MetricFields []string   `json:"metricFields"`
	Loading      bool       `json:"loading"`
}

func (s SchemaState) clone() SchemaState {
	out := s
	out.Tables = append([]string{}, s.Tables...)
	out.Fields = append([]string{}, s.Fields...)
	out.Relations = append([]Relation{}, s.Relations...)
	out.MetricFields = append([]string{}, s.MetricFields...)
	return out
}

// SchemaSession loads tables, fields and relations as the caller changes the
// selected data source and metric source. Each load is tied to the selection
// that issued it; results arriving after the selection moved on are dropped
// and the superseded request's context is cancelled.
//
// A failed lookup clears only its own list. It never aborts sibling lookups.
type SchemaSession struct {
	client SchemaClient
	logger *slog.Logger

	mu           sync.Mutex
	state        SchemaState
	inflight     int
	sourceGen    uint64
	metricGen    uint64
	cancelSource context.CancelFunc
	cancelMetric context.CancelFunc
}

// NewSchemaSession creates a session backed by the given schema client.
func NewSchemaSession(client SchemaClient, logger *slog.Logger) *SchemaSession {
	return &SchemaSession{
		client: client,
		logger: normalizeLogger(logger),
	}
}

// State returns a copy of the current lookups.
func (s *SchemaSession) State() SchemaState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// LoadTables lists the available data sources.
func (s *SchemaSession) LoadTables(ctx context.Context) SchemaState {
	s.begin()
	tables, err := s.client.ListDataSources(ctx)
	if err != nil {
		s.logger.Warn("schema: list data sources failed", "error", err)
		tables = []string{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.state.Tables = tables
	s.state.Loading = s.inflight > 0
	return s.state.clone()
}

// SelectDataSource switches the primary data source, clearing dependent
// selections, and loads its fields and relations concurrently.
func (s *SchemaSession) SelectDataSource(ctx context.Context, table string) SchemaState {
	s.mu.Lock()
	s.sourceGen++
	gen := s.sourceGen
	s.cancel(&s.cancelSource)
	s.cancel(&s.cancelMetric)
	s.metricGen++
	s.state.DataSource = table
	s.state.Fields = []string{}
	s.state.Relations = []Relation{}
	s.state.MetricSource = ""
	s.state.MetricFields = []string{}
	if table == "" {
		defer s.mu.Unlock()
		return s.state.clone()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelSource = cancel
	s.inflight++
	s.state.Loading = true
	s.mu.Unlock()

	var (
		fields    []string
		relations []Relation
		g         errgroup.Group
	)
	g.Go(func() error {
		list, err := s.client.ListFields(loadCtx, table)
		if err != nil {
			s.logger.Warn("schema: list fields failed", "table", table, "error", err)
			return nil
		}
		fields = list
		return nil
	})
	g.Go(func() error {
		list, err := s.client.ListRelations(loadCtx, table)
		if err != nil {
			s.logger.Warn("schema: list relations failed", "table", table, "error", err)
			return nil
		}
		relations = list
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.state.Loading = s.inflight > 0
	if gen != s.sourceGen {
		s.logger.Debug("schema: discarding stale data source lookup", "table", table)
		return s.state.clone()
	}
	cancel()
	s.cancelSource = nil
	s.state.Fields = nonNilStrings(fields)
	s.state.Relations = append([]Relation{}, relations...)
	return s.state.clone()
}

// SelectMetricSource switches the joined metric source and loads its fields.
func (s *SchemaSession) SelectMetricSource(ctx context.Context, table string) SchemaState {
	s.mu.Lock()
	s.metricGen++
	gen := s.metricGen
	s.cancel(&s.cancelMetric)
	s.state.MetricSource = table
	s.state.MetricFields = []string{}
	if table == "" {
		defer s.mu.Unlock()
		return s.state.clone()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelMetric = cancel
	s.inflight++
	s.state.Loading = true
	s.mu.Unlock()

	fields, err := s.client.ListFields(loadCtx, table)
	if err != nil {
		s.logger.Warn("schema: list metric fields failed", "table", table, "error", err)
		fields = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.state.Loading = s.inflight > 0
	if gen != s.metricGen {
		s.logger.Debug("schema: discarding stale metric lookup", "table", table)
		return s.state.clone()
	}
	cancel()
	s.cancelMetric = nil
	s.state.MetricFields = nonNilStrings(fields)
	return s.state.clone()
}

func (s *SchemaSession) begin() {
	s.mu.Lock()
	s.inflight++
	s.state.Loading = true
	s.mu.Unlock()
}

// cancel must be called with the lock held.
func (s *SchemaSession) cancel(fn *context.CancelFunc) {
	if *fn != nil {
		(*fn)()
		*fn = nil
	}
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
