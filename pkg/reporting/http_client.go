package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	dashboard "github.com/goliatone/go-dashboard-builder/components/dashboard"
)

const (
	// DefaultTunnelHeader is sent on every request so tunnelled backends skip
	// their browser interstitial.
	DefaultTunnelHeader = "ngrok-skip-browser-warning"
	// DefaultTunnelValue accompanies DefaultTunnelHeader.
	DefaultTunnelValue = "69420"

	defaultTimeout = 10 * time.Second
	queryPath      = "/query/new/bar"

	maxResponseBytes = 32 << 20
)

var errInvalidResponse = errors.New("invalid response format from server")

// HTTPConfig configures the reporting API client.
type HTTPConfig struct {
	BaseURL string
	// HeaderName and HeaderValue form the extra header sent with every
	// request. Empty values fall back to the tunnel defaults; set HeaderName
	// to "-" to send nothing.
	HeaderName  string
	HeaderValue string
	HTTPClient  *http.Client
	Timeout     time.Duration
	// RequestsPerSecond enables outbound rate limiting when positive.
	RequestsPerSecond float64
	Burst             int
	Logger            *slog.Logger
}

// HTTPClient talks to the reporting REST API.
type HTTPClient struct {
	baseURL     string
	headerName  string
	headerValue string
	client      *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
}

var _ dashboard.ReportingClient = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the reporting API rooted at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("reporting: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("reporting: parse base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	name, value := cfg.HeaderName, cfg.HeaderValue
	if name == "" {
		name, value = DefaultTunnelHeader, DefaultTunnelValue
	}
	if name == "-" {
		name = ""
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HTTPClient{
		baseURL:     base,
		headerName:  name,
		headerValue: value,
		client:      httpClient,
		limiter:     limiter,
		logger:      logger,
	}, nil
}

type fieldRow struct {
	EntityName string `json:"entityName"`
	ColumnName string `json:"columnName"`
}

// ListDataSources returns the distinct entity names of GET /fields in
// first-seen order.
func (c *HTTPClient) ListDataSources(ctx context.Context) ([]string, error) {
	var rows []fieldRow
	if err := c.do(ctx, http.MethodGet, "/fields", nil, &rows); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(rows))
	tables := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.EntityName == "" {
			continue
		}
		if _, ok := seen[row.EntityName]; ok {
			continue
		}
		seen[row.EntityName] = struct{}{}
		tables = append(tables, row.EntityName)
	}
	return tables, nil
}

// ListFields returns the column names of a table.
func (c *HTTPClient) ListFields(ctx context.Context, table string) ([]string, error) {
	var rows []fieldRow
	if err := c.do(ctx, http.MethodGet, "/fields/"+url.PathEscape(table), nil, &rows); err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(rows))
	for _, row := range rows {
		fields = append(fields, row.ColumnName)
	}
	return fields, nil
}

// ListRelations returns the relations declared for a table.
func (c *HTTPClient) ListRelations(ctx context.Context, table string) ([]dashboard.Relation, error) {
	var relations []dashboard.Relation
	if err := c.do(ctx, http.MethodGet, "/relations/"+url.PathEscape(table), nil, &relations); err != nil {
		return nil, err
	}
	if relations == nil {
		relations = []dashboard.Relation{}
	}
	return relations, nil
}

// ExecuteQuery posts the payload and flattens message.data into points in
// response order. Any body without an object at message.data is a server
// fault.
func (c *HTTPClient) ExecuteQuery(ctx context.Context, payload dashboard.QueryPayload) ([]dashboard.DataPoint, error) {
	body, err := c.fetch(ctx, http.MethodPost, queryPath, payload.Clone())
	if err != nil {
		return nil, err
	}
	return decodeQueryResponse(body)
}

func decodeQueryResponse(body []byte) ([]dashboard.DataPoint, error) {
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, invalidResponse()
	}
	var message struct {
		Data json.RawMessage `json:"data"`
	}
	if !isObject(envelope.Message) || json.Unmarshal(envelope.Message, &message) != nil {
		return nil, invalidResponse()
	}
	if !isObject(message.Data) {
		return nil, invalidResponse()
	}
	return flattenData(message.Data)
}

// flattenData walks the data object token by token so points keep the key
// order of the document. A repeated key keeps its first position and its
// last value.
func flattenData(data json.RawMessage) ([]dashboard.DataPoint, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, invalidResponse()
	}
	points := []dashboard.DataPoint{}
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, invalidResponse()
		}
		label, ok := tok.(string)
		if !ok {
			return nil, invalidResponse()
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, invalidResponse()
		}
		value, err := cellValue(raw)
		if err != nil {
			return nil, dashboard.NewServerError(0, fmt.Sprintf("%s: label %q", errInvalidResponse, label))
		}
		if i, seen := index[label]; seen {
			points[i].Value = value
			continue
		}
		index[label] = len(points)
		points = append(points, dashboard.DataPoint{Name: label, Value: value})
	}
	return points, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func invalidResponse() error {
	return dashboard.NewServerError(0, errInvalidResponse.Error())
}

// cellValue reads a number, or the first number of an array. Empty arrays
// and nulls read as zero.
func cellValue(raw json.RawMessage) (float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, nil
	}
	if trimmed[0] == '[' {
		var values []*float64
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return 0, err
		}
		if len(values) == 0 || values[0] == nil {
			return 0, nil
		}
		return *values[0], nil
	}
	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return 0, err
	}
	return value, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	body, err := c.fetch(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return dashboard.NewLocalError(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// fetch sends the request and returns the body of a successful response.
func (c *HTTPClient) fetch(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, dashboard.NewLocalError(fmt.Errorf("encode payload: %w", err))
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, dashboard.NewLocalError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.headerName != "" {
		req.Header.Set(c.headerName, c.headerValue)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, dashboard.NewLocalError(fmt.Errorf("rate limit: %w", err))
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "reporting request failed", "method", method, "path", path, "error", err)
		return nil, dashboard.NewNoResponseError(err)
	}
	defer resp.Body.Close()
	c.logger.DebugContext(ctx, "reporting request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, dashboard.NewServerError(resp.StatusCode, serverMessage(raw))
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, dashboard.NewNoResponseError(err)
	}
	return raw, nil
}

// serverMessage pulls the error text out of an error body: the "error" field,
// then "message", then nothing.
func serverMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message"} {
		if msg, ok := body[key].(string); ok && msg != "" {
			return msg
		}
	}
	return ""
}
