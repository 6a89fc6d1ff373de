package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// BoardManifest models a YAML document describing the widgets a board starts
// with.
type BoardManifest struct {
	Version string           `json:"version" yaml:"version"`
	Name    string           `json:"name,omitempty" yaml:"name,omitempty"`
	Widgets []ManifestWidget `json:"widgets" yaml:"widgets"`
	Source  string           `json:"-" yaml:"-"`
}

// ManifestWidget is a single seeded widget. Query-backed entries go through
// the add pipeline; static entries are stored as-is and plot sample data.
type ManifestWidget struct {
	Key              string `json:"key,omitempty" yaml:"key,omitempty"`
	Static           bool   `json:"static,omitempty" yaml:"static,omitempty"`
	AddWidgetRequest `yaml:",inline"`
}

// SeedKey identifies the entry across restarts: the explicit key or the
// snake_cased title.
func (w ManifestWidget) SeedKey() string {
	if key := strings.TrimSpace(w.Key); key != "" {
		return key
	}
	return seedKey(w.Title)
}

func seedKey(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultWidgetTitle
	}
	return strcase.ToSnake(title)
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*BoardManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*BoardManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc BoardManifest
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *BoardManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Widgets))
	for idx, widget := range doc.Widgets {
		if widget.Type != "" && !widget.Type.Valid() {
			return fmt.Errorf("dashboard: manifest widget at index %d: %w: %q", idx, ErrInvalidChartType, widget.Type)
		}
		if !widget.Static && strings.TrimSpace(widget.DataSource) == "" {
			return fmt.Errorf("dashboard: manifest widget at index %d is missing dataSource", idx)
		}
		key := widget.SeedKey()
		if _, exists := seen[key]; exists {
			return fmt.Errorf("dashboard: manifest duplicates widget key %s", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (doc *BoardManifest) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}
