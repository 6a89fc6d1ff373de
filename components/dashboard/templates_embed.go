package dashboard

import (
	"embed"
	"fmt"
	"io/fs"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// TemplatesFS exposes the board templates rooted at their directory, so
// "board.html" resolves without a prefix.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(fmt.Errorf("dashboard: embedded templates: %w", err))
	}
	return sub
}

// NewTemplateRenderer creates a go-template renderer backed only by the
// embedded board templates. It does not depend on the working directory.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(TemplatesFS()),
		template.WithExtension(".html"),
	)
}
