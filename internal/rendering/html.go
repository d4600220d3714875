package rendering

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"sync"

	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/types"
	"go.uber.org/zap"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var (
	reportTemplate     *template.Template
	reportTemplateErr  error
	reportTemplateOnce sync.Once
)

func loadTemplate() (*template.Template, error) {
	reportTemplateOnce.Do(func() {
		tmpl, err := template.New("report.html.tmpl").Funcs(template.FuncMap{
			"inc": func(i int) int { return i + 1 },
		}).ParseFS(templateFS, "templates/report.html.tmpl")
		if err != nil {
			reportTemplateErr = &TemplateError{Message: "failed to parse template", Cause: err}
			return
		}
		reportTemplate = tmpl
	})
	return reportTemplate, reportTemplateErr
}

// RenderHTML executes the report template for doc.
func RenderHTML(doc types.ReportDocument) ([]byte, error) {
	tmpl, err := loadTemplate()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return nil, &TemplateError{Message: "failed to execute template", Cause: err}
	}
	return buf.Bytes(), nil
}

// HTMLRenderer writes the report as a standalone HTML page.
type HTMLRenderer struct {
	dir    string
	logger *zap.Logger
}

// NewHTMLRenderer creates an HTMLRenderer writing into dir.
func NewHTMLRenderer(dir string, logger *zap.Logger) *HTMLRenderer {
	return &HTMLRenderer{dir: dir, logger: logging.OrNop(logger)}
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(_ context.Context, doc types.ReportDocument) (string, error) {
	page, err := RenderHTML(doc)
	if err != nil {
		return "", err
	}

	path, err := writeArtifact(r.dir, doc, "html", page)
	if err != nil {
		return "", err
	}
	r.logger.Debug("report written", zap.String("path", path), zap.Int("bytes", len(page)))
	return path, nil
}
