package rendering

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/types"
	"go.uber.org/zap"
)

// Renderer kinds accepted by New.
const (
	KindPDF    = "pdf"
	KindChrome = "chrome"
	KindHTML   = "html"
)

// artifactTimeLayout is the timestamp segment of an artifact file name.
const artifactTimeLayout = "20060102T150405"

// Renderer writes a report document to disk and returns the artifact path.
type Renderer interface {
	Render(ctx context.Context, doc types.ReportDocument) (string, error)
}

// New returns the renderer named by kind, writing artifacts into dir.
func New(kind, dir string, timeout time.Duration, logger *zap.Logger) (Renderer, error) {
	switch strings.ToLower(kind) {
	case KindPDF, "":
		return NewPDFRenderer(dir, logger), nil
	case KindChrome:
		return NewChromeRenderer(dir, timeout, logger), nil
	case KindHTML:
		return NewHTMLRenderer(dir, logger), nil
	default:
		return nil, fmt.Errorf("unknown report renderer %q", kind)
	}
}

// ArtifactName builds a unique file name of the form
// report_{interview id}_{yyyymmddThhmmss}_{8 hex}.{ext}.
func ArtifactName(interviewID uuid.UUID, at time.Time, ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("report_%s_%s_%s.%s", interviewID, at.UTC().Format(artifactTimeLayout), suffix, ext)
}

// ArtifactInterviewID recovers the interview ID from a file name built by ArtifactName.
func ArtifactInterviewID(name string) (uuid.UUID, bool) {
	name = filepath.Base(name)
	rest, ok := strings.CutPrefix(name, "report_")
	if !ok || len(rest) < 36 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest[:36])
	if err != nil || !strings.HasPrefix(rest[36:], "_") {
		return uuid.Nil, false
	}
	return id, true
}

// writeArtifact stores data under dir with a fresh artifact name and returns its path.
func writeArtifact(dir string, doc types.ReportDocument, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &RenderError{Message: fmt.Sprintf("failed to create report directory %s", dir), Cause: err}
	}

	at := doc.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	path := filepath.Join(dir, ArtifactName(doc.InterviewID, at, ext))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &RenderError{Message: fmt.Sprintf("failed to write %s", path), Cause: err}
	}
	return path, nil
}
