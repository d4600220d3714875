package rendering

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/types"
	"go.uber.org/zap"
)

const (
	pdfMargin     = 20.0
	pdfLineHeight = 6.0
	pdfFont       = "Helvetica"
)

// PDFRenderer lays the report out directly with fpdf. Long transcripts wrap and flow
// onto new pages automatically.
type PDFRenderer struct {
	dir    string
	logger *zap.Logger
}

// NewPDFRenderer creates a PDFRenderer writing into dir.
func NewPDFRenderer(dir string, logger *zap.Logger) *PDFRenderer {
	return &PDFRenderer{dir: dir, logger: logging.OrNop(logger)}
}

// Render implements Renderer.
func (r *PDFRenderer) Render(ctx context.Context, doc types.ReportDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := BuildPDF(doc)
	if err != nil {
		return "", err
	}

	path, err := writeArtifact(r.dir, doc, "pdf", data)
	if err != nil {
		return "", err
	}
	r.logger.Debug("report written",
		zap.String("path", path),
		zap.Int("bytes", len(data)),
		zap.Int("transcripts", len(doc.Transcripts)),
	)
	return path, nil
}

// BuildPDF returns the PDF bytes for doc.
func BuildPDF(doc types.ReportDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("interview-coach", true)

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 18)
	pdf.MultiCell(0, 10, tr(doc.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont(pdfFont, "", 11)
	pdf.SetTextColor(80, 80, 80)
	for _, line := range doc.HeaderLines {
		pdf.CellFormat(0, pdfLineHeight, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)

	heading(pdf, "Scores")
	pdf.SetFont(pdfFont, "", 11)
	for _, line := range doc.SkillLines {
		pdf.CellFormat(0, pdfLineHeight, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetFont(pdfFont, "B", 12)
	pdf.CellFormat(0, pdfLineHeight+1, tr(doc.OverallLine), "", 1, "L", false, 0, "")

	if len(doc.Transcripts) > 0 {
		heading(pdf, "Transcript")
		for _, entry := range doc.Transcripts {
			pdf.SetFont(pdfFont, "B", 11)
			pdf.MultiCell(0, pdfLineHeight, tr(fmt.Sprintf("Q%d (%s): %s", entry.Index+1, entry.Skill, entry.Question)), "", "L", false)
			pdf.SetFont(pdfFont, "", 11)
			pdf.MultiCell(0, pdfLineHeight, tr(entry.Answer), "", "L", false)
			pdf.Ln(3)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Kind: KindPDF, Message: "failed to produce PDF", Cause: err}
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(6)
	pdf.SetFont(pdfFont, "B", 14)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}
