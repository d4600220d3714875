package ingestion

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// extractDOCX emits one line per body paragraph and one line per table row, with
// cells separated by tabs.
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx archive: %w", err)
	}
	if len(doc.Document.Body.Items) == 0 {
		return "", fmt.Errorf("docx archive has no document body")
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			sb.WriteString(it.String())
			sb.WriteByte('\n')
		case *docx.Table:
			writeTable(&sb, it)
		}
	}
	return sb.String(), nil
}

func writeTable(sb *strings.Builder, t *docx.Table) {
	for _, row := range t.TableRows {
		for i, cell := range row.TableCells {
			if i > 0 {
				sb.WriteByte('\t')
			}
			for j, p := range cell.Paragraphs {
				if j > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(p.String())
			}
		}
		sb.WriteByte('\n')
		for _, cell := range row.TableCells {
			for _, nested := range cell.Tables {
				writeTable(sb, nested)
			}
		}
	}
}
