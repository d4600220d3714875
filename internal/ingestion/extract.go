// Package ingestion turns uploaded résumé files into plain text.
package ingestion

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/interview-coach/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// Format identifies how a résumé file was decoded.
type Format string

// Supported formats.
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// Document is the result of ingesting one résumé file.
type Document struct {
	Filename   string    `json:"filename"`
	Format     Format    `json:"format"`
	Text       string    `json:"text"`
	Hash       string    `json:"hash"` // SHA256 hex digest of the raw upload
	IngestedAt time.Time `json:"ingested_at"`
}

// Extractor converts uploaded files to text. Extraction never fails: unreadable
// input yields an empty string and a warning in the log.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logging.OrNop(logger)}
}

// ExtractText returns the cleaned text of a file, or "" when it cannot be read.
func (e *Extractor) ExtractText(filename string, data []byte) string {
	return e.Ingest(filename, data).Text
}

// Ingest decodes data according to its detected format.
func (e *Extractor) Ingest(filename string, data []byte) *Document {
	format := DetectFormat(filename, data)
	doc := &Document{
		Filename:   filepath.Base(filename),
		Format:     format,
		Hash:       computeHash(data),
		IngestedAt: time.Now().UTC(),
	}

	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	case FormatHTML:
		text, err = extractHTML(data)
	default:
		text, err = extractPlain(data)
	}
	if err != nil {
		e.logger.Warn("résumé text extraction failed",
			zap.Error(err),
			zap.String("filename", doc.Filename),
			zap.String("format", string(format)),
			zap.Int("bytes", len(data)),
		)
		return doc
	}

	doc.Text = CleanText(text)
	e.logger.Debug("résumé text extracted",
		zap.String("filename", doc.Filename),
		zap.String("format", string(format)),
		zap.Int("chars", len(doc.Text)),
	)
	return doc
}

// IngestFile reads and ingests a file from disk.
func (e *Extractor) IngestFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return e.Ingest(path, data), nil
}

// DetectFormat picks a decoder from the file extension, falling back to content sniffing.
func DetectFormat(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".html", ".htm":
		return FormatHTML
	case ".txt", ".md", ".text":
		return FormatText
	}

	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return FormatPDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return FormatDOCX
	}
	head := strings.ToLower(string(data[:min(len(data), 512)]))
	if strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") {
		return FormatHTML
	}
	return FormatText
}

// extractPlain returns UTF-8 content unchanged. Bytes that are not valid UTF-8 are
// decoded as Windows-1252, a superset of Latin-1; valid sequences around them are kept.
func extractPlain(data []byte) (string, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("content looks binary")
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	var b strings.Builder
	b.Grow(len(data) + len(data)/4)
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			r = charmap.Windows1252.DecodeByte(data[0])
		}
		b.WriteRune(r)
		data = data[size:]
	}
	return b.String(), nil
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
