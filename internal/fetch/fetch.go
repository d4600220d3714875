// Package fetch downloads résumé documents published at a URL so they can go through
// the same ingestion path as uploaded files.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBytes caps a downloaded document, matching the default upload limit.
const DefaultMaxBytes = 25 << 20

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; InterviewCoach/1.0)"

// Document is a downloaded résumé.
type Document struct {
	URL         string
	Filename    string
	ContentType string
	Data        []byte
}

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
	Client    *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

// IsURL reports whether s looks like an http(s) URL rather than a file path.
func IsURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Resume downloads the document at rawURL. Bodies larger than opts.MaxBytes are rejected.
func Resume(ctx context.Context, rawURL string, opts *Options) (*Document, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode), StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBytes+1))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	if int64(len(data)) > opts.MaxBytes {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("document exceeds %d bytes", opts.MaxBytes), Cause: errTooLarge}
	}

	contentType := resp.Header.Get("Content-Type")
	return &Document{
		URL:         rawURL,
		Filename:    Filename(parsed, contentType),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// errTooLarge is wrapped by Error when a body exceeds the size limit.
var errTooLarge = errors.New("document too large")

// IsTooLarge reports whether err came from the size limit.
func IsTooLarge(err error) bool {
	return errors.Is(err, errTooLarge)
}

// extensions maps document media types onto the extensions ingestion recognizes.
var extensions = map[string]string{
	"application/pdf": ".pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"text/html":             ".html",
	"application/xhtml+xml": ".html",
	"text/plain":            ".txt",
}

// Filename names the download after the last path segment ("resume" for a bare host),
// adding an extension from the content type when the name has none.
func Filename(u *url.URL, contentType string) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		name = "resume"
	}
	if path.Ext(name) != "" {
		return name
	}

	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return name + ".txt"
	}
	if ext, ok := extensions[media]; ok {
		return name + ext
	}
	return name + ".txt"
}
