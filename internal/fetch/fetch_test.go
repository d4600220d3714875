package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResume_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Ada Lovelace</h1><p>Python, SQL</p></body></html>"))
	}))
	defer server.Close()

	doc, err := Resume(context.Background(), server.URL+"/cv", nil)
	require.NoError(t, err)
	assert.Equal(t, "cv.html", doc.Filename)
	assert.Contains(t, string(doc.Data), "<h1>Ada Lovelace</h1>")
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)
}

func TestResume_InvalidURL(t *testing.T) {
	for _, raw := range []string{"not-a-valid-url", "ftp://example.com/cv.pdf", "http://"} {
		_, err := Resume(context.Background(), raw, nil)
		require.Error(t, err, raw)

		var fetchErr *Error
		assert.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, err.Error(), "invalid URL")
	}
}

func TestResume_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Resume(context.Background(), server.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestResume_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	_, err := Resume(context.Background(), server.URL+"/cv.txt", &Options{MaxBytes: 1024, UserAgent: DefaultUserAgent})
	require.Error(t, err)
	assert.True(t, IsTooLarge(err))
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name        string
		rawURL      string
		contentType string
		want        string
	}{
		{"path extension wins", "https://example.com/files/cv.pdf", "text/plain", "cv.pdf"},
		{"pdf content type", "https://example.com/download", "application/pdf", "download.pdf"},
		{"docx content type", "https://example.com/cv", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "cv.docx"},
		{"html with charset", "https://example.com/about", "text/html; charset=utf-8", "about.html"},
		{"bare host", "https://ada.dev/", "text/html", "resume.html"},
		{"unknown type", "https://example.com/cv", "application/octet-stream", "cv.txt"},
		{"missing type", "https://example.com/cv", "", "cv.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.rawURL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Filename(u, tt.contentType))
		})
	}
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/cv.pdf"))
	assert.True(t, IsURL(" HTTP://example.com"))
	assert.False(t, IsURL("resume.pdf"))
	assert.False(t, IsURL("/tmp/http/cv.txt"))
}
