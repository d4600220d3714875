package rendering

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/types"
	"go.uber.org/zap"
)

// DefaultChromeTimeout bounds a single headless print when no timeout is configured.
const DefaultChromeTimeout = 30 * time.Second

// ChromeRenderer prints the HTML report to PDF with headless Chrome.
// Requires Chrome/Chromium to be installed on the system.
type ChromeRenderer struct {
	dir     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewChromeRenderer creates a ChromeRenderer writing into dir.
func NewChromeRenderer(dir string, timeout time.Duration, logger *zap.Logger) *ChromeRenderer {
	if timeout <= 0 {
		timeout = DefaultChromeTimeout
	}
	return &ChromeRenderer{dir: dir, timeout: timeout, logger: logging.OrNop(logger)}
}

// Render implements Renderer.
func (r *ChromeRenderer) Render(ctx context.Context, doc types.ReportDocument) (string, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return "", err
	}

	data, err := r.print(ctx, string(html))
	if err != nil {
		return "", &RenderError{Kind: KindChrome, Message: "browser print failed", Cause: err}
	}

	path, err := writeArtifact(r.dir, doc, "pdf", data)
	if err != nil {
		return "", err
	}
	r.logger.Debug("report written", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

func (r *ChromeRenderer) print(ctx context.Context, html string) ([]byte, error) {
	r.logger.Debug("starting headless browser")

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}
