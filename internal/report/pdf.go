package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ErrRendererUnavailable is returned when no headless browser can be found.
var ErrRendererUnavailable = errors.New("pdf renderer unavailable")

const defaultRenderTimeout = 60 * time.Second

const printCSS = `
body { font-family: Helvetica, Arial, sans-serif; font-size: 10pt; color: #1f2937; margin: 0; }
h1 { color: #1e40af; font-size: 20pt; text-align: center; margin-bottom: 4pt; }
h1 + p { text-align: center; color: #6b7280; }
h2 { color: #1e40af; font-size: 13pt; border-bottom: 1px solid #cbd5e1; padding-bottom: 2pt; margin-top: 16pt; }
blockquote { background: #eff6ff; border-left: 4px solid #1e40af; margin: 8pt 0; padding: 6pt 10pt; }
table { border-collapse: collapse; width: 100%; margin: 6pt 0; page-break-inside: avoid; }
th { background: #1e40af; color: #ffffff; text-align: left; }
th, td { border: 1px solid #cbd5e1; padding: 4pt 6pt; vertical-align: top; }
tr:nth-child(even) td { background: #f8fafc; }
hr { border: none; border-top: 1px solid #cbd5e1; margin-top: 18pt; }
`

const footerTemplate = `<div style="font-size:8px;width:100%;text-align:center;color:#6b7280;">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

// PDFRenderer turns report markdown into a PDF through headless Chromium.
type PDFRenderer struct {
	chromePath string
	timeout    time.Duration
}

// NewPDFRenderer builds a renderer. An empty chromePath is auto-detected; if
// no browser is found the renderer reports ErrRendererUnavailable.
func NewPDFRenderer(chromePath string, timeout time.Duration) *PDFRenderer {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	return &PDFRenderer{chromePath: chromePath, timeout: timeout}
}

// Available reports whether a browser binary was configured or detected.
func (r *PDFRenderer) Available() bool { return r != nil && r.chromePath != "" }

// Render converts markdown into a letter-size PDF.
func (r *PDFRenderer) Render(ctx context.Context, markdown string) ([]byte, error) {
	if !r.Available() {
		return nil, ErrRendererUnavailable
	}
	html, err := buildHTML(markdown)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.ExecPath(r.chromePath),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, r.timeout)
	defer cancelTimeout()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))
	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(`<div></div>`).
				WithFooterTemplate(footerTemplate).
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				WithMarginTop(0.6).
				WithMarginBottom(0.7).
				WithMarginLeft(0.6).
				WithMarginRight(0.6).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}

func buildHTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><style>")
	out.WriteString(printCSS)
	out.WriteString("</style></head><body>")
	out.Write(body.Bytes())
	out.WriteString("</body></html>")
	return out.String(), nil
}

func detectChromePath() string {
	for _, candidate := range []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
