package export

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/wiki-exporter/internal/model"
)

// pdfRenderTimeout bounds one headless-browser print.
const pdfRenderTimeout = 60 * time.Second

// pdfStyle is the fixed stylesheet applied to the HTML document before
// printing.
const pdfStyle = `
body {
	font-family: Arial, sans-serif;
	margin: 50px;
	line-height: 1.5;
}
h1, h2, h3, h4, h5, h6 { color: #333; margin-top: 20px; }
h1 { border-bottom: 1px solid #eee; padding-bottom: 10px; }
code { background: #f4f4f4; padding: 2px 5px; border-radius: 3px; }
pre { background: #f4f4f4; padding: 10px; border-radius: 5px; overflow-x: auto; }
blockquote { border-left: 3px solid #ddd; margin-left: 0; padding-left: 15px; color: #777; }
img { max-width: 100%; }
hr { border: 0; border-top: 1px solid #eee; margin: 30px 0; }
`

// styledHTML wraps an HTML fragment in the full printable document.
func styledHTML(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>%s</title>
<style>%s</style>
</head>
<body>
%s
</body>
</html>`, html.EscapeString(title), pdfStyle, body)
}

// PDFRenderer converts the blob to styled HTML, then prints it to PDF with a
// headless browser. When the browser is unavailable or fails, it stores the
// styled HTML bytes instead, still under the .pdf filename.
type PDFRenderer struct {
	// ChromeDisabled skips the browser and always emits the HTML fallback.
	ChromeDisabled bool
	Log            *logrus.Logger
}

// Format returns the PDF format tag.
func (PDFRenderer) Format() model.FileFormat { return model.FormatPDF }

// Filename returns <repo>_wiki.pdf.
func (PDFRenderer) Filename(repoName string) string { return repoName + "_wiki.pdf" }

// Render produces PDF bytes, degraded HTML bytes, or an error-message file.
func (r PDFRenderer) Render(ctx context.Context, repoName, content string) []byte {
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	body, err := markdownToHTML(content)
	if err != nil {
		log.WithError(err).Error("PDF generation failed")
		return []byte(fmt.Sprintf("PDF generation failed: %v", err))
	}
	doc := styledHTML(repoName+" Wiki", body)

	if r.ChromeDisabled {
		return []byte(doc)
	}
	pdf, err := printToPDF(ctx, doc)
	if err != nil {
		log.WithError(err).Warn("browser PDF rendering failed, falling back to HTML")
		return []byte(doc)
	}
	return pdf
}

// printToPDF renders the HTML document in headless Chrome and prints it.
func printToPDF(ctx context.Context, htmlDoc string) ([]byte, error) {
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

	browserCtx, cancel = context.WithTimeout(browserCtx, pdfRenderTimeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlDoc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser rendering failed: %w", err)
	}
	return pdf, nil
}
