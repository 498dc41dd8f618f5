package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// PDFPrinter prints HTML pages to PDF through Chrome. With an empty
// ControlURL a local headless Chrome is launched for each call.
type PDFPrinter struct {
	ControlURL string
	Logger     *slog.Logger
}

// RenderPDF renders Markdown to HTML and prints it.
func (p *PDFPrinter) RenderPDF(ctx context.Context, markdown, title string, w io.Writer) error {
	page, err := RenderHTML(markdown, title)
	if err != nil {
		return err
	}
	return p.Print(ctx, string(page), w)
}

// Print loads html into a blank tab and writes the printed PDF to w.
func (p *PDFPrinter) Print(ctx context.Context, html string, w io.Writer) error {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	wsURL := p.ControlURL
	local := wsURL == ""
	if local {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("pdf: launch chrome: %w", err)
		}
		defer l.Cleanup()
		wsURL = u
		log.Debug("pdf: launched local chrome", "url", wsURL)
	}

	browser := rod.New().ControlURL(wsURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("pdf: connect: %w", err)
	}
	if local {
		// Closing a remote browser would end it for every client.
		defer browser.Close()
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("pdf: open page: %w", err)
	}
	defer page.Close()

	if err := page.SetDocumentContent(html); err != nil {
		return fmt.Errorf("pdf: set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("pdf: wait load: %w", err)
	}
	stream, err := page.PDF(&proto.PagePrintToPDF{PrintBackground: true})
	if err != nil {
		return fmt.Errorf("pdf: print: %w", err)
	}
	if _, err := io.Copy(w, stream); err != nil {
		return fmt.Errorf("pdf: read stream: %w", err)
	}
	return nil
}
