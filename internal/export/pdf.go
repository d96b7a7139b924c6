package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"

	"github.com/angkor-trade/angkor-trade/internal/invoices"
	"github.com/angkor-trade/angkor-trade/web"
)

var ErrNothingStaged = errors.New("export: no document staged to print")

// htmlRenderer turns an HTML document into PDF bytes.
type htmlRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Printer stages a document and then prints it as two distinct steps.
// SetContent completes before Print runs, so Print always converts the
// document staged for this request; printing with nothing staged is an
// error, never a silent reprint of an earlier document.
type Printer struct {
	mu       sync.Mutex
	staged   string
	hasDoc   bool
	renderer htmlRenderer
}

func NewPrinter(renderer htmlRenderer) *Printer {
	return &Printer{renderer: renderer}
}

func (p *Printer) SetContent(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.staged = html
	p.hasDoc = true
}

// Print converts the staged document and clears the stage. The stage is
// consumed even when conversion fails, so a retry re-stages explicitly.
func (p *Printer) Print(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	if !p.hasDoc {
		p.mu.Unlock()
		return nil, ErrNothingStaged
	}
	html := p.staged
	p.staged = ""
	p.hasDoc = false
	p.mu.Unlock()

	return p.renderer.RenderHTML(ctx, html)
}

// PDFExporter renders invoices through the embedded print template and
// converts the result to PDF. Multiple invoices become one document with a
// page break between them.
type PDFExporter struct {
	tpl      *template.Template
	renderer htmlRenderer
}

func NewPDFExporter(renderer htmlRenderer) (*PDFExporter, error) {
	tpl, err := template.ParseFS(web.Templates, "templates/reports/invoice_print.html")
	if err != nil {
		return nil, fmt.Errorf("export: parse print template: %w", err)
	}
	return &PDFExporter{tpl: tpl, renderer: renderer}, nil
}

func (e *PDFExporter) Export(ctx context.Context, invs []invoices.Invoice, opts invoices.ProjectOptions) (*File, error) {
	if len(invs) == 0 {
		return nil, ErrNothingStaged
	}

	projections := make([]invoices.Projected, 0, len(invs))
	for _, inv := range invs {
		p, err := invoices.Project(inv, opts)
		if err != nil {
			return nil, err
		}
		projections = append(projections, p)
	}

	var buf bytes.Buffer
	if err := e.tpl.Execute(&buf, projections); err != nil {
		return nil, fmt.Errorf("export: execute print template: %w", err)
	}

	printer := NewPrinter(e.renderer)
	printer.SetContent(buf.String())
	data, err := printer.Print(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: print: %w", err)
	}

	name := "invoices.pdf"
	if len(projections) == 1 {
		name = fmt.Sprintf("%s(%s).pdf", projections[0].CustomerName, projections[0].InvoiceNumber)
	}
	return &File{Name: name, ContentType: mimePDF, Data: data}, nil
}
