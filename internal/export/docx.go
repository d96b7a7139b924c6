package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/angkor-trade/angkor-trade/internal/docxtpl"
	"github.com/angkor-trade/angkor-trade/internal/invoices"
)

// DocxExporter fills the invoice Word template with projected invoice data.
// The template is re-read on every export so a replaced file on disk takes
// effect without a restart.
type DocxExporter struct {
	templatePath string
}

func NewDocxExporter(templatePath string) *DocxExporter {
	return &DocxExporter{templatePath: templatePath}
}

// Export renders one invoice to a .docx file.
func (e *DocxExporter) Export(inv invoices.Invoice, opts invoices.ProjectOptions) (*File, error) {
	projected, err := invoices.Project(inv, opts)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(e.templatePath)
	if err != nil {
		return nil, fmt.Errorf("export: read template: %w", err)
	}
	tpl, err := docxtpl.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("export: parse template: %w", err)
	}
	data, err := tpl.Render(projected.TemplateData())
	if err != nil {
		return nil, fmt.Errorf("export: render %s: %w", inv.InvoiceNumber, err)
	}

	return &File{
		Name:        docxFilename(projected.CustomerName, projected.InvoiceNumber),
		ContentType: mimeDocx,
		Data:        data,
	}, nil
}

// ExportMany renders each invoice separately and bundles the results into a
// single zip archive. Any failing invoice aborts the whole batch.
func (e *DocxExporter) ExportMany(invs []invoices.Invoice, opts invoices.ProjectOptions) (*File, error) {
	if len(invs) == 1 {
		return e.Export(invs[0], opts)
	}

	files := make([]*File, len(invs))
	var g errgroup.Group
	g.SetLimit(4)
	for i, inv := range invs {
		g.Go(func() error {
			f, err := e.Export(inv, opts)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("export: archive entry %s: %w", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, fmt.Errorf("export: archive entry %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("export: close archive: %w", err)
	}

	return &File{
		Name:        "invoices.zip",
		ContentType: mimeZip,
		Data:        buf.Bytes(),
	}, nil
}
