// Package export renders invoices into downloadable documents: Word files
// from a merge-field template and PDFs via a headless-Chromium print
// service. Bulk requests produce a single artifact (a zip of Word files or
// one multi-page PDF).
package export

import "fmt"

const (
	FormatPDF  = "pdf"
	FormatDocx = "docx"

	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePDF  = "application/pdf"
	mimeZip  = "application/zip"
)

// File is a rendered artifact ready to hand to a client.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// docxFilename names a Word export after its customer and invoice number,
// e.g. "Sok Heng(INV-0042).docx".
func docxFilename(customerName, invoiceNumber string) string {
	return fmt.Sprintf("%s(%s).docx", customerName, invoiceNumber)
}
