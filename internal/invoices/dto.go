package invoices

import "time"

type LineItemRequest struct {
	ProductID        int64  `json:"product_id,omitempty"`
	ProductName      string `json:"product_name" validate:"required,max=200"`
	VariantName      string `json:"variant_name" validate:"required,max=200"`
	VariantUnit      string `json:"variant_unit" validate:"required,max=50"`
	VariantListPrice string `json:"variant_list_price" validate:"required"`
	VariantPrice     string `json:"variant_price,omitempty"`
	Quantity         int    `json:"quantity" validate:"required,gt=0"`
}

type CreateInvoiceRequest struct {
	InvoiceNumber string            `json:"invoice_number" validate:"required,max=50"`
	Date          time.Time         `json:"date" validate:"required"`
	ExchangeRate  *string           `json:"exchange_rate,omitempty"`
	CustomerID    int64             `json:"customer_id" validate:"required,gt=0"`
	Lines         []LineItemRequest `json:"products" validate:"required,min=1,dive"`
}

type UpdateInvoiceRequest struct {
	InvoiceNumber *string           `json:"invoice_number,omitempty" validate:"omitempty,min=1,max=50"`
	Date          *time.Time        `json:"date,omitempty"`
	ExchangeRate  *string           `json:"exchange_rate,omitempty"`
	CustomerID    *int64            `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Lines         []LineItemRequest `json:"products,omitempty" validate:"omitempty,min=1,dive"`
}

type ListInvoicesRequest struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	CustomerID *int64
	Sort       string
	Page       int
	PerPage    int
}

// ExportRequest resolves the export working set: explicit ids win; with no
// ids every record matching the filters is exported, independent of
// pagination.
type ExportRequest struct {
	IDs                 []int64    `json:"ids,omitempty"`
	DateFrom            *time.Time `json:"date_from,omitempty"`
	DateTo              *time.Time `json:"date_to,omitempty"`
	CustomerID          *int64     `json:"customer_id,omitempty"`
	IncludeExchangeRate *bool      `json:"exchange_rate,omitempty"`
	Format              string     `json:"format" validate:"omitempty,oneof=pdf docx"`
}

// Options converts the request flag (default true) into projector options.
func (r ExportRequest) Options() ProjectOptions {
	include := true
	if r.IncludeExchangeRate != nil {
		include = *r.IncludeExchangeRate
	}
	return ProjectOptions{IncludeExchangeRate: include}
}
