package invoices

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angkor-trade/angkor-trade/internal/customers"
)

// Invoice is a stored sales invoice. Line items carry a snapshot of the
// product and variant as entered, so later catalog edits never rewrite an
// issued document. ExchangeRate is nil when no riel conversion applies;
// nil and zero both suppress secondary-currency figures.
type Invoice struct {
	ID            int64               `json:"id"`
	InvoiceNumber string              `json:"invoice_number"`
	Date          time.Time           `json:"date"`
	ExchangeRate  *decimal.Decimal    `json:"exchange_rate,omitempty"`
	CustomerID    int64               `json:"customer_id"`
	Customer      *customers.Customer `json:"customer,omitempty"`
	Lines         []LineItem          `json:"products"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// LineItem is one product+variant+quantity entry. VariantListPrice is the
// catalog price at entry time; VariantPrice, when set, overrides it.
type LineItem struct {
	ProductID        int64  `json:"product_id,omitempty"`
	ProductName      string `json:"product_name"`
	VariantName      string `json:"variant_name"`
	VariantUnit      string `json:"variant_unit"`
	VariantListPrice string `json:"variant_list_price"`
	VariantPrice     string `json:"variant_price,omitempty"`
	Quantity         int    `json:"quantity"`
}

// UnitPrice resolves the effective unit price: the override when present,
// the catalog snapshot otherwise. Prices are exact decimal strings and are
// never routed through floats.
func (l LineItem) UnitPrice() (decimal.Decimal, error) {
	s := l.VariantPrice
	if s == "" {
		s = l.VariantListPrice
	}
	return decimal.NewFromString(s)
}
