package invoices

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/angkor-trade/angkor-trade/internal/money"
)

// templateRows is the number of preprinted line rows in the document
// template. Shorter invoices are padded with blank rows so the printed
// layout stays fixed; longer ones are never truncated.
const templateRows = 8

// ProjectOptions controls secondary-currency inclusion.
type ProjectOptions struct {
	IncludeExchangeRate bool
}

// ProjectedLine is one display-ready line row. All fields are strings so a
// padding row can be genuinely blank.
type ProjectedLine struct {
	ProductName  string
	VariantName  string
	VariantUnit  string
	VariantPrice string
	Quantity     string
	TotalPrice   string
}

// Projected is the flat, display-ready form of an invoice consumed by both
// document exporters. It is recomputed per export and never persisted.
type Projected struct {
	InvoiceNumber   string
	SaleName        string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	TaxiPhone       string
	ExchangeRate    string
	Lines           []ProjectedLine
	TotalPriceUSD   string
	TotalPriceRiel  string
	Year            int
	Month           int
	Day             int
}

// Project flattens an invoice for document rendering. Totals accumulate
// with exact decimal arithmetic. Riel figures (and the exchange rate field)
// are emitted only when opts ask for them and the invoice carries a
// non-zero rate; otherwise they are empty strings — an empty value means
// "not applicable", which is not the same thing as zero.
func Project(inv Invoice, opts ProjectOptions) (Projected, error) {
	total := decimal.Zero

	lines := make([]ProjectedLine, 0, max(len(inv.Lines), templateRows))
	for i, l := range inv.Lines {
		unit, err := l.UnitPrice()
		if err != nil {
			return Projected{}, fmt.Errorf("invoices: line %d price: %w", i+1, err)
		}
		lineTotal := unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(lineTotal)
		lines = append(lines, ProjectedLine{
			ProductName:  l.ProductName,
			VariantName:  l.VariantName,
			VariantUnit:  l.VariantUnit,
			VariantPrice: money.Format(unit, false),
			Quantity:     strconv.Itoa(l.Quantity),
			TotalPrice:   money.Format(lineTotal, false),
		})
	}
	for len(lines) < templateRows {
		lines = append(lines, ProjectedLine{})
	}

	p := Projected{
		InvoiceNumber: inv.InvoiceNumber,
		Lines:         lines,
		TotalPriceUSD: money.Format(total, false),
		Year:          inv.Date.Year(),
		Month:         int(inv.Date.Month()),
		Day:           inv.Date.Day(),
	}
	if inv.Customer != nil {
		p.SaleName = inv.Customer.SaleName
		p.CustomerName = inv.Customer.Name
		p.CustomerPhone = inv.Customer.Phone
		p.CustomerAddress = inv.Customer.Address
		p.TaxiPhone = inv.Customer.TaxiPhone
	}

	if opts.IncludeExchangeRate && inv.ExchangeRate != nil && !inv.ExchangeRate.IsZero() {
		p.ExchangeRate = inv.ExchangeRate.String()
		p.TotalPriceRiel = money.Format(total.Mul(*inv.ExchangeRate), true)
	}

	return p, nil
}

// TemplateData binds the projection to the document template's merge-field
// names.
func (p Projected) TemplateData() map[string]any {
	rows := make([]map[string]any, len(p.Lines))
	for i, l := range p.Lines {
		rows[i] = map[string]any{
			"product_name":  l.ProductName,
			"variant_name":  l.VariantName,
			"variant_unit":  l.VariantUnit,
			"variant_price": l.VariantPrice,
			"quantity":      l.Quantity,
			"total_price":   l.TotalPrice,
		}
	}
	return map[string]any{
		"invoice_number":   p.InvoiceNumber,
		"sale_name":        p.SaleName,
		"customer_name":    p.CustomerName,
		"customer_phone":   p.CustomerPhone,
		"customer_address": p.CustomerAddress,
		"exchange_rate":    p.ExchangeRate,
		"taxi_phone":       p.TaxiPhone,
		"products":         rows,
		"total_price_usd":  p.TotalPriceUSD,
		"total_price_riel": p.TotalPriceRiel,
		"year":             p.Year,
		"month":            p.Month,
		"day":              p.Day,
	}
}
