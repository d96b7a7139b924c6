package invoices

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angkor-trade/angkor-trade/internal/customers"
)

func testInvoice() Invoice {
	rate := decimal.NewFromInt(4045)
	return Invoice{
		ID:            7,
		InvoiceNumber: "INV-0042",
		Date:          time.Date(2024, time.March, 5, 10, 30, 0, 0, time.Local),
		ExchangeRate:  &rate,
		Customer: &customers.Customer{
			Name:      "Chan Dara",
			Address:   "Phnom Penh",
			Phone:     "012-345-678",
			SaleName:  "Sopheap",
			TaxiPhone: "098-765-432",
		},
		Lines: []LineItem{
			{ProductName: "Rice", VariantName: "25kg bag", VariantUnit: "bag", VariantListPrice: "18.50", Quantity: 2},
			{ProductName: "Oil", VariantName: "1L bottle", VariantUnit: "bottle", VariantListPrice: "3", VariantPrice: "2.75", Quantity: 4},
			{ProductName: "Sugar", VariantName: "1kg", VariantUnit: "kg", VariantListPrice: "1.10", Quantity: 3},
		},
	}
}

func TestProject_TotalsAreExact(t *testing.T) {
	p, err := Project(testInvoice(), ProjectOptions{IncludeExchangeRate: true})
	require.NoError(t, err)

	// 18.50*2 + 2.75*4 + 1.10*3 = 37 + 11 + 3.30 = 51.30
	assert.Equal(t, "51.30$", p.TotalPriceUSD)
	assert.Equal(t, "37$", p.Lines[0].TotalPrice)
	assert.Equal(t, "11$", p.Lines[1].TotalPrice, "override price wins over the catalog snapshot")
	assert.Equal(t, "3.30$", p.Lines[2].TotalPrice)
	// 51.30 * 4045 = 207508.50
	assert.Equal(t, "207,508.50៛", p.TotalPriceRiel)
	assert.Equal(t, "4045", p.ExchangeRate)
}

func TestProject_NoFloatDriftAcrossManyLines(t *testing.T) {
	inv := testInvoice()
	inv.ExchangeRate = nil
	inv.Lines = nil
	for i := 0; i < 100; i++ {
		inv.Lines = append(inv.Lines, LineItem{
			ProductName: "x", VariantName: "v", VariantUnit: "u",
			VariantListPrice: "0.10", Quantity: 1,
		})
	}
	p, err := Project(inv, ProjectOptions{})
	require.NoError(t, err)
	assert.Equal(t, "10$", p.TotalPriceUSD)
}

func TestProject_PadsToEightRows(t *testing.T) {
	p, err := Project(testInvoice(), ProjectOptions{IncludeExchangeRate: true})
	require.NoError(t, err)

	require.Len(t, p.Lines, 8)
	for i := 3; i < 8; i++ {
		assert.Equal(t, ProjectedLine{}, p.Lines[i], "row %d must be fully blank", i)
	}
}

func TestProject_NeverTruncatesLongInvoices(t *testing.T) {
	inv := testInvoice()
	for i := 0; i < 10; i++ {
		inv.Lines = append(inv.Lines, LineItem{
			ProductName: "x", VariantName: "v", VariantUnit: "u",
			VariantListPrice: "1", Quantity: 1,
		})
	}
	p, err := Project(inv, ProjectOptions{})
	require.NoError(t, err)
	assert.Len(t, p.Lines, 13)
}

func TestProject_ExchangeRateOmission(t *testing.T) {
	t.Run("excluded by options", func(t *testing.T) {
		p, err := Project(testInvoice(), ProjectOptions{IncludeExchangeRate: false})
		require.NoError(t, err)
		assert.Equal(t, "", p.TotalPriceRiel)
		assert.Equal(t, "", p.ExchangeRate)
	})

	t.Run("absent rate", func(t *testing.T) {
		inv := testInvoice()
		inv.ExchangeRate = nil
		p, err := Project(inv, ProjectOptions{IncludeExchangeRate: true})
		require.NoError(t, err)
		assert.Equal(t, "", p.TotalPriceRiel, "empty, not zero")
		assert.Equal(t, "", p.ExchangeRate)
	})

	t.Run("zero rate", func(t *testing.T) {
		inv := testInvoice()
		zero := decimal.Zero
		inv.ExchangeRate = &zero
		p, err := Project(inv, ProjectOptions{IncludeExchangeRate: true})
		require.NoError(t, err)
		assert.Equal(t, "", p.TotalPriceRiel)
		assert.Equal(t, "", p.ExchangeRate)
	})
}

func TestProject_DateDecomposition(t *testing.T) {
	p, err := Project(testInvoice(), ProjectOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, 3, p.Month)
	assert.Equal(t, 5, p.Day)
}

func TestProject_BadPriceStringFails(t *testing.T) {
	inv := testInvoice()
	inv.Lines[1].VariantPrice = "two dollars"
	_, err := Project(inv, ProjectOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestTemplateData_MergeFieldNames(t *testing.T) {
	p, err := Project(testInvoice(), ProjectOptions{IncludeExchangeRate: true})
	require.NoError(t, err)

	data := p.TemplateData()
	assert.Equal(t, "INV-0042", data["invoice_number"])
	assert.Equal(t, "Chan Dara", data["customer_name"])
	assert.Equal(t, "Sopheap", data["sale_name"])
	assert.Equal(t, "098-765-432", data["taxi_phone"])
	assert.Equal(t, "51.30$", data["total_price_usd"])
	assert.Equal(t, "207,508.50៛", data["total_price_riel"])
	assert.Equal(t, 2024, data["year"])

	rows, ok := data["products"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, rows, 8)
	assert.Equal(t, "Rice", rows[0]["product_name"])
	assert.Equal(t, "2", rows[0]["quantity"])
	assert.Equal(t, "", rows[7]["product_name"])
}
