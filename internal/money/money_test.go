package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestFormat_WholeAmountsDropFraction(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0$"},
		{"5", "5$"},
		{"100", "100$"},
		{"1000", "1,000$"},
		{"1234567", "1,234,567$"},
		{"5.00", "5$"}, // integer value, trailing zeros in input
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(dec(t, tc.in), false))
		})
	}
}

func TestFormat_FractionalAmountsUseTwoPlaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.5", "0.50$"},
		{"1.1", "1.10$"},
		{"19.8", "19.80$"},
		{"1234.5", "1,234.50$"},
		{"2.345", "2.35$"},  // half away from zero
		{"1.005", "1.01$"},  // documented rounding choice
		{"1.999", "2.00$"},  // rounds up to a whole value, keeps fraction digits
		{"-0.25", "-0.25$"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(dec(t, tc.in), false))
		})
	}
}

func TestFormat_RielSymbol(t *testing.T) {
	assert.Equal(t, "8,090,000៛", Format(dec(t, "8090000"), true))
	assert.Equal(t, "4,045.50៛", Format(dec(t, "4045.5"), true))
}

func TestFormat_NoFloatDrift(t *testing.T) {
	// 1.10 + 2.20 + 3.30 each times 3 must be exactly 19.80.
	sum := decimal.Zero
	for _, s := range []string{"1.10", "2.20", "3.30"} {
		sum = sum.Add(dec(t, s).Mul(decimal.NewFromInt(3)))
	}
	assert.Equal(t, "19.80$", Format(sum, false))
}
