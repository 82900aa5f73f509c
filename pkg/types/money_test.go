package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentsFromString(t *testing.T) {
	cases := []struct {
		in   string
		want Cents
	}{
		{"5.90", 590},
		{"7.50", 750},
		{"0.99", 99},
		{"19.99", 1999},
		{"0", 0},
		{"100", 10000},
	}
	for _, tc := range cases {
		got, err := CentsFromString(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestCentsFromStringRejectsSubCentPrecision(t *testing.T) {
	_, err := CentsFromString("1.999")
	assert.Error(t, err)
}

func TestCentsFromStringRejectsGarbage(t *testing.T) {
	_, err := CentsFromString("abc")
	assert.Error(t, err)
}

func TestCentsString(t *testing.T) {
	assert.Equal(t, "40.28", Cents(4028).String())
	assert.Equal(t, "0.00", Cents(0).String())
	assert.Equal(t, "5.90", Cents(590).String())
}

func TestCentsFromDecimal(t *testing.T) {
	got, err := CentsFromDecimal(decimal.RequireFromString("19.30"))
	require.NoError(t, err)
	assert.Equal(t, Cents(1930), got)
}

func TestPercentOf(t *testing.T) {
	// 10% of 100.00
	assert.Equal(t, Cents(1000), PercentOf(10000, 1000))
	// 10% of 19.30
	assert.Equal(t, Cents(193), PercentOf(1930, 1000))
	// half-up rounding: 10% of 0.05 = 0.005 -> 0.01
	assert.Equal(t, Cents(1), PercentOf(5, 1000))
	assert.Equal(t, Cents(0), PercentOf(0, 1000))
}
