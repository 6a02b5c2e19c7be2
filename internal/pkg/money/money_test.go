package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseOrZero(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"nil", nil, "0"},
		{"float", 1500.5, "1500.5"},
		{"int", 42, "42"},
		{"numeric string", "85000.00", "85000"},
		{"padded string", "  12.5 ", "12.5"},
		{"string with suffix", "1500.50 USD", "1500.5"},
		{"empty string", "", "0"},
		{"garbage", "abc", "0"},
		{"negative", "-250", "-250"},
		{"bool", true, "0"},
		{"json number", json.Number("3.25"), "3.25"},
		{"nan", math.NaN(), "0"},
		{"inf", math.Inf(1), "0"},
		{"map", map[string]string{"a": "b"}, "0"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseOrZero(c.input)
			assert.True(t, got.Equal(decimal.RequireFromString(c.want)), "got %s want %s", got, c.want)
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, "1666.67", Round(decimal.RequireFromString("1666.6665")).StringFixed(2))
	assert.Equal(t, "0.10", Round(decimal.RequireFromString("0.1")).StringFixed(2))
}

func TestArithmeticHelpers(t *testing.T) {
	base := decimal.NewFromInt(100000)

	assert.True(t, PercentOf(base, decimal.NewFromInt(4)).Equal(decimal.NewFromInt(4000)))
	assert.True(t, RatioPercent(decimal.NewFromInt(1000), base).Equal(decimal.NewFromInt(1)))
	assert.True(t, Grow(base, decimal.NewFromInt(5)).Equal(decimal.NewFromInt(105000)))
	assert.Equal(t, "8750.00", Round(Monthly(decimal.NewFromInt(105000))).StringFixed(2))
}
