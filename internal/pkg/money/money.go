package money

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places kept for stored amounts and percentages.
const Places = 2

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// leading numeric prefix, so "1500.50 USD" reads as 1500.50
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseOrZero coerces any scalar into a decimal. Anything that does not read
// as a number becomes zero; it never returns an error.
func ParseOrZero(v interface{}) decimal.Decimal {
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return t
	case *decimal.Decimal:
		if t == nil {
			return decimal.Zero
		}
		return *t
	case float64:
		return fromFloat(t)
	case float32:
		return fromFloat(float64(t))
	case int:
		return decimal.NewFromInt(int64(t))
	case int32:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case string:
		return parseString(t)
	case *string:
		if t == nil {
			return decimal.Zero
		}
		return parseString(*t)
	case bool:
		return decimal.Zero
	case fmt.Stringer:
		return parseString(t.String())
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func parseString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	match := numericPrefix.FindString(s)
	if match == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round rounds to the stored precision (half away from zero).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// PercentOf returns base * percent / 100.
func PercentOf(base, percent decimal.Decimal) decimal.Decimal {
	return base.Mul(percent).Div(hundred)
}

// RatioPercent returns part / base * 100. Callers guard base > 0.
func RatioPercent(part, base decimal.Decimal) decimal.Decimal {
	return part.Div(base).Mul(hundred)
}

// Grow returns base * (1 + percent/100).
func Grow(base, percent decimal.Decimal) decimal.Decimal {
	return base.Add(PercentOf(base, percent))
}

// Monthly splits an annual amount into twelve periods.
func Monthly(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(twelve)
}
