package conditions

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name string
		expr string
		vars map[string]interface{}
		want bool
	}{
		{"empty always holds", "", nil, true},
		{"whitespace always holds", "   ", nil, true},
		{"amount above threshold", "amount > 10000", map[string]interface{}{VarAmount: 15000.0}, true},
		{"amount below threshold", "amount > 10000", map[string]interface{}{VarAmount: 9000.0}, false},
		{"decimal amount", "amount > 10000", map[string]interface{}{VarAmount: decimal.NewFromInt(12000)}, true},
		{"missing vars are zero", "amount > 10000", nil, false},
		{"combined", "totalIncrease >= 5.0 && employees > 2", map[string]interface{}{VarTotalIncrease: 6.5, VarEmployees: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Evaluate(tt.expr, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	_, err = ev.Evaluate("amount >", nil)
	assert.Error(t, err)

	_, err = ev.Evaluate("unknownVar > 1", nil)
	assert.Error(t, err)

	_, err = ev.Evaluate("amount + 1.0", nil)
	assert.ErrorIs(t, err, ErrOutputType)
}

func TestEvaluate_CachesPrograms(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := ev.Evaluate("employees > 0", map[string]interface{}{VarEmployees: 1})
		require.NoError(t, err)
	}

	count := 0
	ev.programs.Range(func(_, _ any) bool {
		count++
		return true
	})
	assert.Equal(t, 1, count)
}
