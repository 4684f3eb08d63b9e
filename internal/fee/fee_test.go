package fee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestServiceFee(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		pct    string
		want   string
	}{
		{"typical XOF amount", "5000", "5.5", "275"},
		{"rounds half up", "1000", "2.25", "23"},
		{"rounds down", "1000", "2.24", "22"},
		{"zero percentage", "5000", "0", "0"},
		{"small amount", "100", "5.5", "6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			pct := decimal.RequireFromString(tt.pct)
			got := ServiceFee(amount, pct)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"ServiceFee(%s, %s) = %s, want %s", tt.amount, tt.pct, got, tt.want)
		})
	}
}

func TestServiceFeeRecomputesWithAmount(t *testing.T) {
	pct := decimal.RequireFromString("5.5")

	first := ServiceFee(decimal.NewFromInt(5000), pct)
	second := ServiceFee(decimal.NewFromInt(10000), pct)

	assert.True(t, first.Equal(decimal.NewFromInt(275)))
	assert.True(t, second.Equal(decimal.NewFromInt(550)))
}

func TestClampPct(t *testing.T) {
	min := decimal.NewFromInt(1)
	max := decimal.NewFromInt(10)

	assert.True(t, ClampPct(decimal.NewFromInt(-5), min, max).Equal(min))
	assert.True(t, ClampPct(decimal.NewFromInt(50), min, max).Equal(max))
	assert.True(t, ClampPct(decimal.RequireFromString("5.5"), min, max).Equal(decimal.RequireFromString("5.5")))
}
