package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64 // scaled by 1e4
		wantErr bool
	}{
		{name: "integer", input: "5", want: 50_000},
		{name: "two decimals", input: "12.25", want: 122_500},
		{name: "four decimals", input: "0.0001", want: 1},
		{name: "extra digits truncated", input: "1.23456", want: 12_345},
		{name: "negative", input: "-3.5", want: -35_000},
		{name: "explicit plus", input: "+2", want: 20_000},
		{name: "leading dot", input: ".5", want: 5_000},
		{name: "whitespace trimmed", input: "  7  ", want: 70_000},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "exponent rejected", input: "1e3", wantErr: true},
		{name: "uppercase exponent rejected", input: "2.5E2", wantErr: true},
		{name: "negative exponent rejected", input: "1e-4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuantity(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Int64Scaled())
		})
	}
}

func TestQuantity_String(t *testing.T) {
	assert.Equal(t, "5.0000", NewQuantityFromInt64Scaled(50_000).String())
	assert.Equal(t, "0.0001", NewQuantityFromInt64Scaled(1).String())
	assert.Equal(t, "-3.5000", NewQuantityFromInt64Scaled(-35_000).String())
	assert.Equal(t, "0.0000", Quantity(0).String())
}

func TestQuantity_JSONRoundTrip(t *testing.T) {
	q, err := ParseQuantity("12.25")
	require.NoError(t, err)

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "12.2500", string(data))

	var back Quantity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, q, back)
}

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "number", input: "3.5", want: 35_000},
		{name: "quoted string", input: `"3.5"`, want: 35_000},
		{name: "null", input: "null", want: 0},
		{name: "integer", input: "10", want: 100_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.input), &q))
			assert.Equal(t, tt.want, q.Int64Scaled())
		})
	}
}

func TestQuantity_Decimal(t *testing.T) {
	q, err := ParseQuantity("2.5")
	require.NoError(t, err)

	// 2.5 * 10.00 = 25.00, exact
	price := MustMoney("10.00")
	assert.True(t, price.Mul(q.Decimal()).Equal(MustMoney("25")))
}

func TestQuantity_SignHelpers(t *testing.T) {
	pos := NewQuantityFromFloat64(1.5)
	neg := pos.Neg()

	assert.True(t, pos.IsPositive())
	assert.True(t, neg.IsNegative())
	assert.True(t, Quantity(0).IsZero())
	assert.Equal(t, pos, neg.Abs())
}

func TestMoneyHelpers(t *testing.T) {
	m, err := NewMoneyFromString("19.99")
	require.NoError(t, err)
	assert.Equal(t, "19.99", m.String())

	assert.True(t, Zero().IsZero())
	assert.Panics(t, func() { MustMoney("not money") })
}
