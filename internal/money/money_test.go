package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want Ordering
	}{
		{"equal exact", "100.00", "100.00", Equal},
		{"less", "99.99", "100.00", Less},
		{"greater", "100.01", "100.00", Greater},
		{"sub-cent drift compares equal", "0.30000000000000004", "0.3", Equal},
		{"drift below half a cent is equal", "100.004", "100", Equal},
		{"half a cent rounds away", "100.005", "100", Greater},
		{"negative amounts", "-50.00", "-49.99", Less},
		{"zero against zero", "0", "0.00", Equal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(dec(tt.a), dec(tt.b)))
		})
	}
}

func TestCompareIsSymmetric(t *testing.T) {
	a := dec("0.1").Add(dec("0.2"))
	b := dec("0.3")

	assert.Equal(t, Equal, Compare(a, b))
	assert.Equal(t, Equal, Compare(b, a))
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(decimal.Zero))
	assert.True(t, IsZero(dec("0.001")))
	assert.False(t, IsZero(dec("0.01")))
	assert.False(t, IsZero(dec("-0.01")))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("1234.56")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("1234.56")))

	_, err = ParseAmount("not-a-number")
	assert.Error(t, err)

	_, err = ParseAmount("")
	assert.Error(t, err)
}

func TestIsCents(t *testing.T) {
	assert.True(t, IsCents(dec("10.50")))
	assert.True(t, IsCents(dec("10")))
	assert.False(t, IsCents(dec("10.505")))
	assert.False(t, IsCents(dec("0.001")))
}
