package transactions

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundkeep/fundkeep/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateInputAccepts(t *testing.T) {
	err := ValidateInput(dec("12.50"), domain.DirectionIncome, "Donation", "cat-1")
	assert.NoError(t, err)
}

func TestValidateInputRejects(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		direction   domain.Direction
		description string
		categoryID  string
		field       string
	}{
		{"zero amount", dec("0"), domain.DirectionIncome, "x", "c", "amount"},
		{"negative amount", dec("-5"), domain.DirectionIncome, "x", "c", "amount"},
		{"sub-cent amount", dec("10.005"), domain.DirectionIncome, "x", "c", "amount"},
		{"unknown direction", dec("10"), domain.Direction("transfer"), "x", "c", "direction"},
		{"empty description", dec("10"), domain.DirectionExpense, "", "c", "description"},
		{"oversized description", dec("10"), domain.DirectionExpense, strings.Repeat("a", 256), "c", "description"},
		{"oversized multibyte description", dec("10"), domain.DirectionExpense, strings.Repeat("é", 256), "c", "description"},
		{"missing category", dec("10"), domain.DirectionExpense, "x", "", "category_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.amount, tt.direction, tt.description, tt.categoryID)
			require.Error(t, err)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)

			found := false
			for _, f := range ve.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected a failure on field %s, got %v", tt.field, ve.Fields)
		})
	}
}

func TestValidateInputCountsCharactersNotBytes(t *testing.T) {
	// 200 two-byte characters is 400 bytes but well under the limit.
	err := ValidateInput(dec("10"), domain.DirectionIncome, strings.Repeat("é", 200), "cat-1")
	assert.NoError(t, err)
}

func TestValidateInputCollectsAllFailures(t *testing.T) {
	err := ValidateInput(dec("-1"), domain.Direction("bogus"), "", "")
	require.Error(t, err)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 4)
}
