package price

import (
	"testing"

	"bidding-service/internal/domain/shared"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func TestCompute_Scenario(t *testing.T) {
	amounts, err := Compute(decimal.NewFromInt(1000), 10)
	assert.NoError(t, err)

	check.Equal(t, "10000", amounts.SupplyPrice.String())
	check.Equal(t, "1000", amounts.Tax.String())
	check.Equal(t, "11000", amounts.Total.String())
}

func TestCompute_Table(t *testing.T) {
	cases := []struct {
		name     string
		unit     string
		quantity int64
		supply   string
		tax      string
		total    string
	}{
		{"zero quantity", "1500", 0, "0", "0", "0"},
		{"zero price", "0", 7, "0", "0", "0"},
		{"tax rounds half up", "15", 1, "15", "2", "17"},
		{"tax rounds down", "14", 1, "14", "1", "15"},
		{"trailing zero fraction", "333.00", 3, "999", "100", "1099"},
		{"large quantity", "999999999", 1000000000, "999999999000000000", "99999999900000000", "1099999998900000000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amounts, err := Compute(decimal.RequireFromString(tc.unit), tc.quantity)
			assert.NoError(t, err)
			check.Equal(t, tc.supply, amounts.SupplyPrice.String())
			check.Equal(t, tc.tax, amounts.Tax.String())
			check.Equal(t, tc.total, amounts.Total.String())
			check.True(t, amounts.Consistent())
		})
	}
}

func TestCompute_Rejects(t *testing.T) {
	_, err := Compute(decimal.NewFromInt(-1), 1)
	check.True(t, shared.IsKind(err, shared.KindValidation))

	_, err = Compute(decimal.NewFromInt(1), -1)
	check.True(t, shared.IsKind(err, shared.KindValidation))

	_, err = Compute(decimal.RequireFromString("9999999999999999999"), 10)
	check.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestCheckUnitPrice_CurrencyScale(t *testing.T) {
	cases := []struct {
		unit string
		ok   bool
	}{
		{"12", true},
		{"12.0", true},
		{"0", true},
		{"12.5", false},
		{"0.01", false},
		{"-1", false},
	}

	for _, tc := range cases {
		t.Run(tc.unit, func(t *testing.T) {
			err := CheckUnitPrice(decimal.RequireFromString(tc.unit))
			if tc.ok {
				check.NoError(t, err)
			} else {
				check.True(t, shared.IsKind(err, shared.KindValidation))
			}
		})
	}

	_, err := Compute(decimal.RequireFromString("12.5"), 3)
	check.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestCompute_ConsistentAcrossRange(t *testing.T) {
	for unit := int64(0); unit < 500; unit += 7 {
		for quantity := int64(0); quantity < 50; quantity += 3 {
			amounts, err := Compute(decimal.NewFromInt(unit), quantity)
			assert.NoError(t, err)
			check.True(t, amounts.Consistent())
		}
	}
}

func TestLenient(t *testing.T) {
	quantity := int64(4)

	missingPrice := Lenient(decimal.NullDecimal{}, &quantity)
	check.True(t, missingPrice.Total.IsZero())
	check.True(t, missingPrice.Consistent())

	missingQuantity := Lenient(decimal.NewNullDecimal(decimal.NewFromInt(10)), nil)
	check.True(t, missingQuantity.Total.IsZero())

	computed := Lenient(decimal.NewNullDecimal(decimal.NewFromInt(250)), &quantity)
	check.Equal(t, "1100", computed.Total.String())

	negative := int64(-3)
	rejected := Lenient(decimal.NewNullDecimal(decimal.NewFromInt(250)), &negative)
	check.True(t, rejected.Total.IsZero())
}
