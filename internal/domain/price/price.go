package price

import (
	"bidding-service/internal/domain/shared"

	"github.com/shopspring/decimal"
)

const (
	// CurrencyScale is the number of fractional digits kept for money.
	CurrencyScale int32 = 0
	// MaxIntegerDigits bounds stored amounts to a NUMERIC(19) column.
	MaxIntegerDigits = 19
)

// TaxRate is the fixed value-added tax applied to every supply price.
var TaxRate = decimal.RequireFromString("0.10")

var maxAmount = decimal.New(1, MaxIntegerDigits)

// Amounts is the monetary triple carried by biddings, participations,
// contracts and orders.
type Amounts struct {
	SupplyPrice decimal.Decimal `json:"supply_price"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// Zero returns amounts with every field set to zero.
func Zero() Amounts {
	return Amounts{
		SupplyPrice: decimal.Zero,
		Tax:         decimal.Zero,
		Total:       decimal.Zero,
	}
}

// CheckUnitPrice rejects negative prices and prices finer than the
// currency scale, which storage could not hold without rounding.
func CheckUnitPrice(unitPrice decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return shared.Validation("unit price must not be negative, got %s", unitPrice)
	}
	if !unitPrice.Equal(unitPrice.Truncate(CurrencyScale)) {
		return shared.Validation("unit price %s has more than %d fractional digits", unitPrice, CurrencyScale)
	}
	return nil
}

// Compute derives supply price, tax and total from a unit price and quantity.
// Tax is rounded half-up to the currency scale.
func Compute(unitPrice decimal.Decimal, quantity int64) (Amounts, error) {
	if err := CheckUnitPrice(unitPrice); err != nil {
		return Amounts{}, err
	}
	if quantity < 0 {
		return Amounts{}, shared.Validation("quantity must not be negative, got %d", quantity)
	}

	supply := unitPrice.Mul(decimal.NewFromInt(quantity))
	tax := supply.Mul(TaxRate).Round(CurrencyScale)
	total := supply.Add(tax)

	if total.GreaterThanOrEqual(maxAmount) {
		return Amounts{}, shared.Validation("total %s exceeds %d digits", total, MaxIntegerDigits)
	}

	return Amounts{SupplyPrice: supply, Tax: tax, Total: total}, nil
}

// Lenient computes amounts but degrades to zero when an input is missing or
// the computation is rejected.
func Lenient(unitPrice decimal.NullDecimal, quantity *int64) Amounts {
	if !unitPrice.Valid || quantity == nil {
		return Zero()
	}
	amounts, err := Compute(unitPrice.Decimal, *quantity)
	if err != nil {
		return Zero()
	}
	return amounts
}

// Consistent reports whether supply price plus tax equals the total.
func (a Amounts) Consistent() bool {
	return a.SupplyPrice.Add(a.Tax).Equal(a.Total)
}
