package units

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConvertWithinCategory(t *testing.T) {
	got, err := Convert(decimal.NewFromInt(100), "g", "kg")
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("0.1")), "got %s", got)

	got, err = Convert(decimal.NewFromInt(1), "lt", "ml")
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(1000)), "got %s", got)

	got, err = Convert(decimal.NewFromInt(250), "cc", "ml")
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(250)), "got %s", got)

	got, err = Convert(decimal.RequireFromString("2.5"), "kg", "g")
	assert.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(2500)), "got %s", got)
}

func TestConvertAcrossCategoriesFails(t *testing.T) {
	_, err := Convert(decimal.NewFromInt(5), "g", "ml")
	assert.Error(t, err)

	var incompatible *IncompatibleUnitsError
	assert.ErrorAs(t, err, &incompatible)
	assert.Equal(t, "g", incompatible.From)
	assert.Equal(t, "ml", incompatible.To)
}

func TestConvertUnknownSymbol(t *testing.T) {
	_, err := Convert(decimal.NewFromInt(1), "g", "oz")
	var unknown *UnknownUnitError
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oz", unknown.Symbol)

	_, err = Convert(decimal.NewFromInt(1), "oz", "g")
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oz", unknown.Symbol)
}

// Same-symbol conversions bypass the table entirely, including symbols the
// table has never heard of. Callers depend on this behaviour; do not tighten
// it without revisiting every conversion call site.
func TestConvertIdenticalSymbolsShortCircuits(t *testing.T) {
	for _, symbol := range []string{"g", "kg", "ml", "unit", "oz", "banana", ""} {
		got, err := Convert(decimal.NewFromInt(42), symbol, symbol)
		assert.NoError(t, err, "symbol %q", symbol)
		assert.True(t, got.Equal(decimal.NewFromInt(42)), "symbol %q got %s", symbol, got)
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("g"))
	assert.True(t, Known("unit"))
	assert.False(t, Known("oz"))
}
