// Package units converts scalar quantities between measurement units
// within a closed set of physical categories (mass, volume, count).
package units

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Category int

const (
	Mass Category = iota
	Volume
	Count
)

func (c Category) String() string {
	switch c {
	case Mass:
		return "mass"
	case Volume:
		return "volume"
	case Count:
		return "count"
	default:
		return "unknown"
	}
}

// factors maps every known unit symbol to its category and its multiplier
// into the category's base unit (g, ml, unit).
var factors = map[string]struct {
	category Category
	toBase   decimal.Decimal
}{
	"g":    {Mass, decimal.NewFromInt(1)},
	"kg":   {Mass, decimal.NewFromInt(1000)},
	"ml":   {Volume, decimal.NewFromInt(1)},
	"lt":   {Volume, decimal.NewFromInt(1000)},
	"cc":   {Volume, decimal.NewFromInt(1)},
	"unit": {Count, decimal.NewFromInt(1)},
}

type UnknownUnitError struct {
	Symbol string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit symbol %q", e.Symbol)
}

type IncompatibleUnitsError struct {
	From string
	To   string
}

func (e *IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("cannot convert between %q and %q", e.From, e.To)
}

// Convert translates value from one unit symbol to another within a shared
// category. A same-symbol conversion returns the value untouched without
// consulting the table, even for symbols the table does not know.
func Convert(value decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return value, nil
	}

	fromEntry, ok := factors[from]
	if !ok {
		return decimal.Zero, &UnknownUnitError{Symbol: from}
	}
	toEntry, ok := factors[to]
	if !ok {
		return decimal.Zero, &UnknownUnitError{Symbol: to}
	}
	if fromEntry.category != toEntry.category {
		return decimal.Zero, &IncompatibleUnitsError{From: from, To: to}
	}

	return value.Mul(fromEntry.toBase).Div(toEntry.toBase), nil
}

// Known reports whether the symbol appears in the category table.
func Known(symbol string) bool {
	_, ok := factors[symbol]
	return ok
}
