package blockchain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// EscrowDecimals is the fixed scale the escrow contract uses for every
// monetary field it stores or emits, independent of the payment token's
// own decimals.
const EscrowDecimals = 18

// ToBaseUnits converts a human-readable decimal amount ("12.5") into an
// integer scaled by the given number of decimals. Fractional digits beyond
// the scale are truncated, never rounded up.
func ToBaseUnits(amount string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount %q is negative", amount)
	}
	return d.Shift(decimals).Truncate(0).BigInt(), nil
}

// FromBaseUnits renders an integer on-chain amount as a decimal string.
func FromBaseUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}
