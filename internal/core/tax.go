package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	oneHundred = decimal.NewFromInt(100)
	two        = decimal.NewFromInt(2)
)

// ComputeLineTax returns taxableValue × gstRate / 100 rounded half-up to the
// currency's minor unit (2 decimal places).
func ComputeLineTax(taxableValue, gstRate decimal.Decimal) decimal.Decimal {
	return taxableValue.Mul(gstRate).Div(oneHundred).Round(2)
}

// SplitGST splits a total GST amount under India's dual-tax regime.
// Same seller and buyer state (trimmed, case-insensitive): equal CGST/SGST
// halves, zero IGST. Different states: everything is IGST. An empty or
// unknown state on either side is treated as a different state, so the split
// falls through to IGST.
//
// The SGST half is computed as total − CGST so the two halves always sum
// exactly to the total even when it has an odd number of paise.
func SplitGST(totalGST decimal.Decimal, sellerState, buyerState string) (cgst, sgst, igst decimal.Decimal) {
	seller := strings.ToLower(strings.TrimSpace(sellerState))
	buyer := strings.ToLower(strings.TrimSpace(buyerState))

	if seller != "" && seller == buyer {
		cgst = totalGST.Div(two).Round(2)
		sgst = totalGST.Sub(cgst)
		return cgst, sgst, decimal.Zero
	}
	return decimal.Zero, decimal.Zero, totalGST
}
