package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gstbilling/internal/core"
)

func TestComputeLineTax(t *testing.T) {
	tests := []struct {
		name    string
		taxable string
		rate    string
		want    string
	}{
		{"exact at 18%", "1000.00", "18", "180.00"},
		{"zero rate", "500.00", "0", "0.00"},
		{"rounds up", "10.99", "18", "1.98"},     // 1.9782
		{"half rounds up", "12.50", "5", "0.63"}, // 0.625
		{"rounds down", "33.33", "12", "4.00"},   // 3.9996
		{"near-integer rounds up", "333.33", "18", "60.00"}, // 59.9994
		{"28% slab", "249.99", "28", "70.00"},    // 69.9972
		{"zero taxable", "0.00", "18", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.ComputeLineTax(dec(t, tt.taxable), dec(t, tt.rate))
			require.True(t, got.Equal(dec(t, tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestSplitGST(t *testing.T) {
	tests := []struct {
		name        string
		total       string
		sellerState string
		buyerState  string
		cgst        string
		sgst        string
		igst        string
	}{
		{"same state even split", "36.00", "Karnataka", "Karnataka", "18.00", "18.00", "0"},
		{"same state odd paise", "0.05", "Karnataka", "Karnataka", "0.03", "0.02", "0"},
		{"case and whitespace insensitive", "48.00", "Karnataka", "  karnataka ", "24.00", "24.00", "0"},
		{"different states", "48.53", "Karnataka", "Maharashtra", "0", "0", "48.53"},
		{"empty buyer state falls to IGST", "18.00", "Karnataka", "", "0", "0", "18.00"},
		{"empty seller state falls to IGST", "18.00", "", "Karnataka", "0", "0", "18.00"},
		{"both empty falls to IGST", "18.00", "", "", "0", "0", "18.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cgst, sgst, igst := core.SplitGST(dec(t, tt.total), tt.sellerState, tt.buyerState)
			require.True(t, cgst.Equal(dec(t, tt.cgst)), "cgst: got %s, want %s", cgst, tt.cgst)
			require.True(t, sgst.Equal(dec(t, tt.sgst)), "sgst: got %s, want %s", sgst, tt.sgst)
			require.True(t, igst.Equal(dec(t, tt.igst)), "igst: got %s, want %s", igst, tt.igst)

			// The three components must always reconstruct the total.
			sum := cgst.Add(sgst).Add(igst)
			require.True(t, sum.Equal(dec(t, tt.total)), "components sum to %s, want %s", sum, tt.total)
		})
	}
}
