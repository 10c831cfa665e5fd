package billing_test

import (
	"fmt"
	"testing"

	"github.com/nirmaanhq/siteops-api/internal/billing"
	"github.com/nirmaanhq/siteops-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCalculateLineItem_IntraState(t *testing.T) {
	tests := []struct {
		gstRate  float64
		wantCGST float64
	}{
		{5, 25},
		{12, 60},
		{18, 90},
		{28, 140},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("slab_%.0f", tt.gstRate), func(t *testing.T) {
			// 10 units at 100 each
			a := billing.CalculateLineItem(10, 100, tt.gstRate, false)

			assert.InDelta(t, 1000, a.TaxableAmount, 0.001)
			assert.InDelta(t, tt.wantCGST, a.CGST, 0.001)
			assert.InDelta(t, tt.wantCGST, a.SGST, 0.001)
			assert.Zero(t, a.IGST)
			assert.InDelta(t, 1000+2*tt.wantCGST, a.Total, 0.001)
		})
	}
}

func TestCalculateLineItem_InterState(t *testing.T) {
	a := billing.CalculateLineItem(10, 100, 18, true)

	assert.InDelta(t, 1000, a.TaxableAmount, 0.001)
	assert.Zero(t, a.CGST)
	assert.Zero(t, a.SGST)
	assert.InDelta(t, 180, a.IGST, 0.001)
	assert.InDelta(t, 1180, a.Total, 0.001)
}

func TestCalculateLineItem_ZeroQuantity(t *testing.T) {
	a := billing.CalculateLineItem(0, 100, 18, false)

	assert.Zero(t, a.TaxableAmount)
	assert.Zero(t, a.CGST)
	assert.Zero(t, a.SGST)
	assert.Zero(t, a.Total)
}

func TestSummarizeInvoice(t *testing.T) {
	items := []domain.InvoiceLineItem{
		{TaxableAmount: 1000, CGST: 90, SGST: 90},
		{TaxableAmount: 500, CGST: 30, SGST: 30},
	}

	s := billing.SummarizeInvoice(items, 5, 200)

	assert.InDelta(t, 1500, s.TotalTaxable, 0.001)
	assert.InDelta(t, 120, s.TotalCGST, 0.001)
	assert.InDelta(t, 120, s.TotalSGST, 0.001)
	assert.Zero(t, s.TotalIGST)
	assert.InDelta(t, 1740, s.GrossTotal, 0.001)
	assert.InDelta(t, 87, s.RetentionAmount, 0.001)
	assert.InDelta(t, 200, s.AdvanceAdjustment, 0.001)
	assert.InDelta(t, 1453, s.TotalAmount, 0.001)
}

func TestSummarizeInvoice_NegativeNetPayable(t *testing.T) {
	// Advance adjustment exceeds the gross total; the net must go negative
	// rather than being clamped at zero.
	items := []domain.InvoiceLineItem{
		{TaxableAmount: 100, CGST: 9, SGST: 9},
	}

	s := billing.SummarizeInvoice(items, 10, 500)

	assert.InDelta(t, 118, s.GrossTotal, 0.001)
	assert.InDelta(t, 11.8, s.RetentionAmount, 0.001)
	assert.InDelta(t, -393.8, s.TotalAmount, 0.001)
}

func TestSummarizeInvoice_Empty(t *testing.T) {
	s := billing.SummarizeInvoice(nil, 5, 0)

	assert.Zero(t, s.GrossTotal)
	assert.Zero(t, s.RetentionAmount)
	assert.Zero(t, s.TotalAmount)
}

func TestValidateGSTIN(t *testing.T) {
	tests := []struct {
		name  string
		gstin string
		want  bool
	}{
		{"valid maharashtra", "27AABCU1234F1Z5", true},
		{"valid karnataka", "29AAACI5678K2ZT", true},
		{"too short", "27AABCU1234F1Z", false},
		{"too long", "27AABCU1234F1Z55", false},
		{"lowercase pan", "27aabcu1234F1Z5", false},
		{"missing literal Z", "27AABCU1234F1X5", false},
		{"zero entity code", "27AABCU1234F0Z5", false},
		{"letters in state code", "AAAABCU1234F1Z5", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, billing.ValidateGSTIN(tt.gstin))
		})
	}
}

func TestIsInterState(t *testing.T) {
	assert.False(t, billing.IsInterState("27", "27"))
	assert.True(t, billing.IsInterState("27", "29"))
}

func TestIsValidGSTRate(t *testing.T) {
	for _, rate := range []float64{5, 12, 18, 28} {
		assert.True(t, billing.IsValidGSTRate(rate), "slab %v", rate)
	}
	for _, rate := range []float64{0, 3, 15, 18.5, -5} {
		assert.False(t, billing.IsValidGSTRate(rate), "rate %v", rate)
	}
}

func TestRoundDisplay(t *testing.T) {
	assert.InDelta(t, 10.57, billing.RoundDisplay(10.567), 0.0001)
	assert.InDelta(t, -3.33, billing.RoundDisplay(-3.3333), 0.0001)
}
